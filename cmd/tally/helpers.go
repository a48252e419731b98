package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/app"
	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/llm"
	"github.com/Veraticus/tally/internal/query"
	"github.com/Veraticus/tally/internal/service"
	"github.com/Veraticus/tally/internal/storage"
	"github.com/spf13/viper"
)

// clock is the source of "now" for every command.
var clock = time.Now

// initStorage opens the configured store and brings its schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	driver, path := config.StoragePath(viper.GetViper())

	store, err := storage.Open(driver, path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadState opens storage and loads the application state. The returned
// func closes the store.
func loadState(ctx context.Context) (*app.State, func(), error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	state, err := app.Load(ctx, store, app.Options{Logger: slog.Default(), Now: clock})
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	return state, func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close storage", "error", err)
		}
	}, nil
}

// createAsker builds the question service from the llm.* settings.
func createAsker() (*query.Service, llm.Client, error) {
	cfg := config.LLMConfig(viper.GetViper())
	if cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("no API key for %s: set %s or %s", cfg.Provider, config.KeyLLMAPIKey, llm.APIKeyEnv(cfg.Provider))
	}

	client, err := llm.NewClient(cfg, slog.Default())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	svc := query.NewService(client,
		query.WithMaxRecords(viper.GetInt(config.KeyQueryMaxRecords)),
		query.WithTimeout(cfg.Timeout),
		query.WithLogger(slog.Default()),
		query.WithClock(clock))
	return svc, client, nil
}

// parseMonth reads "YYYY-MM"; an empty value means the current month.
func parseMonth(s string) (time.Time, error) {
	now := clock()
	if strings.TrimSpace(s) == "" {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), nil
	}
	t, err := time.ParseInLocation("2006-01", s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return t, nil
}

// parseDate reads "YYYY-MM-DD" or "YYYY-MM-DDTHH:MM". A bare date keeps the
// current time of day.
func parseDate(s string) (time.Time, error) {
	now := clock()
	if t, err := time.ParseInLocation("2006-01-02T15:04", s, now.Location()); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation("2006-01-02", s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or YYYY-MM-DDTHH:MM", s)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), now.Hour(), now.Minute(), 0, 0, now.Location()), nil
}

func colorIndex(state *app.State) cli.ColorIndex {
	return cli.NewColorIndex(state.Categories())
}

// friendly attaches a readable message to validation failures.
func friendly(err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidAmount):
		return common.NewUserError("Amount must be a positive whole number, e.g. tally add 120", err)
	case errors.Is(err, common.ErrFutureDate):
		return common.NewUserError("That time is in the future; record expenses after they happen", err)
	case errors.Is(err, common.ErrInvalidBudget):
		return common.NewUserError("Budget must be zero (use the default) or a positive whole number", err)
	}
	return err
}
