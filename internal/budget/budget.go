// Package budget holds the monthly budget figure.
package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// State is the single mutable monthly budget. A zero or negative stored value
// reads back as model.DefaultMonthlyBudget.
type State struct {
	store  service.BudgetStore
	logger *slog.Logger
	value  int64
}

// New creates a budget state holding value. store may be nil.
func New(store service.BudgetStore, value int64, logger *slog.Logger) *State {
	return &State{
		store:  store,
		value:  value,
		logger: common.OrDefault(logger),
	}
}

// Load reads the stored budget. A budget that was never saved is not an error.
func Load(ctx context.Context, store service.BudgetStore, logger *slog.Logger) (*State, error) {
	value, err := store.LoadBudget(ctx)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}
	return New(store, value, logger), nil
}

// Effective applies the default to a raw stored value.
func Effective(value int64) int64 {
	if value <= 0 {
		return model.DefaultMonthlyBudget
	}
	return value
}

// Get returns the monthly budget.
func (s *State) Get() int64 {
	return Effective(s.value)
}

// IsDefault reports whether Get is returning the default.
func (s *State) IsDefault() bool {
	return s.value <= 0
}

// Set stores value and writes it through. Zero is accepted and reads back as
// the default.
func (s *State) Set(ctx context.Context, value int64) error {
	if value < 0 {
		return fmt.Errorf("%w: got %d", common.ErrInvalidBudget, value)
	}

	s.value = value
	if s.store == nil {
		return nil
	}
	if err := s.store.SaveBudget(ctx, value); err != nil {
		s.logger.Error("failed to persist budget",
			"error", err,
			"budget", value)
	}
	return nil
}
