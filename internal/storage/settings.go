package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/Veraticus/tally/internal/common"
)

const settingMonthlyBudget = "monthly_budget"

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// getSetting returns "" for a missing key.
func (s *SQLiteStorage) getSetting(ctx context.Context, q queryer, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStorage) putSetting(ctx context.Context, e execer, key, value string) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write setting %q: %w", key, err)
	}
	return nil
}

// LoadBudget returns common.ErrNotFound if no budget was ever saved.
func (s *SQLiteStorage) LoadBudget(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	raw, err := s.getSetting(ctx, s.db, settingMonthlyBudget)
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return 0, fmt.Errorf("budget: %w", common.ErrNotFound)
	}

	budget, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: budget %q", common.ErrDatabaseCorrupted, raw)
	}
	return budget, nil
}

// SaveBudget stores the monthly budget.
func (s *SQLiteStorage) SaveBudget(ctx context.Context, budget int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.putSetting(ctx, s.db, settingMonthlyBudget, strconv.FormatInt(budget, 10))
}
