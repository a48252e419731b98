package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/tally/internal/model"
)

// LoadExpenses returns every stored expense, oldest first. Dates come back in
// the local zone.
func (s *SQLiteStorage) LoadExpenses(ctx context.Context) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, date, amount, category_name, note
		FROM expenses
		ORDER BY date, rowid`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		var e model.Expense
		var date time.Time
		if err := rows.Scan(&e.ID, &date, &e.Amount, &e.CategoryName, &e.Note); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Date = date.Local()
		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	slog.Debug("retrieved expenses", "count", len(expenses))
	return expenses, nil
}

// SaveExpenses replaces the stored expense set.
func (s *SQLiteStorage) SaveExpenses(ctx context.Context, expenses []model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpenses(expenses); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
			return fmt.Errorf("failed to clear expenses: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO expenses (id, date, amount, category_name, note)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare expense insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, e := range expenses {
			if _, err := stmt.ExecContext(ctx, e.ID, e.Date, e.Amount, e.CategoryName, e.Note); err != nil {
				return fmt.Errorf("failed to insert expense %s: %w", e.ID, err)
			}
		}
		return nil
	})
}
