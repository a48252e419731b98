package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

const settingCategoriesInitialized = "categories_initialized"

// LoadCategories returns categories in their stored order. It returns
// common.ErrNotFound when categories have never been saved, which is distinct
// from a saved empty list.
func (s *SQLiteStorage) LoadCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	initialized, err := s.getSetting(ctx, s.db, settingCategoriesInitialized)
	if err != nil {
		return nil, err
	}
	if initialized == "" {
		return nil, fmt.Errorf("categories: %w", common.ErrNotFound)
	}

	query := `
		SELECT id, name, start_hour, start_minute, end_hour, end_minute, color
		FROM categories
		ORDER BY position, rowid`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := []model.Category{}
	for rows.Next() {
		var cat model.Category
		var color string
		if err := rows.Scan(
			&cat.ID, &cat.Name,
			&cat.Start.Hour, &cat.Start.Minute,
			&cat.End.Hour, &cat.End.Minute,
			&color,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cat.Color = model.ParseColor(color)
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// SaveCategories replaces the stored list, preserving slice order.
func (s *SQLiteStorage) SaveCategories(ctx context.Context, categories []model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategories(categories); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
			return fmt.Errorf("failed to clear categories: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO categories (id, name, start_hour, start_minute, end_hour, end_minute, color, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare category insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i, cat := range categories {
			if _, err := stmt.ExecContext(ctx,
				cat.ID, cat.Name,
				cat.Start.Hour, cat.Start.Minute,
				cat.End.Hour, cat.End.Minute,
				string(model.ParseColor(string(cat.Color))), i,
			); err != nil {
				return fmt.Errorf("failed to insert category %q: %w", cat.Name, err)
			}
		}

		return s.putSetting(ctx, tx, settingCategoriesInitialized, "1")
	})
}
