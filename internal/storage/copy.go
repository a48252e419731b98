package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/service"
)

// CopyStats reports what Copy transferred.
type CopyStats struct {
	Categories int
	Expenses   int
	Budget     bool
}

// Copy transfers all three record sets from src to dst, replacing what dst
// holds. Record sets never saved in src are left untouched in dst.
func Copy(ctx context.Context, src, dst service.Storage) (CopyStats, error) {
	var stats CopyStats

	categories, err := src.LoadCategories(ctx)
	switch {
	case errors.Is(err, common.ErrNotFound):
	case err != nil:
		return stats, fmt.Errorf("failed to load categories: %w", err)
	default:
		if err := dst.SaveCategories(ctx, categories); err != nil {
			return stats, fmt.Errorf("failed to save categories: %w", err)
		}
		stats.Categories = len(categories)
	}

	expenses, err := src.LoadExpenses(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to load expenses: %w", err)
	}
	if err := dst.SaveExpenses(ctx, expenses); err != nil {
		return stats, fmt.Errorf("failed to save expenses: %w", err)
	}
	stats.Expenses = len(expenses)

	budget, err := src.LoadBudget(ctx)
	switch {
	case errors.Is(err, common.ErrNotFound):
	case err != nil:
		return stats, fmt.Errorf("failed to load budget: %w", err)
	default:
		if err := dst.SaveBudget(ctx, budget); err != nil {
			return stats, fmt.Errorf("failed to save budget: %w", err)
		}
		stats.Budget = true
	}

	return stats, nil
}
