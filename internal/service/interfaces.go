// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/tally/internal/model"
)

// CategoryStore persists the ordered category list.
type CategoryStore interface {
	// LoadCategories returns common.ErrNotFound if categories were never saved.
	LoadCategories(ctx context.Context) ([]model.Category, error)
	SaveCategories(ctx context.Context, categories []model.Category) error
}

// ExpenseStore persists the full expense set.
type ExpenseStore interface {
	LoadExpenses(ctx context.Context) ([]model.Expense, error)
	SaveExpenses(ctx context.Context, expenses []model.Expense) error
}

// BudgetStore persists the monthly budget.
type BudgetStore interface {
	// LoadBudget returns common.ErrNotFound if no budget was ever saved.
	LoadBudget(ctx context.Context) (int64, error)
	SaveBudget(ctx context.Context, budget int64) error
}

// Storage defines the contract for our persistence layer. Every save replaces
// the whole record set.
type Storage interface {
	CategoryStore
	ExpenseStore
	BudgetStore

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// Generator produces text for a prompt using an external model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
