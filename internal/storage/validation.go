// Package storage provides the data persistence layer for tally.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrInvalidExpense  = errors.New("invalid expense")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrUnsupportedFile = errors.New("unsupported storage file version")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateCategories checks every category and that ids are unique.
func validateCategories(categories []model.Category) error {
	seen := make(map[string]struct{}, len(categories))
	for i, c := range categories {
		if c.ID == "" {
			return fmt.Errorf("category at index %d: %w: missing ID", i, common.ErrInvalidCategory)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("category %s: %w", c.ID, ErrDuplicateID)
		}
		seen[c.ID] = struct{}{}

		if err := c.Validate(); err != nil {
			return fmt.Errorf("category at index %d: %w", i, err)
		}
	}
	return nil
}

// validateExpenses checks every expense and that ids are unique.
func validateExpenses(expenses []model.Expense) error {
	seen := make(map[string]struct{}, len(expenses))
	for i, e := range expenses {
		if e.ID == "" {
			return fmt.Errorf("expense at index %d: %w: missing ID", i, ErrInvalidExpense)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("expense %s: %w", e.ID, ErrDuplicateID)
		}
		seen[e.ID] = struct{}{}

		if e.Date.IsZero() {
			return fmt.Errorf("expense %s: %w: missing date", e.ID, ErrInvalidExpense)
		}
		if e.Amount <= 0 {
			return fmt.Errorf("expense %s: %w", e.ID, common.ErrInvalidAmount)
		}
	}
	return nil
}
