// Package testutil provides shared fixtures and store doubles for tests.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
	"github.com/Veraticus/tally/internal/storage"
)

// TestDB wraps a migrated in-memory SQLite store.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// TestDBOptions seeds a test database.
type TestDBOptions struct {
	Categories []model.Category
	Expenses   []model.Expense
	Budget     int64
}

// SetupTestDB creates a migrated in-memory database and closes it on cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.TestDBOptions{
//		Categories: model.DefaultCategories(),
//	})
func SetupTestDB(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if len(opts.Categories) > 0 {
		if err := store.SaveCategories(ctx, opts.Categories); err != nil {
			t.Fatalf("failed to seed categories: %v", err)
		}
	}
	if len(opts.Expenses) > 0 {
		if err := store.SaveExpenses(ctx, opts.Expenses); err != nil {
			t.Fatalf("failed to seed expenses: %v", err)
		}
	}
	if opts.Budget > 0 {
		if err := store.SaveBudget(ctx, opts.Budget); err != nil {
			t.Fatalf("failed to seed budget: %v", err)
		}
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}
