package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestStorage returns every driver, migrated and backed by t.TempDir().
func createTestStorage(t *testing.T) map[string]service.Storage {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()

	sqliteStore, err := NewSQLiteStorage(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	jsonStore, err := NewJSONStorage(filepath.Join(dir, "test.json"))
	require.NoError(t, err)

	stores := map[string]service.Storage{
		DriverSQLite: sqliteStore,
		DriverJSON:   jsonStore,
	}
	for name, s := range stores {
		require.NoError(t, s.Migrate(ctx), name)
		t.Cleanup(func() { _ = s.Close() })
	}
	return stores
}

func testCategories() []model.Category {
	return []model.Category{
		{ID: "c1", Name: "晚餐", Start: model.TimeOfDay{Hour: 16, Minute: 30}, End: model.TimeOfDay{Hour: 20, Minute: 29}, Color: model.ColorGreen},
		{ID: "c2", Name: "宵夜", Start: model.TimeOfDay{Hour: 20, Minute: 30}, End: model.TimeOfDay{Hour: 4, Minute: 59}, Color: model.ColorPurple},
		{ID: "c0", Name: "交通", Start: model.TimeOfDay{}, End: model.TimeOfDay{Hour: 23, Minute: 59}},
	}
}

func testExpenses() []model.Expense {
	return []model.Expense{
		{ID: "e2", Date: time.Date(2024, 3, 15, 19, 5, 0, 0, time.Local), Amount: 180, CategoryName: "晚餐", Note: "ramen, extra egg"},
		{ID: "e1", Date: time.Date(2024, 3, 14, 8, 0, 0, 0, time.Local), Amount: 60, CategoryName: "早餐"},
	}
}

func TestCategoriesRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range createTestStorage(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.LoadCategories(ctx)
			require.ErrorIs(t, err, common.ErrNotFound)

			require.NoError(t, store.SaveCategories(ctx, testCategories()))

			got, err := store.LoadCategories(ctx)
			require.NoError(t, err)
			require.Len(t, got, 3)
			assert.Equal(t, []string{"c1", "c2", "c0"}, []string{got[0].ID, got[1].ID, got[2].ID})
			assert.Equal(t, model.TimeOfDay{Hour: 20, Minute: 30}, got[1].Start)
			assert.Equal(t, model.ColorPurple, got[1].Color)
			assert.Equal(t, model.ColorGray, got[2].Color)

			// A saved empty list is not "never saved".
			require.NoError(t, store.SaveCategories(ctx, nil))
			got, err = store.LoadCategories(ctx)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestExpensesRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range createTestStorage(t) {
		t.Run(name, func(t *testing.T) {
			got, err := store.LoadExpenses(ctx)
			require.NoError(t, err)
			assert.Empty(t, got)

			want := testExpenses()
			require.NoError(t, store.SaveExpenses(ctx, want))

			got, err = store.LoadExpenses(ctx)
			require.NoError(t, err)
			require.Len(t, got, 2)

			byID := map[string]model.Expense{}
			for _, e := range got {
				byID[e.ID] = e
			}
			for _, w := range want {
				g := byID[w.ID]
				assert.True(t, w.Date.Equal(g.Date), "date for %s: want %v got %v", w.ID, w.Date, g.Date)
				assert.Equal(t, w.Amount, g.Amount)
				assert.Equal(t, w.CategoryName, g.CategoryName)
				assert.Equal(t, w.Note, g.Note)
			}

			// Full replace.
			require.NoError(t, store.SaveExpenses(ctx, want[:1]))
			got, err = store.LoadExpenses(ctx)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "e2", got[0].ID)
		})
	}
}

func TestBudgetRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range createTestStorage(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.LoadBudget(ctx)
			require.ErrorIs(t, err, common.ErrNotFound)

			require.NoError(t, store.SaveBudget(ctx, 12000))
			got, err := store.LoadBudget(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(12000), got)

			require.NoError(t, store.SaveBudget(ctx, 0))
			got, err = store.LoadBudget(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(0), got)
		})
	}
}

func TestSaveValidation(t *testing.T) {
	ctx := context.Background()
	for name, store := range createTestStorage(t) {
		t.Run(name, func(t *testing.T) {
			err := store.SaveExpenses(ctx, []model.Expense{{ID: "x", Date: time.Now(), Amount: 0}})
			assert.ErrorIs(t, err, common.ErrInvalidAmount)

			err = store.SaveExpenses(ctx, []model.Expense{{ID: "", Date: time.Now(), Amount: 1}})
			assert.ErrorIs(t, err, ErrInvalidExpense)

			dup := testExpenses()
			dup[1].ID = dup[0].ID
			err = store.SaveExpenses(ctx, dup)
			assert.ErrorIs(t, err, ErrDuplicateID)

			err = store.SaveCategories(ctx, []model.Category{{ID: "c", Name: ""}})
			assert.ErrorIs(t, err, common.ErrInvalidCategory)

			// Rejected saves leave earlier data intact.
			got, err := store.LoadExpenses(ctx)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "tally.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Migrate(ctx))

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestMigrateRejectsNewerSchema(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "tally.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.db.ExecContext(ctx, "PRAGMA user_version = 99")
	require.NoError(t, err)

	assert.ErrorContains(t, store.Migrate(ctx), "newer than supported")
}

func TestNewSQLiteStorageRejectsEmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(DriverJSON, filepath.Join(dir, "a.json"))
	require.NoError(t, err)
	assert.IsType(t, &JSONStorage{}, s)

	s, err = Open(DriverSQLite, filepath.Join(dir, "a.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStorage{}, s)
	_ = s.Close()

	_, err = Open("postgres", "x")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestCopy(t *testing.T) {
	ctx := context.Background()
	stores := createTestStorage(t)
	src, dst := stores[DriverJSON], stores[DriverSQLite]

	require.NoError(t, src.SaveCategories(ctx, testCategories()))
	require.NoError(t, src.SaveExpenses(ctx, testExpenses()))

	stats, err := Copy(ctx, src, dst)
	require.NoError(t, err)
	assert.Equal(t, CopyStats{Categories: 3, Expenses: 2, Budget: false}, stats)

	got, err := dst.LoadExpenses(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = dst.LoadBudget(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
