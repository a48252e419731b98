package testutil

import (
	"context"
	"sync"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

// MemoryStore is an in-memory service.Storage that records saves and can be
// told to fail them.
type MemoryStore struct {
	SaveErr    error
	LoadErr    error
	categories []model.Category
	expenses   []model.Expense
	budget     int64
	mu         sync.Mutex
	hasCats    bool
	hasBudget  bool

	CategorySaves int
	ExpenseSaves  int
	BudgetSaves   int
}

// NewMemoryStore returns an empty store whose categories and budget were never saved.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// LoadCategories implements service.CategoryStore.
func (m *MemoryStore) LoadCategories(_ context.Context) ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if !m.hasCats {
		return nil, common.ErrNotFound
	}
	return append([]model.Category(nil), m.categories...), nil
}

// SaveCategories implements service.CategoryStore.
func (m *MemoryStore) SaveCategories(_ context.Context, categories []model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CategorySaves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.categories = append([]model.Category(nil), categories...)
	m.hasCats = true
	return nil
}

// LoadExpenses implements service.ExpenseStore.
func (m *MemoryStore) LoadExpenses(_ context.Context) ([]model.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return append([]model.Expense(nil), m.expenses...), nil
}

// SaveExpenses implements service.ExpenseStore.
func (m *MemoryStore) SaveExpenses(_ context.Context, expenses []model.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExpenseSaves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.expenses = append([]model.Expense(nil), expenses...)
	return nil
}

// LoadBudget implements service.BudgetStore.
func (m *MemoryStore) LoadBudget(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return 0, m.LoadErr
	}
	if !m.hasBudget {
		return 0, common.ErrNotFound
	}
	return m.budget, nil
}

// SaveBudget implements service.BudgetStore.
func (m *MemoryStore) SaveBudget(_ context.Context, budget int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BudgetSaves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.budget = budget
	m.hasBudget = true
	return nil
}

// Migrate implements service.Storage.
func (m *MemoryStore) Migrate(_ context.Context) error { return nil }

// Close implements service.Storage.
func (m *MemoryStore) Close() error { return nil }

// Expenses returns what was last saved.
func (m *MemoryStore) Expenses() []model.Expense {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Expense(nil), m.expenses...)
}

// Categories returns what was last saved.
func (m *MemoryStore) Categories() []model.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Category(nil), m.categories...)
}

// Budget returns what was last saved.
func (m *MemoryStore) Budget() (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.budget, m.hasBudget
}

// FailSaves makes every subsequent save return err. Pass nil to stop.
func (m *MemoryStore) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveErr = err
}
