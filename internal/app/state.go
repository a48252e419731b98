// Package app owns the session's categories, ledger and budget and notifies
// observers after each change.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/tally/internal/aggregate"
	"github.com/Veraticus/tally/internal/budget"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/rules"
	"github.com/Veraticus/tally/internal/service"
	"golang.org/x/sync/errgroup"
)

// Options configures a State.
type Options struct {
	Logger *slog.Logger
	Now    func() time.Time
}

// State is the application state. Reads return copies; every mutation writes
// through to the store and failures to do so are logged, not returned.
type State struct {
	store      service.Storage
	logger     *slog.Logger
	now        func() time.Time
	ledger     *ledger.Ledger
	budget     *budget.State
	observers  map[int]func(Event)
	categories []model.Category
	nextObs    int
	mu         sync.RWMutex
}

// Load reads all three record sets from store. Categories that were never
// saved are seeded with model.DefaultCategories and written back.
func Load(ctx context.Context, store service.Storage, opts Options) (*State, error) {
	var (
		categories []model.Category
		expenses   []model.Expense
		stored     int64
		seeded     bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = store.LoadCategories(gctx)
		if errors.Is(err, common.ErrNotFound) {
			categories, seeded = model.DefaultCategories(), true
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		expenses, err = store.LoadExpenses(gctx)
		if err != nil {
			return fmt.Errorf("failed to load expenses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		stored, err = store.LoadBudget(gctx)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("failed to load budget: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := New(store, categories, expenses, stored, opts)
	if seeded {
		s.logger.Info("seeding default categories", "count", len(categories))
		s.persistCategories(ctx)
	}
	return s, nil
}

// New builds a State from already loaded records. store may be nil.
func New(store service.Storage, categories []model.Category, expenses []model.Expense, storedBudget int64, opts Options) *State {
	logger := common.OrDefault(opts.Logger)
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var (
		expenseStore service.ExpenseStore
		budgetStore  service.BudgetStore
	)
	if store != nil {
		expenseStore, budgetStore = store, store
	}

	return &State{
		store:      store,
		logger:     logger,
		now:        now,
		categories: append([]model.Category(nil), categories...),
		ledger:     ledger.New(expenseStore, expenses, ledger.WithClock(now), ledger.WithLogger(logger)),
		budget:     budget.New(budgetStore, storedBudget, logger),
		observers:  make(map[int]func(Event)),
	}
}

// Now returns the state's clock reading.
func (s *State) Now() time.Time {
	return s.now()
}

// Categories returns the ordered category list.
func (s *State) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Category(nil), s.categories...)
}

// Expenses returns the ledger, newest first.
func (s *State) Expenses() []model.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.ledger.List()
	model.SortByDateDesc(out)
	return out
}

// Budget returns the effective monthly budget.
func (s *State) Budget() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.budget.Get()
}

// BudgetIsDefault reports whether no positive budget has been set.
func (s *State) BudgetIsDefault() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.budget.IsDefault()
}

// Snapshot computes the dashboard figures at now.
func (s *State) Snapshot(now time.Time) aggregate.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return aggregate.Summarize(s.ledger.List(), s.budget.Get(), now)
}

// ResolveCategory returns the category name for t, or model.UnclassifiedName.
func (s *State) ResolveCategory(t time.Time) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return rules.NameAt(s.categories, t)
}

// AddExpense appends an expense. With no category name, the category is
// resolved from the entry's own time of day.
func (s *State) AddExpense(ctx context.Context, entry ledger.Entry) (model.Expense, error) {
	s.mu.Lock()
	expense, err := s.ledger.Append(ctx, s.classify(entry))
	s.mu.Unlock()
	if err != nil {
		return model.Expense{}, err
	}

	s.emit(Event{Kind: EventExpenseAdded, ExpenseID: expense.ID, Count: 1})
	return expense, nil
}

// classify fills in a missing category from the entry's time of day, or the
// current time when the entry has no date. Callers hold s.mu.
func (s *State) classify(entry ledger.Entry) ledger.Entry {
	if strings.TrimSpace(entry.CategoryName) != "" {
		return entry
	}
	at := entry.Date
	if at.IsZero() {
		at = s.now()
	}
	entry.CategoryName = rules.NameAt(s.categories, at)
	return entry
}

// ImportExpenses adds a batch of entries with a single write. Entries without
// a category are resolved like AddExpense.
func (s *State) ImportExpenses(ctx context.Context, entries []ledger.Entry) ([]model.Expense, map[int]error) {
	s.mu.Lock()
	resolved := make([]ledger.Entry, len(entries))
	for i, entry := range entries {
		resolved[i] = s.classify(entry)
	}
	added, failed := s.ledger.AppendAll(ctx, resolved)
	s.mu.Unlock()

	if len(added) > 0 {
		s.emit(Event{Kind: EventExpensesAdded, Count: len(added)})
	}
	return added, failed
}

// FindExpense looks up an expense by id or unique id prefix.
func (s *State) FindExpense(ref string) (model.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.ledger.Find(ref); ok {
		return e, nil
	}
	return s.ledger.FindByPrefix(ref)
}

// DeleteExpense removes one expense. Unknown ids are a no-op and return false.
func (s *State) DeleteExpense(ctx context.Context, id string) bool {
	s.mu.Lock()
	removed := s.ledger.Remove(ctx, id)
	s.mu.Unlock()

	if removed {
		s.emit(Event{Kind: EventExpenseDeleted, ExpenseID: id, Count: 1})
	}
	return removed
}

// DeleteExpensesOn removes every expense on day's calendar date.
func (s *State) DeleteExpensesOn(ctx context.Context, day time.Time) int {
	s.mu.Lock()
	n := s.ledger.RemoveWhere(ctx, ledger.OnDay(day))
	s.mu.Unlock()

	if n > 0 {
		s.emit(Event{Kind: EventExpensesDeleted, Count: n})
	}
	return n
}

// SetBudget stores a new monthly budget.
func (s *State) SetBudget(ctx context.Context, value int64) error {
	s.mu.Lock()
	err := s.budget.Set(ctx, value)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.emit(Event{Kind: EventBudgetChanged})
	return nil
}

func (s *State) persistCategories(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveCategories(ctx, s.categories); err != nil {
		s.logger.Error("failed to persist categories",
			"error", err,
			"count", len(s.categories))
	}
}
