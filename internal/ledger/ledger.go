// Package ledger holds the in-memory expense collection and writes every
// change through to the configured store.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
	"github.com/google/uuid"
)

// Entry is the input for a new expense.
type Entry struct {
	// Date defaults to the current time when zero.
	Date         time.Time
	CategoryName string
	Note         string
	Amount       int64
}

// Predicate selects expenses for bulk removal.
type Predicate func(model.Expense) bool

// Ledger is the authoritative expense set for a session. A failed write to
// the store is logged and the in-memory change stands.
type Ledger struct {
	store    service.ExpenseStore
	logger   *slog.Logger
	now      func() time.Time
	expenses []model.Expense
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the source of "now".
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// New creates a ledger over previously loaded expenses. store may be nil.
func New(store service.ExpenseStore, expenses []model.Expense, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		expenses: append([]model.Expense(nil), expenses...),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = common.OrDefault(l.logger)
	return l
}

// ValidateAmount rejects zero and negative amounts.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: got %d", common.ErrInvalidAmount, amount)
	}
	return nil
}

// ParseAmount parses user input into a whole-unit amount.
func ParseAmount(s string) (int64, error) {
	amount, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", common.ErrInvalidAmount, s)
	}
	if err := ValidateAmount(amount); err != nil {
		return 0, err
	}
	return amount, nil
}

// Append validates the entry and adds it. Nothing is appended on error.
func (l *Ledger) Append(ctx context.Context, e Entry) (model.Expense, error) {
	expense, err := l.build(e, l.now())
	if err != nil {
		return model.Expense{}, err
	}

	l.expenses = append(l.expenses, expense)
	l.logger.Debug("appended expense",
		"id", expense.ID,
		"amount", expense.Amount,
		"category", expense.CategoryName)

	l.persist(ctx)
	return expense, nil
}

// AppendAll validates each entry independently, appends the valid ones and
// persists once. Errors are returned per entry index.
func (l *Ledger) AppendAll(ctx context.Context, entries []Entry) ([]model.Expense, map[int]error) {
	now := l.now()

	var (
		added  []model.Expense
		failed map[int]error
	)
	for i, e := range entries {
		expense, err := l.build(e, now)
		if err != nil {
			if failed == nil {
				failed = make(map[int]error)
			}
			failed[i] = err
			continue
		}
		added = append(added, expense)
	}

	if len(added) > 0 {
		l.expenses = append(l.expenses, added...)
		l.logger.Debug("appended expenses", "count", len(added), "rejected", len(failed))
		l.persist(ctx)
	}
	return added, failed
}

func (l *Ledger) build(e Entry, now time.Time) (model.Expense, error) {
	if err := ValidateAmount(e.Amount); err != nil {
		return model.Expense{}, err
	}

	date := e.Date
	if date.IsZero() {
		date = now
	}
	if date.After(now) {
		return model.Expense{}, fmt.Errorf("%w: %s", common.ErrFutureDate, date.Format(time.RFC3339))
	}

	name := strings.TrimSpace(e.CategoryName)
	if name == "" {
		name = model.UnclassifiedName
	}

	return model.Expense{
		ID:           uuid.NewString(),
		Date:         date,
		Amount:       e.Amount,
		CategoryName: name,
		Note:         strings.TrimSpace(e.Note),
	}, nil
}

// Remove deletes the expense with the given id. Absent ids are a no-op.
func (l *Ledger) Remove(ctx context.Context, id string) bool {
	removed := l.removeWhere(func(e model.Expense) bool { return e.ID == id })
	if removed == 0 {
		return false
	}
	l.persist(ctx)
	return true
}

// RemoveWhere deletes every expense matching pred and returns how many went.
func (l *Ledger) RemoveWhere(ctx context.Context, pred Predicate) int {
	removed := l.removeWhere(pred)
	if removed > 0 {
		l.persist(ctx)
	}
	return removed
}

func (l *Ledger) removeWhere(pred Predicate) int {
	kept := l.expenses[:0]
	removed := 0
	for _, e := range l.expenses {
		if pred(e) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	// Clear the tail so dropped records are not retained by the backing array.
	for i := len(kept); i < len(l.expenses); i++ {
		l.expenses[i] = model.Expense{}
	}
	l.expenses = kept
	return removed
}

// List returns a copy of the expenses. Order is not meaningful; sort by date
// before presenting.
func (l *Ledger) List() []model.Expense {
	return append([]model.Expense(nil), l.expenses...)
}

// Len returns the number of expenses.
func (l *Ledger) Len() int {
	return len(l.expenses)
}

// Find returns the expense with the given id.
func (l *Ledger) Find(id string) (model.Expense, bool) {
	for _, e := range l.expenses {
		if e.ID == id {
			return e, true
		}
	}
	return model.Expense{}, false
}

// FindByPrefix returns the single expense whose id starts with prefix.
func (l *Ledger) FindByPrefix(prefix string) (model.Expense, error) {
	var match []model.Expense
	for _, e := range l.expenses {
		if strings.HasPrefix(e.ID, prefix) {
			match = append(match, e)
		}
	}
	switch len(match) {
	case 0:
		return model.Expense{}, fmt.Errorf("expense %q: %w", prefix, common.ErrNotFound)
	case 1:
		return match[0], nil
	default:
		return model.Expense{}, fmt.Errorf("expense id prefix %q is ambiguous (%d matches)", prefix, len(match))
	}
}

func (l *Ledger) persist(ctx context.Context) {
	if l.store == nil {
		return
	}
	if err := l.store.SaveExpenses(ctx, l.List()); err != nil {
		l.logger.Error("failed to persist expenses",
			"error", err,
			"count", len(l.expenses))
	}
}

// OnDay matches expenses on the same calendar day as t, in t's location.
func OnDay(t time.Time) Predicate {
	y, m, d := t.Date()
	return func(e model.Expense) bool {
		ey, em, ed := e.Date.In(t.Location()).Date()
		return ey == y && em == m && ed == d
	}
}

// InMonth matches expenses in the same calendar month as t, in t's location.
func InMonth(t time.Time) Predicate {
	y, m, _ := t.Date()
	return func(e model.Expense) bool {
		ey, em, _ := e.Date.In(t.Location()).Date()
		return ey == y && em == m
	}
}
