// Package aggregate computes spending totals and the daily allowance from a
// ledger snapshot. Every function is pure and uses integer arithmetic for
// amounts; only BudgetProgress returns a float, for display.
package aggregate

import (
	"fmt"
	"time"

	"github.com/Veraticus/tally/internal/model"
)

// Scope selects the period for CategoryBreakdown.
type Scope string

// Supported scopes.
const (
	ScopeToday Scope = "today"
	ScopeMonth Scope = "month"
)

// ParseScope validates a scope name.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeToday, ScopeMonth:
		return Scope(s), nil
	default:
		return "", fmt.Errorf("unknown scope %q (want today or month)", s)
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sameMonth(a, b time.Time) bool {
	ay, am, _ := a.Date()
	by, bm, _ := b.Date()
	return ay == by && am == bm
}

func inScope(e model.Expense, now time.Time, scope Scope) bool {
	d := e.Date.In(now.Location())
	if scope == ScopeToday {
		return sameDay(d, now)
	}
	return sameMonth(d, now)
}

func sum(expenses []model.Expense, now time.Time, scope Scope) int64 {
	var total int64
	for _, e := range expenses {
		if inScope(e, now, scope) {
			total += e.Amount
		}
	}
	return total
}

// TodaySpent sums expenses on now's calendar day, in now's location.
func TodaySpent(expenses []model.Expense, now time.Time) int64 {
	return sum(expenses, now, ScopeToday)
}

// MonthSpent sums expenses in now's calendar year and month.
func MonthSpent(expenses []model.Expense, now time.Time) int64 {
	return sum(expenses, now, ScopeMonth)
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// RemainingDays counts the days left in the month, today included. Never below 1.
func RemainingDays(now time.Time) int {
	return max(1, DaysInMonth(now)-now.Day()+1)
}

// DailyAllowance spreads the unspent budget over the remaining days with
// floor division. Overspending clamps to zero.
func DailyAllowance(expenses []model.Expense, budget int64, now time.Time) int64 {
	remaining := budget - MonthSpent(expenses, now)
	return max(0, remaining/int64(RemainingDays(now)))
}

// TodayRemaining is the allowance minus what was spent today. Negative means
// today is over budget.
func TodayRemaining(expenses []model.Expense, budget int64, now time.Time) int64 {
	return DailyAllowance(expenses, budget, now) - TodaySpent(expenses, now)
}

// BudgetProgress returns spent/budget for progress bars, clamped to [0, 1].
func BudgetProgress(spent, budget int64) float64 {
	if budget <= 0 {
		return 1
	}
	ratio := float64(spent) / float64(budget)
	return min(1, max(0, ratio))
}

// CategoryBreakdown sums amounts per stored category name for the scope.
// Names are reported as stored; folding unknown names is the caller's job.
func CategoryBreakdown(expenses []model.Expense, now time.Time, scope Scope) map[string]int64 {
	out := make(map[string]int64)
	for _, e := range expenses {
		if inScope(e, now, scope) {
			out[e.CategoryName] += e.Amount
		}
	}
	return out
}

// FoldUnknown moves every name not in known into bucket.
func FoldUnknown(breakdown map[string]int64, known []string, bucket string) map[string]int64 {
	set := make(map[string]struct{}, len(known))
	for _, name := range known {
		set[name] = struct{}{}
	}

	out := make(map[string]int64, len(breakdown))
	for name, amount := range breakdown {
		if _, ok := set[name]; ok {
			out[name] += amount
			continue
		}
		out[bucket] += amount
	}
	return out
}

// Summary holds the dashboard figures for one instant.
type Summary struct {
	Now            time.Time
	Budget         int64
	TodaySpent     int64
	MonthSpent     int64
	Allowance      int64
	TodayRemaining int64
	RemainingDays  int
	Progress       float64
}

// OverBudget reports whether today's spending exceeded the allowance.
func (s Summary) OverBudget() bool {
	return s.TodayRemaining < 0
}

// Summarize computes every dashboard figure in one pass over the inputs.
func Summarize(expenses []model.Expense, budget int64, now time.Time) Summary {
	today := TodaySpent(expenses, now)
	month := MonthSpent(expenses, now)
	allowance := max(0, (budget-month)/int64(RemainingDays(now)))

	return Summary{
		Now:            now,
		Budget:         budget,
		TodaySpent:     today,
		MonthSpent:     month,
		Allowance:      allowance,
		TodayRemaining: allowance - today,
		RemainingDays:  RemainingDays(now),
		Progress:       BudgetProgress(month, budget),
	}
}
