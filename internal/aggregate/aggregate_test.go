package aggregate

import (
	"testing"
	"time"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(month time.Month, day, hour, minute int) time.Time {
	return testutil.Date(2024, month, day, hour, minute)
}

func TestTodayAndMonthSpent(t *testing.T) {
	now := date(time.April, 10, 18, 0)
	expenses := []model.Expense{
		testutil.Expense("1", date(time.April, 10, 8, 0), 60, "早餐"),
		testutil.Expense("2", date(time.April, 10, 0, 0), 40, "宵夜"),
		testutil.Expense("3", date(time.April, 9, 23, 59), 100, "宵夜"),
		testutil.Expense("4", date(time.April, 1, 12, 0), 200, "午餐"),
		testutil.Expense("5", date(time.March, 31, 12, 0), 999, "午餐"),
		testutil.Expense("6", testutil.Date(2023, time.April, 10, 12, 0), 777, "午餐"),
	}

	assert.Equal(t, int64(100), TodaySpent(expenses, now))
	assert.Equal(t, int64(400), MonthSpent(expenses, now))
	assert.Equal(t, int64(0), TodaySpent(nil, now))
}

func TestAppendingIncreasesTodayOnly(t *testing.T) {
	now := date(time.April, 10, 18, 0)
	expenses := []model.Expense{
		testutil.Expense("1", date(time.April, 9, 12, 0), 80, "午餐"),
	}
	beforeToday := TodaySpent(expenses, now)
	beforeYesterday := TodaySpent(expenses, now.AddDate(0, 0, -1))

	expenses = append(expenses, testutil.Expense("2", now, 250, "晚餐"))

	assert.Equal(t, beforeToday+250, TodaySpent(expenses, now))
	assert.Equal(t, beforeYesterday, TodaySpent(expenses, now.AddDate(0, 0, -1)))
}

func TestDailyAllowance(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		spent    int64
		budget   int64
		expected int64
	}{
		{
			name:     "day 10 of a 30 day month",
			now:      date(time.April, 10, 9, 0),
			spent:    3000,
			budget:   10000,
			expected: 333,
		},
		{
			name:     "overspent clamps to zero",
			now:      date(time.April, 15, 9, 0),
			spent:    5000,
			budget:   1000,
			expected: 0,
		},
		{
			name:     "last day gets the whole remainder",
			now:      date(time.April, 30, 9, 0),
			spent:    9000,
			budget:   10000,
			expected: 1000,
		},
		{
			name:     "first day of a leap February",
			now:      date(time.February, 1, 9, 0),
			spent:    0,
			budget:   2900,
			expected: 100,
		},
		{
			name:     "nothing spent",
			now:      date(time.January, 1, 0, 0),
			spent:    0,
			budget:   3100,
			expected: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var expenses []model.Expense
			if tt.spent > 0 {
				expenses = append(expenses, testutil.Expense("x", time.Date(tt.now.Year(), tt.now.Month(), 1, 8, 0, 0, 0, time.Local), tt.spent, "午餐"))
			}
			got := DailyAllowance(expenses, tt.budget, tt.now)
			assert.Equal(t, tt.expected, got)
			assert.GreaterOrEqual(t, got, int64(0))
		})
	}
}

func TestRemainingDays(t *testing.T) {
	assert.Equal(t, 21, RemainingDays(date(time.April, 10, 0, 0)))
	assert.Equal(t, 1, RemainingDays(date(time.April, 30, 23, 59)))
	assert.Equal(t, 29, DaysInMonth(date(time.February, 5, 0, 0)))
	assert.Equal(t, 28, DaysInMonth(testutil.Date(2023, time.February, 5, 0, 0)))
	assert.Equal(t, 31, DaysInMonth(date(time.December, 31, 0, 0)))
}

func TestCategoryBreakdown(t *testing.T) {
	now := date(time.April, 10, 18, 0)
	expenses := []model.Expense{
		testutil.Expense("1", date(time.April, 10, 8, 0), 60, "早餐"),
		testutil.Expense("2", date(time.April, 10, 12, 0), 120, "午餐"),
		testutil.Expense("3", date(time.April, 10, 13, 0), 30, "午餐"),
		testutil.Expense("4", date(time.April, 2, 12, 0), 200, "午餐"),
		testutil.Expense("5", date(time.April, 3, 12, 0), 50, "舊分類"),
	}

	today := CategoryBreakdown(expenses, now, ScopeToday)
	assert.Equal(t, map[string]int64{"早餐": 60, "午餐": 150}, today)

	month := CategoryBreakdown(expenses, now, ScopeMonth)
	assert.Equal(t, map[string]int64{"早餐": 60, "午餐": 350, "舊分類": 50}, month)

	folded := FoldUnknown(month, []string{"早餐", "午餐"}, model.UnclassifiedName)
	assert.Equal(t, map[string]int64{"早餐": 60, "午餐": 350, model.UnclassifiedName: 50}, folded)
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("today")
	require.NoError(t, err)
	assert.Equal(t, ScopeToday, s)

	_, err = ParseScope("week")
	assert.Error(t, err)
}

func TestBudgetProgress(t *testing.T) {
	assert.InDelta(t, 0.25, BudgetProgress(2500, 10000), 1e-9)
	assert.InDelta(t, 1.0, BudgetProgress(20000, 10000), 1e-9)
	assert.InDelta(t, 1.0, BudgetProgress(1, 0), 1e-9)
}

func TestSummarize(t *testing.T) {
	now := date(time.April, 10, 18, 0)
	expenses := []model.Expense{
		testutil.Expense("1", date(time.April, 1, 12, 0), 2600, "午餐"),
		testutil.Expense("2", date(time.April, 10, 12, 0), 400, "午餐"),
	}

	s := Summarize(expenses, 10000, now)
	assert.Equal(t, int64(400), s.TodaySpent)
	assert.Equal(t, int64(3000), s.MonthSpent)
	assert.Equal(t, int64(333), s.Allowance)
	assert.Equal(t, int64(-67), s.TodayRemaining)
	assert.True(t, s.OverBudget())
	assert.Equal(t, 21, s.RemainingDays)
	assert.Equal(t, DailyAllowance(expenses, 10000, now), s.Allowance)
}

func TestMonthReport(t *testing.T) {
	expenses := []model.Expense{
		testutil.Expense("a", date(time.April, 2, 8, 0), 50, "早餐"),
		testutil.Expense("b", date(time.April, 2, 19, 0), 200, "晚餐"),
		testutil.Expense("c", date(time.April, 5, 12, 0), 150, "午餐"),
		testutil.Expense("d", date(time.April, 5, 8, 0), 50, "早餐"),
		testutil.Expense("e", date(time.May, 1, 8, 0), 999, "早餐"),
	}

	r := MonthReport(expenses, 2024, time.April, time.Local)

	assert.Equal(t, 4, r.Count)
	assert.Equal(t, int64(450), r.Total)
	assert.Equal(t, []CategoryTotal{
		{Name: "晚餐", Amount: 200},
		{Name: "午餐", Amount: 150},
		{Name: "早餐", Amount: 100},
	}, r.Categories)

	require.Len(t, r.Days, 2)
	assert.Equal(t, 5, r.Days[0].Date.Day())
	assert.Equal(t, int64(200), r.Days[0].Total)
	assert.Equal(t, "c", r.Days[0].Expenses[0].ID)
	assert.Equal(t, "d", r.Days[0].Expenses[1].ID)
	assert.Equal(t, 2, r.Days[1].Date.Day())
	assert.Equal(t, "b", r.Days[1].Expenses[0].ID)

	empty := MonthReport(expenses, 2024, time.June, time.Local)
	assert.Zero(t, empty.Count)
	assert.Empty(t, empty.Days)
}

func TestSortBreakdownTies(t *testing.T) {
	got := SortBreakdown(map[string]int64{"b": 10, "a": 10, "c": 20})
	assert.Equal(t, []CategoryTotal{{"c", 20}, {"a", 10}, {"b", 10}}, got)
}
