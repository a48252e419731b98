package aggregate

import (
	"sort"
	"time"

	"github.com/Veraticus/tally/internal/model"
)

// CategoryTotal is one row of a sorted breakdown.
type CategoryTotal struct {
	Name   string
	Amount int64
}

// DayGroup collects one calendar day's expenses, newest first.
type DayGroup struct {
	Date     time.Time
	Expenses []model.Expense
	Total    int64
}

// Report is the history view of a single month.
type Report struct {
	Categories []CategoryTotal
	Days       []DayGroup
	Month      time.Month
	Year       int
	Total      int64
	Count      int
}

// SortBreakdown orders a breakdown by amount descending, then by name.
func SortBreakdown(breakdown map[string]int64) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(breakdown))
	for name, amount := range breakdown {
		out = append(out, CategoryTotal{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// MonthReport builds the history for year/month in loc.
func MonthReport(expenses []model.Expense, year int, month time.Month, loc *time.Location) Report {
	if loc == nil {
		loc = time.Local
	}
	anchor := time.Date(year, month, 1, 0, 0, 0, 0, loc)

	var selected []model.Expense
	for _, e := range expenses {
		if sameMonth(e.Date.In(loc), anchor) {
			selected = append(selected, e)
		}
	}
	model.SortByDateDesc(selected)

	report := Report{
		Year:       year,
		Month:      month,
		Count:      len(selected),
		Categories: SortBreakdown(CategoryBreakdown(selected, anchor, ScopeMonth)),
	}

	for _, e := range selected {
		d := e.Date.In(loc)
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)

		if n := len(report.Days); n == 0 || !report.Days[n-1].Date.Equal(day) {
			report.Days = append(report.Days, DayGroup{Date: day})
		}
		group := &report.Days[len(report.Days)-1]
		group.Expenses = append(group.Expenses, e)
		group.Total += e.Amount
		report.Total += e.Amount
	}

	return report
}
