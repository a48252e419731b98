package testutil

import (
	"time"

	"github.com/Veraticus/tally/internal/model"
)

// Clock returns a fixed "now" for components that take a clock func.
func Clock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Date builds a local timestamp.
func Date(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.Local)
}

// Expense builds an expense record with a deterministic id.
func Expense(id string, date time.Time, amount int64, category string) model.Expense {
	return model.Expense{
		ID:           id,
		Date:         date,
		Amount:       amount,
		CategoryName: category,
	}
}
