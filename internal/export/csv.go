// Package export renders the ledger as flat comma-separated records.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/model"
)

// Header is the column list of every export.
var Header = []string{"date", "time", "category", "amount", "note"}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

var fieldReplacer = strings.NewReplacer(
	",", "，",
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
)

// Sanitize keeps a value on one line and free of field separators.
func Sanitize(s string) string {
	return fieldReplacer.Replace(s)
}

// Row renders one expense in its own location.
func Row(e model.Expense) []string {
	return []string{
		e.Date.Format(dateLayout),
		e.Date.Format(timeLayout),
		Sanitize(e.CategoryName),
		strconv.FormatInt(e.Amount, 10),
		Sanitize(e.Note),
	}
}

// Sorted returns a copy of expenses ordered oldest first.
func Sorted(expenses []model.Expense) []model.Expense {
	sorted := make([]model.Expense, len(expenses))
	copy(sorted, expenses)
	model.SortByDateAsc(sorted)
	return sorted
}

// Rows renders expenses oldest first. The input slice is not modified.
func Rows(expenses []model.Expense) [][]string {
	sorted := Sorted(expenses)
	rows := make([][]string, 0, len(sorted))
	for _, e := range sorted {
		rows = append(rows, Row(e))
	}
	return rows
}

// Filter keeps the expenses of the month containing month (in month's location).
// A zero month keeps everything.
func Filter(expenses []model.Expense, month time.Time) []model.Expense {
	if month.IsZero() {
		return expenses
	}
	var kept []model.Expense
	for _, e := range expenses {
		d := e.Date.In(month.Location())
		if d.Year() == month.Year() && d.Month() == month.Month() {
			kept = append(kept, e)
		}
	}
	return kept
}

// CSV returns the header line followed by one line per expense.
func CSV(expenses []model.Expense) string {
	var b strings.Builder
	b.WriteString(strings.Join(Header, ","))
	b.WriteByte('\n')
	for _, row := range Rows(expenses) {
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteCSV writes the export to w.
func WriteCSV(w io.Writer, expenses []model.Expense) error {
	if _, err := io.WriteString(w, CSV(expenses)); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
