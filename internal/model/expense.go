package model

import (
	"sort"
	"time"
)

// Expense is a single spending record.
type Expense struct {
	Date         time.Time `json:"date"`
	ID           string    `json:"id"`
	CategoryName string    `json:"category_name"`
	Note         string    `json:"note,omitempty"`
	Amount       int64     `json:"amount"`
}

// HasNote reports whether the optional note is set.
func (e Expense) HasNote() bool {
	return e.Note != ""
}

// SortByDateDesc orders expenses newest first. Equal dates keep their relative order.
func SortByDateDesc(expenses []Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date.After(expenses[j].Date)
	})
}

// SortByDateAsc orders expenses oldest first. Equal dates keep their relative order.
func SortByDateAsc(expenses []Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date.Before(expenses[j].Date)
	})
}
