// Package rules resolves a time of day to the category whose interval contains it.
package rules

import (
	"time"

	"github.com/Veraticus/tally/internal/model"
)

// Resolve returns the first category, in stored order, whose interval contains
// at. Overlaps are settled by declaration order only. The second result is
// false when nothing matches.
func Resolve(categories []model.Category, at model.TimeOfDay) (model.Category, bool) {
	for _, c := range categories {
		if c.Contains(at) {
			return c, true
		}
	}
	return model.Category{}, false
}

// NameAt resolves the category name for the wall-clock time of t, falling
// back to model.UnclassifiedName.
func NameAt(categories []model.Category, t time.Time) string {
	if c, ok := Resolve(categories, model.At(t)); ok {
		return c.Name
	}
	return model.UnclassifiedName
}

// Overlaps returns the categories that also contain the given category's
// start time. Used to warn when a new interval is shadowed by an earlier one.
func Overlaps(categories []model.Category, target model.Category) []model.Category {
	var out []model.Category
	for _, c := range categories {
		if c.ID == target.ID {
			continue
		}
		if c.Contains(target.Start) || target.Contains(c.Start) {
			out = append(out, c)
		}
	}
	return out
}
