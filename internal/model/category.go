package model

import (
	"fmt"
	"time"

	"github.com/Veraticus/tally/internal/common"
)

// MinutesPerDay is the number of distinct minutes in a time-of-day.
const MinutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time with minute precision.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// At returns the time-of-day of t in t's location.
func At(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// ParseTimeOfDay parses "HH:MM" (or "H:MM").
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
	}
	return At(t), nil
}

// Minutes returns the number of minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Valid reports whether the hour is 0-23 and the minute 0-59.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Category is a named time-of-day interval used to classify expenses.
type Category struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Color Color     `json:"color"`
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Wraps reports whether the interval crosses midnight.
func (c Category) Wraps() bool {
	return c.Start.Minutes() > c.End.Minutes()
}

// Contains reports whether t falls inside the category's interval.
// A same-day interval (start <= end) is inclusive at both ends; a wrapping
// interval matches t >= start or t <= end.
func (c Category) Contains(t TimeOfDay) bool {
	now := t.Minutes()
	start := c.Start.Minutes()
	end := c.End.Minutes()

	if start <= end {
		return now >= start && now <= end
	}
	return now >= start || now <= end
}

// Validate checks the name and both bounds.
func (c Category) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", common.ErrInvalidCategory)
	}
	if !c.Start.Valid() {
		return fmt.Errorf("%w: start %d:%d out of range", common.ErrInvalidCategory, c.Start.Hour, c.Start.Minute)
	}
	if !c.End.Valid() {
		return fmt.Errorf("%w: end %d:%d out of range", common.ErrInvalidCategory, c.End.Hour, c.End.Minute)
	}
	return nil
}

// Interval renders the bounds as "HH:MM-HH:MM".
func (c Category) Interval() string {
	return c.Start.String() + "-" + c.End.String()
}
