package ofx

import (
	"time"

	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/rules"
)

// Plan is the outcome of matching drafts against the ledger.
type Plan struct {
	Entries    []ledger.Entry
	Duplicates int
}

type dedupeKey struct {
	date   time.Time
	note   string
	amount int64
}

func keyOf(date time.Time, amount int64, note string) dedupeKey {
	return dedupeKey{date: date.Truncate(time.Minute).UTC(), amount: amount, note: note}
}

// BuildPlan turns drafts into ledger entries. A draft whose minute, amount and
// payee match an existing expense, or an earlier draft, is counted as a
// duplicate. An empty category resolves each entry from its posting time.
func BuildPlan(drafts []Draft, existing []model.Expense, categories []model.Category, category string) Plan {
	seen := make(map[dedupeKey]bool, len(existing)+len(drafts))
	for _, e := range existing {
		seen[keyOf(e.Date, e.Amount, e.Note)] = true
	}

	var plan Plan
	for _, d := range drafts {
		key := keyOf(d.Date, d.Amount, d.Payee)
		if seen[key] {
			plan.Duplicates++
			continue
		}
		seen[key] = true

		name := category
		if name == "" {
			name = rules.NameAt(categories, d.Date)
		}

		plan.Entries = append(plan.Entries, ledger.Entry{
			Date:         d.Date,
			Amount:       d.Amount,
			CategoryName: name,
			Note:         d.Payee,
		})
	}
	return plan
}
