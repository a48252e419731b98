// Package query turns the ledger and a user question into a prompt for a
// text-generation service and turns the outcome into something displayable.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/model"
)

// DefaultMaxRecords bounds how many expenses are embedded in a prompt.
const DefaultMaxRecords = 50

// NoDataMessage is the reply for an empty ledger; no request is made.
const NoDataMessage = "There are no expenses recorded yet, so there is nothing to analyze. Log a few expenses first and then ask again!"

// ExampleQuestions are offered as starting points.
var ExampleQuestions = []string{
	"這個月飲品花了多少？",
	"上週晚餐總共多少錢？",
	"我哪一天花最多錢？",
	"本月交通費用統計",
	"分析我的消費習慣",
}

const recordTimeLayout = "2006-01-02 15:04"

const promptTemplate = `You are a bookkeeping assistant. Below are the user's %d most recent expense records, newest first. Amounts are whole currency units.

%s
%sUser question: %s

Answer using only the records above. If the question involves amounts, compute the sums precisely and state the numbers. Keep the answer concise and clear, and reply in the same language as the question.`

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// FormatRecord renders one expense as a single prompt line.
func FormatRecord(e model.Expense) string {
	var b strings.Builder
	fmt.Fprintf(&b, "date: %s, category: %s, amount: %d",
		e.Date.Format(recordTimeLayout),
		lineBreaks.Replace(e.CategoryName),
		e.Amount)
	if e.HasNote() {
		fmt.Fprintf(&b, ", note: %s", lineBreaks.Replace(e.Note))
	}
	return b.String()
}

// RecentRecords returns up to maxRecords expenses, newest first. The input is
// not modified. maxRecords <= 0 means DefaultMaxRecords.
func RecentRecords(expenses []model.Expense, maxRecords int) []model.Expense {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	sorted := append([]model.Expense(nil), expenses...)
	model.SortByDateDesc(sorted)
	if len(sorted) > maxRecords {
		sorted = sorted[:maxRecords]
	}
	return sorted
}

// BuildPrompt embeds the most recent expenses and the question in the
// instruction template. For an empty ledger it returns NoDataMessage and
// false, and the caller must not contact the service.
func BuildPrompt(expenses []model.Expense, question string, maxRecords int) (string, bool) {
	return buildPrompt(expenses, question, maxRecords, time.Time{})
}

// buildPrompt adds a "today" line when now is set, so relative questions
// ("last week") can be answered.
func buildPrompt(expenses []model.Expense, question string, maxRecords int, now time.Time) (string, bool) {
	if len(expenses) == 0 {
		return NoDataMessage, false
	}

	recent := RecentRecords(expenses, maxRecords)
	lines := make([]string, len(recent))
	for i, e := range recent {
		lines[i] = FormatRecord(e)
	}

	today := ""
	if !now.IsZero() {
		today = fmt.Sprintf("Today is %s (%s).\n", now.Format("2006-01-02"), now.Weekday())
	}

	return fmt.Sprintf(promptTemplate,
		len(recent),
		strings.Join(lines, "\n"),
		today,
		strings.TrimSpace(question)), true
}
