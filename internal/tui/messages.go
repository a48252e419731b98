package tui

import (
	"github.com/Veraticus/tally/internal/app"
	"github.com/Veraticus/tally/internal/model"
)

// stateChangedMsg is sent when the application state changed outside the
// session's own commands.
type stateChangedMsg struct {
	event app.Event
}

// answerMsg carries the outcome of a question. seq ties it to the submission
// that started it; stale answers are dropped.
type answerMsg struct {
	text string
	seq  int
	ok   bool
}

type expenseAddedMsg struct {
	err     error
	expense model.Expense
}

type expenseDeletedMsg struct {
	expense model.Expense
	ok      bool
}
