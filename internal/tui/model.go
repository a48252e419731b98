// Package tui is the interactive terminal session: a budget dashboard, a
// quick-add input and an AI question input.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/tally/internal/aggregate"
	"github.com/Veraticus/tally/internal/app"
	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/query"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Mode selects which input has focus.
type Mode int

const (
	ModeAdd Mode = iota
	ModeAsk
)

func (m Mode) String() string {
	if m == ModeAsk {
		return "ask"
	}
	return "add"
}

// Model holds the session state.
type Model struct {
	state    *app.State
	asker    Asker
	cancel   context.CancelFunc
	colors   cli.ColorIndex
	summary  aggregate.Summary
	recent   []model.Expense
	keymap   KeyMap
	help     help.Model
	spinner  spinner.Model
	bar      progress.Model
	addInput textinput.Model
	askInput textinput.Model
	config   Config
	status   string
	answer   string
	asked    string
	mode     Mode
	seq      int
	example  int
	width    int
	height   int
	busy     bool
	answerOK bool
	failed   bool
	quitting bool
}

// New creates a session model over state.
func New(state *app.State, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.State = state

	addInput := textinput.New()
	addInput.Prompt = "＋ "
	addInput.Placeholder = "120 #午餐 bento"
	addInput.CharLimit = 200

	askInput := textinput.New()
	askInput.Prompt = "? "
	askInput.Placeholder = query.ExampleQuestions[0]
	askInput.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cli.InfoStyle

	m := Model{
		state:    state,
		asker:    cfg.Asker,
		config:   cfg,
		keymap:   DefaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(30), progress.WithoutPercentage()),
		addInput: addInput,
		askInput: askInput,
		width:    cfg.Width,
		height:   cfg.Height,
	}
	if cfg.StartInAsk && m.asker != nil {
		m.mode = ModeAsk
	}
	m.focus()
	m.refresh()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Mode returns the active input mode.
func (m Model) Mode() Mode {
	return m.mode
}

// Busy reports whether a question is in flight.
func (m Model) Busy() bool {
	return m.busy
}

func (m *Model) focus() {
	if m.mode == ModeAsk {
		m.addInput.Blur()
		m.askInput.Focus()
		return
	}
	m.askInput.Blur()
	m.addInput.Focus()
}

// refresh recomputes dashboard figures from the application state.
func (m *Model) refresh() {
	now := m.state.Now()
	m.summary = m.state.Snapshot(now)
	m.colors = cli.NewColorIndex(m.state.Categories())

	expenses := m.state.Expenses()
	if len(expenses) > m.config.RecentLimit {
		expenses = expenses[:m.config.RecentLimit]
	}
	m.recent = expenses
}

func (m *Model) setStatus(msg string, failed bool) {
	m.status = msg
	m.failed = failed
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.addInput.Width = max(10, msg.Width-6)
		m.askInput.Width = max(10, msg.Width-6)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case stateChangedMsg:
		m.refresh()
		return m, nil

	case expenseAddedMsg:
		if msg.err != nil {
			m.setStatus(addErrorMessage(msg.err), true)
			return m, nil
		}
		m.addInput.Reset()
		m.setStatus(fmt.Sprintf("Added %s to %s", cli.FormatAmount(msg.expense.Amount), msg.expense.CategoryName), false)
		m.refresh()
		return m, nil

	case expenseDeletedMsg:
		if msg.ok {
			m.setStatus(fmt.Sprintf("Deleted %s (%s)", cli.FormatAmount(msg.expense.Amount), msg.expense.CategoryName), false)
		} else {
			m.setStatus("Nothing to delete.", false)
		}
		m.refresh()
		return m, nil

	case answerMsg:
		if !m.busy || msg.seq != m.seq {
			return m, nil
		}
		m.finishQuestion()
		m.answer = msg.text
		m.answerOK = msg.ok
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateInput(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		if m.cancel != nil {
			m.cancel()
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keymap.SwitchMode):
		if m.mode == ModeAdd {
			m.mode = ModeAsk
		} else {
			m.mode = ModeAdd
		}
		m.focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keymap.Cancel):
		if m.busy {
			m.finishQuestion()
			// A late answer for this submission must not be shown.
			m.seq++
			m.setStatus("Question canceled.", false)
			return m, nil
		}
		if m.mode == ModeAsk {
			m.askInput.Reset()
		} else {
			m.addInput.Reset()
		}
		m.setStatus("", false)
		return m, nil

	case key.Matches(msg, m.keymap.Submit):
		if m.mode == ModeAsk {
			return m.submitQuestion()
		}
		return m.submitExpense()

	case key.Matches(msg, m.keymap.NextExample):
		if m.mode == ModeAsk && !m.busy {
			m.askInput.SetValue(query.ExampleQuestions[m.example%len(query.ExampleQuestions)])
			m.askInput.CursorEnd()
			m.example++
		}
		return m, nil

	case key.Matches(msg, m.keymap.DeleteLast):
		return m, m.deleteNewest()
	}

	return m.updateInput(msg)
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.mode == ModeAsk {
		m.askInput, cmd = m.askInput.Update(msg)
	} else {
		m.addInput, cmd = m.addInput.Update(msg)
	}
	return m, cmd
}

func (m Model) submitExpense() (tea.Model, tea.Cmd) {
	entry, err := ParseQuickAdd(m.addInput.Value())
	if err != nil {
		m.setStatus(addErrorMessage(err), true)
		return m, nil
	}

	state := m.state
	return m, func() tea.Msg {
		expense, err := state.AddExpense(context.Background(), entry)
		return expenseAddedMsg{expense: expense, err: err}
	}
}

// submitQuestion starts a question unless one is already in flight.
func (m Model) submitQuestion() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if m.asker == nil {
		m.setStatus("AI questions are not configured; set an API key.", true)
		return m, nil
	}

	question := strings.TrimSpace(m.askInput.Value())
	if question == "" {
		m.setStatus("Type a question first.", true)
		return m, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.config.Timeout)
	m.cancel = cancel
	m.busy = true
	m.seq++
	m.asked = question
	m.answer = ""
	m.setStatus("", false)
	m.askInput.Reset()

	asker := m.asker
	expenses := m.state.Expenses()
	seq := m.seq
	ask := func() tea.Msg {
		text, ok := asker.Answer(ctx, expenses, question)
		return answerMsg{seq: seq, text: text, ok: ok}
	}
	return m, tea.Batch(ask, m.spinner.Tick)
}

func (m *Model) finishQuestion() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.busy = false
}

func (m Model) deleteNewest() tea.Cmd {
	state := m.state
	return func() tea.Msg {
		expenses := state.Expenses()
		if len(expenses) == 0 {
			return expenseDeletedMsg{}
		}
		newest := expenses[0]
		return expenseDeletedMsg{expense: newest, ok: state.DeleteExpense(context.Background(), newest.ID)}
	}
}

// ParseQuickAdd reads "<amount> [#category] [note...]".
func ParseQuickAdd(input string) (ledger.Entry, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return ledger.Entry{}, fmt.Errorf("%w: enter an amount", common.ErrInvalidAmount)
	}

	amount, err := ledger.ParseAmount(fields[0])
	if err != nil {
		return ledger.Entry{}, err
	}

	entry := ledger.Entry{Amount: amount}
	rest := fields[1:]
	if len(rest) > 0 && strings.HasPrefix(rest[0], "#") && len(rest[0]) > 1 {
		entry.CategoryName = rest[0][1:]
		rest = rest[1:]
	}
	entry.Note = strings.Join(rest, " ")
	return entry, nil
}

func addErrorMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidAmount):
		return "Amount must be a positive whole number."
	case errors.Is(err, common.ErrFutureDate):
		return "Date cannot be in the future."
	default:
		return err.Error()
	}
}
