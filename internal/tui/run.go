package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/tally/internal/app"
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the session and blocks until the user quits or ctx is done.
func Run(ctx context.Context, state *app.State, opts ...Option) error {
	if state == nil {
		return fmt.Errorf("state is required")
	}

	m := New(state, opts...)

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if m.config.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	program := tea.NewProgram(m, programOpts...)

	// Changes made by commands running outside Update (and by other code
	// holding the state) reach the model as messages.
	unsubscribe := state.Subscribe(func(e app.Event) {
		program.Send(stateChangedMsg{event: e})
	})
	defer unsubscribe()

	final, err := program.Run()
	if fm, ok := final.(Model); ok && fm.cancel != nil {
		fm.cancel()
	}
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("tui session failed: %w", err)
	}
	return nil
}
