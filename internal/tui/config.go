package tui

import (
	"context"
	"time"

	"github.com/Veraticus/tally/internal/app"
	"github.com/Veraticus/tally/internal/llm"
	"github.com/Veraticus/tally/internal/model"
)

// Asker answers a question about the ledger. ok is false when text is an
// error message rather than an answer.
type Asker interface {
	Answer(ctx context.Context, expenses []model.Expense, question string) (text string, ok bool)
}

// Config holds TUI configuration.
type Config struct {
	State *app.State
	Asker Asker
	// Timeout bounds one question, including the provider round trip.
	Timeout     time.Duration
	Width       int
	Height      int
	RecentLimit int
	AltScreen   bool
	StartInAsk  bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Timeout:     llm.DefaultTimeout,
		Width:       80,
		Height:      24,
		RecentLimit: 5,
		AltScreen:   true,
	}
}

// WithAsker sets the question answerer. Without one, ask mode is disabled.
func WithAsker(asker Asker) Option {
	return func(c *Config) {
		c.Asker = asker
	}
}

// WithTimeout bounds each question.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}

// WithAskMode starts the session on the question input.
func WithAskMode() Option {
	return func(c *Config) {
		c.StartInAsk = true
	}
}
