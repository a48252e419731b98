package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/llm"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
	"golang.org/x/sync/singleflight"
)

// Service answers questions about the ledger. It never mutates the ledger and
// never retries; a failed question must be asked again.
type Service struct {
	generator  service.Generator
	logger     *slog.Logger
	now        func() time.Time
	group      singleflight.Group
	timeout    time.Duration
	maxRecords int
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds each question. Defaults to llm.DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMaxRecords sets how many recent expenses go into the prompt.
func WithMaxRecords(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRecords = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the source of "today" in prompts.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service backed by generator.
func NewService(generator service.Generator, opts ...Option) *Service {
	s := &Service{
		generator:  generator,
		timeout:    llm.DefaultTimeout,
		maxRecords: DefaultMaxRecords,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = common.OrDefault(s.logger)
	return s
}

// Ask answers question from expenses. An empty ledger yields NoDataMessage
// without calling the generator. Identical questions in flight at the same
// time share one request; a caller whose ctx ends stops waiting without
// affecting the others.
func (s *Service) Ask(ctx context.Context, expenses []model.Expense, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	prompt, ok := buildPrompt(expenses, question, s.maxRecords, s.now())
	if !ok {
		s.logger.Debug("ledger empty, skipping generation")
		return prompt, nil
	}

	start := time.Now()
	ch := s.group.DoChan(prompt, func() (any, error) {
		// Joined callers must not inherit the starter's cancellation.
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.generator.Generate(callCtx, prompt)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		s.logger.Debug("question abandoned", "duration", time.Since(start))
		return "", ctx.Err()
	}

	answer, err := answerFrom(res)
	if err != nil {
		s.logger.Info("question failed",
			"kind", llm.KindOf(err),
			"duration", time.Since(start),
			"error", err)
		return "", err
	}

	s.logger.Debug("question answered",
		"records", min(len(expenses), s.maxRecords),
		"shared", res.Shared,
		"duration", time.Since(start))

	return strings.TrimSpace(answer), nil
}

func answerFrom(res singleflight.Result) (string, error) {
	if res.Err != nil {
		return "", res.Err
	}
	answer, ok := res.Val.(string)
	if !ok {
		return "", &llm.Error{
			Provider: "query",
			Kind:     llm.KindParse,
			Err:      fmt.Errorf("unexpected answer type %T", res.Val),
		}
	}
	return answer, nil
}

// Answer is the display boundary: the answer on success, or a user-facing
// message and false on failure.
func (s *Service) Answer(ctx context.Context, expenses []model.Expense, question string) (string, bool) {
	answer, err := s.Ask(ctx, expenses, question)
	if err != nil {
		return UserMessage(err), false
	}
	return answer, true
}
