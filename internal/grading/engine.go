package grading

import (
	"context"
	"strings"
)

// Q is the minimal view of a question needed for grading.
type Q struct {
	Type          string
	CorrectAnswer string
}

// Result is the outcome of grading a single submitted answer. For auto-graded
// types Marks is final and Graded is true; NeedsManual rows are stored with
// nil marks until an instructor supplies them.
type Result struct {
	Marks       int
	Graded      bool
	NeedsManual bool
}

// Strategy grades a single question type.
type Strategy interface {
	Grade(ctx context.Context, q Q, answer string) (Result, error)
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(ctx context.Context, q Q, answer string) (Result, error)
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(ctx context.Context, q Q, answer string) (Result, error) {
	s, ok := g.strategies[q.Type]
	if !ok {
		// Unknown types fall through to manual review rather than erroring.
		return Result{NeedsManual: true}, nil
	}
	return s.Grade(ctx, q, answer)
}

type Option func(*config)

type config struct {
	TrimAnswers bool // trim surrounding whitespace before comparing
}

func WithTrimAnswers(b bool) Option { return func(c *config) { c.TrimAnswers = b } }

// NewDefaultGrader installs the built-in strategies: exact-match MCQ and
// manual-review SAQ.
func NewDefaultGrader(opts ...Option) Grader {
	cfg := &config{TrimAnswers: true}
	for _, o := range opts {
		o(cfg)
	}
	return &defaultGrader{
		strategies: map[string]Strategy{
			"MCQ": mcqStrategy{trim: cfg.TrimAnswers},
			"SAQ": saqStrategy{},
		},
	}
}

// mcqStrategy awards 1 mark for an exact string match against the canonical
// answer, 0 otherwise. The row is graded either way.
type mcqStrategy struct{ trim bool }

func (s mcqStrategy) Grade(_ context.Context, q Q, answer string) (Result, error) {
	res := Result{Graded: true}
	key := q.CorrectAnswer
	if s.trim {
		answer = strings.TrimSpace(answer)
		key = strings.TrimSpace(key)
	}
	if answer != "" && answer == key {
		res.Marks = 1
	}
	return res, nil
}

// saqStrategy never auto-grades; marks stay null pending instructor review.
type saqStrategy struct{}

func (saqStrategy) Grade(_ context.Context, _ Q, _ string) (Result, error) {
	return Result{NeedsManual: true}, nil
}
