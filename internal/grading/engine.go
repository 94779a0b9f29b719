package grading

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// ErrUnsupportedQuestionType is returned when no strategy is registered for a tag.
var ErrUnsupportedQuestionType = errors.New("unsupported question type")

// Strategy grades a single response. Implementations must be safe for
// concurrent use: every call gets its own documents and returns its own Result.
type Strategy interface {
	Grade(ctx context.Context, docs Documents) Result
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(ctx context.Context, questionType string, docs Documents) (Result, error)
}

// Registry is an immutable lookup table from tag to strategy.
type Registry struct {
	strategies map[QuestionType]Strategy
}

// Engine options

type Option func(*config)

type config struct {
	MultiSelectPolicy MultiSelectPolicy
	Logger            *zap.Logger
	Extra             map[QuestionType]Strategy
}

// WithMultiSelectPolicy selects how MCQM responses are compared.
func WithMultiSelectPolicy(p MultiSelectPolicy) Option {
	return func(c *config) { c.MultiSelectPolicy = p }
}

// WithLogger sets the logger used to report malformed documents.
func WithLogger(l *zap.Logger) Option { return func(c *config) { c.Logger = l } }

// WithStrategy installs s under tag, replacing a built-in one if present.
func WithStrategy(tag QuestionType, s Strategy) Option {
	return func(c *config) {
		if c.Extra == nil {
			c.Extra = map[QuestionType]Strategy{}
		}
		c.Extra[tag] = s
	}
}

// NewRegistry installs the built-in strategies.
func NewRegistry(opts ...Option) *Registry {
	cfg := &config{
		MultiSelectPolicy: PolicyOrdered,
		Logger:            zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	strategies := map[QuestionType]Strategy{
		TypeMCQS:       singleSelectStrategy{b: newBoundary(TypeMCQS, cfg.Logger)},
		TypeMCQM:       newMultiSelect(cfg.MultiSelectPolicy, newBoundary(TypeMCQM, cfg.Logger)),
		TypeNumeric:    numericStrategy{b: newBoundary(TypeNumeric, cfg.Logger)},
		TypeOneWord:    oneWordStrategy{b: newBoundary(TypeOneWord, cfg.Logger)},
		TypeLongAnswer: longAnswerStrategy{b: newBoundary(TypeLongAnswer, cfg.Logger)},
	}
	for tag, s := range cfg.Extra {
		if s != nil {
			strategies[tag] = s
		}
	}
	return &Registry{strategies: strategies}
}

// Resolve returns the strategy registered for questionType.
func (r *Registry) Resolve(questionType string) (Strategy, error) {
	s, ok := r.strategies[QuestionType(questionType)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedQuestionType, questionType)
	}
	return s, nil
}

// Supports reports whether questionType has a strategy.
func (r *Registry) Supports(questionType string) bool {
	_, ok := r.strategies[QuestionType(questionType)]
	return ok
}

// Types lists the registered tags in sorted order.
func (r *Registry) Types() []QuestionType {
	out := make([]QuestionType, 0, len(r.strategies))
	for t := range r.strategies {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Grade resolves questionType and grades docs with it. The only error it
// returns is ErrUnsupportedQuestionType; malformed documents become results.
func (r *Registry) Grade(ctx context.Context, questionType string, docs Documents) (Result, error) {
	s, err := r.Resolve(questionType)
	if err != nil {
		return Result{}, err
	}
	return s.Grade(ctx, docs), nil
}

// boundary is where a strategy turns decode failures into log lines.
type boundary struct {
	qtype QuestionType
	log   *zap.Logger
}

func newBoundary(t QuestionType, l *zap.Logger) boundary {
	return boundary{qtype: t, log: l}
}

// failed logs err (if any) against the named document and reports whether
// decoding failed.
func (b boundary) failed(doc string, err error) bool {
	if err == nil {
		return false
	}
	if b.log != nil {
		b.log.Debug("malformed grading document",
			zap.String("question_type", string(b.qtype)),
			zap.String("document", doc),
			zap.Error(err))
	}
	return true
}
