package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/mindengage-grader/internal/grading"
	"github.com/mind-engage/mindengage-grader/internal/metrics"
	syncx "github.com/mind-engage/mindengage-grader/internal/sync"
)

// Service grades submissions against the question bank. It is safe for
// concurrent use; the registries it holds are immutable.
type Service struct {
	store    Store
	grader   *grading.Registry // assessment grading: ordered MCQM policy
	practice *grading.Registry // practice checks: set-based MCQM policy
	events   syncx.Appender
	metrics  *metrics.Metrics
	log      *zap.Logger
	workers  int
	now      func() time.Time
}

type ServiceOption func(*Service)

func WithEvents(a syncx.Appender) ServiceOption   { return func(s *Service) { s.events = a } }
func WithMetrics(m *metrics.Metrics) ServiceOption { return func(s *Service) { s.metrics = m } }
func WithLogger(l *zap.Logger) ServiceOption       { return func(s *Service) { s.log = l } }
func WithWorkers(n int) ServiceOption              { return func(s *Service) { s.workers = n } }
func WithClock(now func() time.Time) ServiceOption { return func(s *Service) { s.now = now } }

func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		log:     zap.NewNop(),
		workers: 8,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.workers <= 0 {
		s.workers = 1
	}
	s.grader = grading.NewRegistry(grading.WithLogger(s.log))
	s.practice = grading.NewRegistry(
		grading.WithLogger(s.log),
		grading.WithMultiSelectPolicy(grading.PolicySet),
	)
	return s
}

// PutQuestion validates and stores a question, assigning an id when absent.
func (s *Service) PutQuestion(ctx context.Context, q Question) (Question, error) {
	q.ID = strings.TrimSpace(q.ID)
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if !s.grader.Supports(q.Type) {
		return Question{}, fmt.Errorf("%w: %w: %q", ErrInvalidQuestion, grading.ErrUnsupportedQuestionType, q.Type)
	}
	scheme, err := grading.DecodeScheme(q.Scheme)
	if err != nil {
		return Question{}, fmt.Errorf("%w: scheme: %v", ErrInvalidQuestion, err)
	}
	if scheme == nil {
		return Question{}, fmt.Errorf("%w: scheme is required", ErrInvalidQuestion)
	}
	if err := scheme.Validate(); err != nil {
		return Question{}, fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
	}
	if len(q.Answer) == 0 || !json.Valid(q.Answer) {
		return Question{}, fmt.Errorf("%w: answer must be a JSON document", ErrInvalidQuestion)
	}
	if q.CreatedAt == 0 {
		q.CreatedAt = s.now().Unix()
	}
	if err := s.store.PutQuestion(ctx, q); err != nil {
		return Question{}, err
	}
	s.emit(ctx, syncx.TypeQuestionStored, q.ID, map[string]any{"id": q.ID, "type": q.Type})
	return q, nil
}

func (s *Service) GetQuestion(ctx context.Context, id string) (Question, error) {
	return s.store.GetQuestion(ctx, id)
}

func (s *Service) ListQuestions(ctx context.Context, opts ListOpts) ([]Question, error) {
	return s.store.ListQuestions(ctx, opts)
}

// GradeOne grades a single response without touching the question bank.
func (s *Service) GradeOne(ctx context.Context, questionType string, docs grading.Documents) (grading.Result, error) {
	return s.grade(ctx, s.grader, questionType, docs)
}

// grade dispatches through reg and records the outcome in metrics and logs.
func (s *Service) grade(ctx context.Context, reg *grading.Registry, questionType string, docs grading.Documents, fields ...zap.Field) (grading.Result, error) {
	res, err := reg.Grade(ctx, questionType, docs)
	if err != nil {
		s.metrics.ObserveUnsupported(questionType)
		s.log.Warn("question cannot be graded",
			append(fields, zap.String("type", questionType), zap.Error(err))...)
		return grading.Result{}, err
	}
	s.metrics.ObserveGraded(questionType, string(res.Status))
	return res, nil
}

// PracticeCheck grades a response to a stored question using the set-based
// multi-select policy. Nothing is persisted.
func (s *Service) PracticeCheck(ctx context.Context, questionID string, response json.RawMessage) (grading.Result, error) {
	q, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return grading.Result{}, err
	}
	return s.grade(ctx, s.practice, q.Type,
		grading.Documents{Scheme: q.Scheme, Answer: q.Answer, Response: response},
		zap.String("question_id", questionID), zap.Bool("practice", true))
}

// GradeAttempt grades every response of sub concurrently, persists the
// result and appends an AttemptGraded event. One ungradable question never
// aborts the others: it is reported on its item instead.
func (s *Service) GradeAttempt(ctx context.Context, sub Submission) (AttemptResult, error) {
	start := time.Now()
	sub.AttemptID = strings.TrimSpace(sub.AttemptID)
	sub.UserID = strings.TrimSpace(sub.UserID)
	if sub.AttemptID == "" || sub.UserID == "" {
		return AttemptResult{}, fmt.Errorf("%w: attempt_id and user_id required", ErrInvalidSubmission)
	}

	ids := make([]string, 0, len(sub.Responses))
	for id := range sub.Responses {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	questions, err := s.store.GetQuestions(ctx, ids)
	if err != nil {
		return AttemptResult{}, fmt.Errorf("load questions: %w", err)
	}

	items := make([]GradedItem, len(ids))
	maxMarks := make([]float64, len(ids))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			items[i], maxMarks[i] = s.gradeItem(ctx, id, questions, sub.Responses[id])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return AttemptResult{}, err
	}

	res := AttemptResult{
		AttemptID: sub.AttemptID,
		UserID:    sub.UserID,
		Items:     items,
		GradedAt:  s.now().Unix(),
	}
	for _, m := range maxMarks {
		res.MaxMarks += m
	}
	res.tally()

	if err := s.store.SaveAttemptResult(ctx, res); err != nil {
		return AttemptResult{}, fmt.Errorf("save result: %w", err)
	}
	s.emit(ctx, syncx.TypeAttemptGraded, res.AttemptID, map[string]any{
		"attempt_id":  res.AttemptID,
		"user_id":     res.UserID,
		"total_marks": res.TotalMarks,
		"max_marks":   res.MaxMarks,
		"counts":      res.Counts,
	})
	s.metrics.ObserveAttempt(time.Since(start))
	s.log.Info("attempt graded",
		zap.String("attempt_id", res.AttemptID),
		zap.String("user_id", res.UserID),
		zap.Int("items", len(res.Items)),
		zap.Float64("total_marks", res.TotalMarks),
		zap.Duration("took", time.Since(start)))
	return res, nil
}

// gradeItem grades one response and returns its item plus the question's
// full mark.
func (s *Service) gradeItem(ctx context.Context, id string, questions map[string]Question, resp json.RawMessage) (GradedItem, float64) {
	q, ok := questions[id]
	if !ok {
		return GradedItem{QuestionID: id, Status: grading.StatusPending, Error: ErrQuestionNotFound.Error()}, 0
	}
	item := GradedItem{QuestionID: id, Type: q.Type}

	res, err := s.grade(ctx, s.grader, q.Type,
		grading.Documents{Scheme: q.Scheme, Answer: q.Answer, Response: resp},
		zap.String("question_id", id))
	if err != nil {
		item.Status = grading.StatusPending
		item.Error = err.Error()
		return item, 0
	}
	item.Marks, item.Status = res.Marks, res.Status

	var full float64
	if scheme, err := grading.DecodeScheme(q.Scheme); err == nil && scheme != nil {
		full = scheme.TotalMark
	}
	return item, full
}

func (s *Service) GetAttemptResult(ctx context.Context, attemptID string) (AttemptResult, error) {
	return s.store.GetAttemptResult(ctx, attemptID)
}

// emit appends an event; failures are logged, never returned, since the
// graded result is already stored.
func (s *Service) emit(ctx context.Context, typ, key string, payload any) {
	if s.events == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error("marshal event", zap.String("type", typ), zap.Error(err))
		return
	}
	if err := s.events.Append(ctx, syncx.Event{Type: typ, Key: key, DataJSON: string(data)}); err != nil {
		s.log.Error("append event", zap.String("type", typ), zap.String("key", key), zap.Error(err))
	}
}

// IsNotFound reports whether err means a missing question or attempt result.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrQuestionNotFound) || errors.Is(err, ErrAttemptNotFound)
}
