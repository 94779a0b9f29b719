package assessment

import (
	"context"
	"errors"
)

var (
	ErrQuestionNotFound  = errors.New("question not found")
	ErrAttemptNotFound   = errors.New("attempt result not found")
	ErrInvalidQuestion   = errors.New("invalid question")
	ErrInvalidSubmission = errors.New("invalid submission")
)

type ListOpts struct {
	Type   string
	Limit  int
	Offset int
}

func (o ListOpts) normalized() ListOpts {
	if o.Limit <= 0 || o.Limit > 500 {
		o.Limit = 50
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

type Store interface {
	PutQuestion(ctx context.Context, q Question) error
	GetQuestion(ctx context.Context, id string) (Question, error) // full question, with key
	// GetQuestions returns the questions that exist among ids; missing ids are absent from the map.
	GetQuestions(ctx context.Context, ids []string) (map[string]Question, error)
	ListQuestions(ctx context.Context, opts ListOpts) ([]Question, error)

	SaveAttemptResult(ctx context.Context, r AttemptResult) error
	GetAttemptResult(ctx context.Context, attemptID string) (AttemptResult, error)
}
