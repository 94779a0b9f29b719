package assessment

import (
	"encoding/json"

	"github.com/mind-engage/mindengage-grader/internal/grading"
)

// Question is one gradable item in the question bank.
type Question struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"` // MCQS, MCQM, NUMERIC, ONE_WORD, LONG_ANSWER
	Scheme    json.RawMessage `json:"scheme"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	CreatedAt int64           `json:"created_at,omitempty"`
}

// Public strips the answer key before a question is shown to a learner.
func (q Question) Public() Question {
	q.Answer = nil
	return q
}

// Submission is one learner's responses for an attempt: questionID -> response document.
type Submission struct {
	AttemptID string                     `json:"attempt_id"`
	UserID    string                     `json:"user_id"`
	Responses map[string]json.RawMessage `json:"responses"`
}

// GradedItem is the outcome for one question of an attempt. Error is set
// when the question could not be graded at all.
type GradedItem struct {
	QuestionID string         `json:"question_id"`
	Type       string         `json:"type"`
	Marks      float64        `json:"marks"`
	Status     grading.Status `json:"status"`
	Error      string         `json:"error,omitempty"`
}

type AttemptResult struct {
	AttemptID  string                 `json:"attempt_id"`
	UserID     string                 `json:"user_id"`
	TotalMarks float64                `json:"total_marks"`
	MaxMarks   float64                `json:"max_marks"`
	Items      []GradedItem           `json:"items"`
	Counts     map[grading.Status]int `json:"counts"`
	GradedAt   int64                  `json:"graded_at"`
}

// tally recomputes totals and per-status counts from Items.
func (r *AttemptResult) tally() {
	r.TotalMarks = 0
	r.Counts = map[grading.Status]int{}
	for _, it := range r.Items {
		r.TotalMarks += it.Marks
		r.Counts[it.Status]++
	}
}
