package grading

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// QuestionType is the case-sensitive tag a caller uses to pick a strategy.
type QuestionType string

const (
	TypeMCQS       QuestionType = "MCQS"
	TypeMCQM       QuestionType = "MCQM"
	TypeNumeric    QuestionType = "NUMERIC"
	TypeOneWord    QuestionType = "ONE_WORD"
	TypeLongAnswer QuestionType = "LONG_ANSWER"
)

// Status is the qualitative outcome reported next to every mark.
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusCorrect        Status = "CORRECT"
	StatusPartialCorrect Status = "PARTIAL_CORRECT"
	StatusIncorrect      Status = "INCORRECT"
)

// Result is the outcome of grading a single response.
type Result struct {
	Marks  float64 `json:"marks"`
	Status Status  `json:"status"`
}

func pending() Result { return Result{Status: StatusPending} }

// Documents carries the three payloads of one grading call, still encoded.
// Each payload is an envelope of the form {"data": {...}}.
type Documents struct {
	Scheme   json.RawMessage `json:"scheme"`
	Answer   json.RawMessage `json:"answer"`
	Response json.RawMessage `json:"response"`
}

// MarkingScheme describes how much a question is worth and its penalty rules.
// Percentages are integers in 0..100; absent percentages decode to 0.
type MarkingScheme struct {
	TotalMark                 float64 `json:"totalMark"`
	NegativeMark              float64 `json:"negativeMark"`
	NegativeMarkingPercentage int     `json:"negativeMarkingPercentage,omitempty"`
	PartialMarking            bool    `json:"partialMarking,omitempty"`
	PartialMarkingPercentage  int     `json:"partialMarkingPercentage,omitempty"`
}

// Validate rejects schemes no strategy can apply sensibly. Strategies never
// call it; it guards question authoring.
func (s MarkingScheme) Validate() error {
	switch {
	case s.TotalMark < 0:
		return errors.New("totalMark must be >= 0")
	case s.NegativeMark < 0:
		return errors.New("negativeMark must be >= 0")
	case s.NegativeMarkingPercentage < 0 || s.NegativeMarkingPercentage > 100:
		return fmt.Errorf("negativeMarkingPercentage out of range: %d", s.NegativeMarkingPercentage)
	case s.PartialMarkingPercentage < 0 || s.PartialMarkingPercentage > 100:
		return fmt.Errorf("partialMarkingPercentage out of range: %d", s.PartialMarkingPercentage)
	}
	return nil
}

// scaledPenalty is the negative mark scaled by negativeMarkingPercentage,
// returned as a non-positive number.
func (s MarkingScheme) scaledPenalty(times int) float64 {
	return negate(float64(times) * s.NegativeMark * float64(s.NegativeMarkingPercentage) / 100)
}

// flatPenalty is the unscaled negative mark used by the text strategies.
func (s MarkingScheme) flatPenalty() float64 { return negate(s.NegativeMark) }

// negate avoids emitting -0 when a penalty is zero.
func negate(v float64) float64 {
	if v == 0 {
		return 0
	}
	return -v
}

// OptionKey is the correct answer of a select-type question.
type OptionKey struct {
	CorrectOptionIDs []string `json:"correctOptionIds"`
}

// OptionResponse holds the options a learner chose.
type OptionResponse struct {
	OptionIDs []string `json:"optionIds"`
}

// NumericKey lists every acceptable value; any exact match is correct.
type NumericKey struct {
	ValidAnswers []float64 `json:"validAnswers"`
}

// NumericResponse holds at most one submitted value.
type NumericResponse struct {
	ValidAnswer *float64 `json:"validAnswer"`
}

// TextKey is the reference word of a ONE_WORD question.
type TextKey struct {
	Answer string `json:"answer"`
}

// LongAnswerKey keeps its reference text under "content".
type LongAnswerKey struct {
	Content struct {
		Answer string `json:"answer"`
	} `json:"content"`
}

// TextResponse holds at most one submitted string.
type TextResponse struct {
	Answer *string `json:"answer"`
}

// --- boundary decoding ---

// ErrMalformedDocument reports a payload that could not be decoded.
var ErrMalformedDocument = errors.New("malformed document")

type envelope[T any] struct {
	Data *T `json:"data"`
}

// decode unwraps {"data": {...}}. A missing payload, a JSON null, or a
// missing/null "data" field yield (nil, nil): nothing to grade, but not broken.
func decode[T any](raw json.RawMessage) (*T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var env envelope[T]
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return env.Data, nil
}

// DecodeScheme decodes a marking-scheme envelope.
func DecodeScheme(raw json.RawMessage) (*MarkingScheme, error) {
	return decode[MarkingScheme](raw)
}

// DecodeOptionKey decodes the answer key of an MCQS or MCQM question.
func DecodeOptionKey(raw json.RawMessage) (*OptionKey, error) {
	return decode[OptionKey](raw)
}

// DecodeOptionResponse decodes a selected-options response.
func DecodeOptionResponse(raw json.RawMessage) (*OptionResponse, error) {
	return decode[OptionResponse](raw)
}

// DecodeNumericKey decodes the accepted values of a NUMERIC question.
func DecodeNumericKey(raw json.RawMessage) (*NumericKey, error) {
	return decode[NumericKey](raw)
}

// DecodeNumericResponse decodes a NUMERIC response.
func DecodeNumericResponse(raw json.RawMessage) (*NumericResponse, error) {
	return decode[NumericResponse](raw)
}

// DecodeTextKey decodes the expected word of a ONE_WORD question.
func DecodeTextKey(raw json.RawMessage) (*TextKey, error) {
	return decode[TextKey](raw)
}

// DecodeLongAnswerKey decodes the model answer of a LONG_ANSWER question.
func DecodeLongAnswerKey(raw json.RawMessage) (*LongAnswerKey, error) {
	return decode[LongAnswerKey](raw)
}

// DecodeTextResponse decodes a free-text response, used by ONE_WORD and LONG_ANSWER.
func DecodeTextResponse(raw json.RawMessage) (*TextResponse, error) {
	return decode[TextResponse](raw)
}
