package grading

import (
	"context"

	"github.com/samber/lo"
)

// numericStrategy grades NUMERIC questions. Membership is exact float
// equality against the key's acceptable values; there is no tolerance band.
type numericStrategy struct{ b boundary }

func (s numericStrategy) Grade(_ context.Context, docs Documents) Result {
	scheme, err := DecodeScheme(docs.Scheme)
	if s.b.failed("scheme", err) {
		return pending()
	}
	key, err := DecodeNumericKey(docs.Answer)
	if s.b.failed("answer", err) {
		return pending()
	}
	resp, err := DecodeNumericResponse(docs.Response)
	if s.b.failed("response", err) {
		return pending()
	}
	return s.Calculate(scheme, key, resp)
}

// Calculate grades an already-decoded NUMERIC response.
func (numericStrategy) Calculate(scheme *MarkingScheme, key *NumericKey, resp *NumericResponse) Result {
	if scheme == nil || key == nil {
		return pending()
	}
	if resp == nil || resp.ValidAnswer == nil {
		return pending()
	}
	if lo.Contains(key.ValidAnswers, *resp.ValidAnswer) {
		return Result{Marks: scheme.TotalMark, Status: StatusCorrect}
	}
	return Result{Marks: scheme.scaledPenalty(1), Status: StatusIncorrect}
}
