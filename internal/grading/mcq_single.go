package grading

import "context"

// singleSelectStrategy grades MCQS questions.
type singleSelectStrategy struct{ b boundary }

func (s singleSelectStrategy) Grade(_ context.Context, docs Documents) Result {
	scheme, err := DecodeScheme(docs.Scheme)
	if s.b.failed("scheme", err) {
		return pending()
	}
	key, err := DecodeOptionKey(docs.Answer)
	if s.b.failed("answer", err) {
		return pending()
	}
	resp, err := DecodeOptionResponse(docs.Response)
	if s.b.failed("response", err) {
		return pending()
	}
	return s.Calculate(scheme, key, resp)
}

// Calculate grades an already-decoded MCQS response. A missing key or
// scheme is a configuration gap and grades as PENDING, as does a response
// with no chosen option.
func (singleSelectStrategy) Calculate(scheme *MarkingScheme, key *OptionKey, resp *OptionResponse) Result {
	if scheme == nil || key == nil || len(key.CorrectOptionIDs) == 0 || key.CorrectOptionIDs[0] == "" {
		return pending()
	}
	if resp == nil || len(resp.OptionIDs) == 0 {
		return pending()
	}
	if len(resp.OptionIDs) == 1 && resp.OptionIDs[0] == key.CorrectOptionIDs[0] {
		return Result{Marks: scheme.TotalMark, Status: StatusCorrect}
	}
	return Result{Marks: scheme.scaledPenalty(1), Status: StatusIncorrect}
}
