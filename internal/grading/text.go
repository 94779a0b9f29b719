package grading

import (
	"context"
	"strings"
)

// attempted returns the submitted text, or false when there is nothing to
// grade. Whitespace-only input counts as no attempt.
func attempted(resp *TextResponse) (string, bool) {
	if resp == nil || resp.Answer == nil || strings.TrimSpace(*resp.Answer) == "" {
		return "", false
	}
	return *resp.Answer, true
}

// --- ONE_WORD ---

type oneWordStrategy struct{ b boundary }

func (s oneWordStrategy) Grade(_ context.Context, docs Documents) Result {
	scheme, err := DecodeScheme(docs.Scheme)
	if s.b.failed("scheme", err) {
		return pending()
	}
	key, err := DecodeTextKey(docs.Answer)
	if s.b.failed("answer", err) {
		return pending()
	}
	resp, err := DecodeTextResponse(docs.Response)
	if s.b.failed("response", err) {
		return pending()
	}
	return s.Calculate(scheme, key, resp)
}

// Calculate compares the lower-cased word with the lower-cased key. A wrong
// word costs the flat negative mark.
func (oneWordStrategy) Calculate(scheme *MarkingScheme, key *TextKey, resp *TextResponse) Result {
	if scheme == nil || key == nil {
		return pending()
	}
	answer, ok := attempted(resp)
	if !ok {
		return pending()
	}
	if strings.ToLower(answer) == strings.ToLower(key.Answer) {
		return Result{Marks: scheme.TotalMark, Status: StatusCorrect}
	}
	return Result{Marks: scheme.flatPenalty(), Status: StatusIncorrect}
}

// --- LONG_ANSWER ---

type longAnswerStrategy struct{ b boundary }

func (s longAnswerStrategy) Grade(_ context.Context, docs Documents) Result {
	scheme, err := DecodeScheme(docs.Scheme)
	if s.b.failed("scheme", err) {
		return pending()
	}
	key, err := DecodeLongAnswerKey(docs.Answer)
	if s.b.failed("answer", err) {
		return pending()
	}
	resp, err := DecodeTextResponse(docs.Response)
	if s.b.failed("response", err) {
		return pending()
	}
	return s.Calculate(scheme, key, resp)
}

// Calculate grades a long answer. A case-insensitive match is still scored
// through ScoreBySimilarity so a degenerate token union grades as PENDING;
// any other text costs the flat negative mark.
func (longAnswerStrategy) Calculate(scheme *MarkingScheme, key *LongAnswerKey, resp *TextResponse) Result {
	if scheme == nil || key == nil {
		return pending()
	}
	answer, ok := attempted(resp)
	if !ok {
		return pending()
	}
	reference := key.Content.Answer
	if strings.ToLower(answer) == strings.ToLower(reference) {
		return ScoreBySimilarity(answer, reference, *scheme)
	}
	return Result{Marks: scheme.flatPenalty(), Status: StatusIncorrect}
}
