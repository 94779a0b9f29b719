package grading

import (
	"context"
	"slices"

	"github.com/samber/lo"
)

// MultiSelectPolicy picks how MCQM responses are compared against the key.
type MultiSelectPolicy string

const (
	// PolicyOrdered short-circuits to full marks only when the chosen options
	// arrive in the same order as the key, then counts hits and misses.
	PolicyOrdered MultiSelectPolicy = "ordered"
	// PolicySet compares chosen and correct options as sets.
	PolicySet MultiSelectPolicy = "set"
)

func newMultiSelect(p MultiSelectPolicy, b boundary) Strategy {
	if p == PolicySet {
		return setMultiSelectStrategy{b: b}
	}
	return multiSelectStrategy{b: b}
}

// decodeMulti decodes the three MCQM documents. Any failure collapses to
// nil documents, which both policies grade as INCORRECT.
func decodeMulti(b boundary, docs Documents) (*MarkingScheme, *OptionKey, *OptionResponse) {
	scheme, err := DecodeScheme(docs.Scheme)
	if b.failed("scheme", err) {
		return nil, nil, nil
	}
	key, err := DecodeOptionKey(docs.Answer)
	if b.failed("answer", err) {
		return nil, nil, nil
	}
	resp, err := DecodeOptionResponse(docs.Response)
	if b.failed("response", err) {
		return nil, nil, nil
	}
	return scheme, key, resp
}

func multiNothingToGrade(scheme *MarkingScheme, key *OptionKey, resp *OptionResponse) bool {
	return scheme == nil || key == nil || resp == nil || len(resp.OptionIDs) == 0
}

// --- ordered policy ---

type multiSelectStrategy struct{ b boundary }

func (s multiSelectStrategy) Grade(_ context.Context, docs Documents) Result {
	return s.Calculate(decodeMulti(s.b, docs))
}

// Calculate grades an MCQM response under the ordered policy. Identical
// members in a different order are not an exact match and fall through to
// hit/miss counting.
func (multiSelectStrategy) Calculate(scheme *MarkingScheme, key *OptionKey, resp *OptionResponse) Result {
	if multiNothingToGrade(scheme, key, resp) {
		return Result{Status: StatusIncorrect}
	}
	if slices.Equal(resp.OptionIDs, key.CorrectOptionIDs) {
		return Result{Marks: scheme.TotalMark, Status: StatusCorrect}
	}

	correctSelected := lo.CountBy(resp.OptionIDs, func(id string) bool {
		return lo.Contains(key.CorrectOptionIDs, id)
	})
	incorrectSelected := len(resp.OptionIDs) - correctSelected

	if scheme.PartialMarking && correctSelected > 0 {
		partial := scheme.TotalMark * float64(scheme.PartialMarkingPercentage) / 100
		return Result{
			Marks:  partial + scheme.scaledPenalty(incorrectSelected),
			Status: StatusPartialCorrect,
		}
	}
	return Result{Marks: scheme.scaledPenalty(incorrectSelected), Status: StatusIncorrect}
}

// --- set policy ---

type setMultiSelectStrategy struct{ b boundary }

func (s setMultiSelectStrategy) Grade(_ context.Context, docs Documents) Result {
	return s.Calculate(decodeMulti(s.b, docs))
}

// Calculate grades an MCQM response under the set policy: any option outside
// the key costs the scaled negative mark, a strict subset earns a share of
// the partial percentage proportional to its coverage.
func (setMultiSelectStrategy) Calculate(scheme *MarkingScheme, key *OptionKey, resp *OptionResponse) Result {
	if multiNothingToGrade(scheme, key, resp) {
		return Result{Status: StatusIncorrect}
	}
	chosen := lo.Uniq(resp.OptionIDs)
	correct := lo.Uniq(key.CorrectOptionIDs)

	if len(chosen) == len(correct) && lo.Every(correct, chosen) {
		return Result{Marks: scheme.TotalMark, Status: StatusCorrect}
	}
	if !lo.Every(correct, chosen) {
		return Result{Marks: scheme.scaledPenalty(1), Status: StatusIncorrect}
	}
	if scheme.PartialMarking && len(correct) > 0 {
		hits := len(lo.Intersect(chosen, correct))
		ratio := float64(hits) / float64(len(correct))
		marks := ratio * scheme.TotalMark * float64(scheme.PartialMarkingPercentage) / 100
		if marks > 0 {
			return Result{Marks: marks, Status: StatusPartialCorrect}
		}
	}
	return Result{Status: StatusIncorrect}
}
