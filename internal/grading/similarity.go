package grading

import (
	"strings"

	"github.com/samber/lo"
)

// Similarity thresholds for long-answer credit.
const (
	FullCreditSimilarity    = 0.8
	PartialCreditSimilarity = 0.5
	PartialCreditFactor     = 0.5
)

// tokenSet lower-cases s and splits it on whitespace, collapsing duplicates.
func tokenSet(s string) []string {
	return lo.Uniq(strings.Fields(strings.ToLower(s)))
}

// Jaccard returns |A∩B| / |A∪B| over the whitespace token sets of a and b.
// ok is false when both sets are empty and the ratio is undefined.
func Jaccard(a, b string) (similarity float64, ok bool) {
	ta, tb := tokenSet(a), tokenSet(b)
	inter := len(lo.Intersect(ta, tb))
	union := len(ta) + len(tb) - inter
	if union == 0 {
		return 0, false
	}
	return float64(inter) / float64(union), true
}

// ScoreBySimilarity maps the Jaccard similarity of response and reference
// onto marks. An empty union grades as (0, PENDING).
func ScoreBySimilarity(response, reference string, scheme MarkingScheme) Result {
	sim, ok := Jaccard(response, reference)
	if !ok {
		return pending()
	}
	switch {
	case sim >= FullCreditSimilarity:
		return Result{Marks: scheme.TotalMark, Status: StatusCorrect}
	case sim >= PartialCreditSimilarity:
		return Result{Marks: scheme.TotalMark * PartialCreditFactor, Status: StatusPartialCorrect}
	default:
		return Result{Marks: scheme.flatPenalty(), Status: StatusIncorrect}
	}
}
