package grading_test

import (
	"testing"

	"github.com/mind-engage/mindengage-grader/internal/grading"
)

const selectScheme = `{"data":{"totalMark":4,"negativeMark":1,"negativeMarkingPercentage":100}}`

func TestSingleSelect(t *testing.T) {
	key := `{"data":{"correctOptionIds":["B"]}}`
	runCases(t, grading.NewRegistry(), grading.TypeMCQS, []gradeCase{
		{name: "correct option", scheme: selectScheme, answer: key, response: `{"data":{"optionIds":["B"]}}`, marks: 4, status: grading.StatusCorrect},
		{name: "wrong option", scheme: selectScheme, answer: key, response: `{"data":{"optionIds":["C"]}}`, marks: -1, status: grading.StatusIncorrect},
		{name: "nothing chosen", scheme: selectScheme, answer: key, response: `{"data":{"optionIds":[]}}`, marks: 0, status: grading.StatusPending},
		{name: "null response", scheme: selectScheme, answer: key, response: `null`, marks: 0, status: grading.StatusPending},
		{name: "two chosen including correct", scheme: selectScheme, answer: key, response: `{"data":{"optionIds":["B","C"]}}`, marks: -1, status: grading.StatusIncorrect},
		{name: "scaled penalty", scheme: `{"data":{"totalMark":4,"negativeMark":2,"negativeMarkingPercentage":25}}`, answer: key, response: `{"data":{"optionIds":["A"]}}`, marks: -0.5, status: grading.StatusIncorrect},
		{name: "zero percentage still incorrect", scheme: `{"data":{"totalMark":4,"negativeMark":1,"negativeMarkingPercentage":0}}`, answer: key, response: `{"data":{"optionIds":["A"]}}`, marks: 0, status: grading.StatusIncorrect},
		{name: "key without option", scheme: selectScheme, answer: `{"data":{"correctOptionIds":[]}}`, response: `{"data":{"optionIds":["B"]}}`, marks: 0, status: grading.StatusPending},
		{name: "malformed key", scheme: selectScheme, answer: `{"data":`, response: `{"data":{"optionIds":["B"]}}`, marks: 0, status: grading.StatusPending},
		{name: "malformed response", scheme: selectScheme, answer: key, response: `{"data":{"optionIds":"B"}}`, marks: 0, status: grading.StatusPending},
		{name: "malformed scheme", scheme: `{"data":{"totalMark":"four"}}`, answer: key, response: `{"data":{"optionIds":["B"]}}`, marks: 0, status: grading.StatusPending},
	})
}

func TestMultiSelect_Ordered(t *testing.T) {
	partial := `{"data":{"totalMark":4,"negativeMark":1,"negativeMarkingPercentage":50,"partialMarking":true,"partialMarkingPercentage":50}}`
	lowPartial := `{"data":{"totalMark":4,"negativeMark":1,"negativeMarkingPercentage":50,"partialMarking":true,"partialMarkingPercentage":25}}`
	noPartial := `{"data":{"totalMark":4,"negativeMark":1,"negativeMarkingPercentage":50}}`
	key := `{"data":{"correctOptionIds":["A","B","C"]}}`

	runCases(t, grading.NewRegistry(), grading.TypeMCQM, []gradeCase{
		{name: "exact sequence", scheme: partial, answer: key, response: `{"data":{"optionIds":["A","B","C"]}}`, marks: 4, status: grading.StatusCorrect},
		{name: "permuted sequence is not exact", scheme: partial, answer: key, response: `{"data":{"optionIds":["C","B","A"]}}`, marks: 2, status: grading.StatusPartialCorrect},
		{name: "two of three", scheme: partial, answer: key, response: `{"data":{"optionIds":["A","B"]}}`, marks: 2, status: grading.StatusPartialCorrect},
		{name: "one hit one miss", scheme: partial, answer: key, response: `{"data":{"optionIds":["A","D"]}}`, marks: 1.5, status: grading.StatusPartialCorrect},
		{name: "partial may go negative", scheme: lowPartial, answer: key, response: `{"data":{"optionIds":["A","D","E","F"]}}`, marks: -0.5, status: grading.StatusPartialCorrect},
		{name: "only misses", scheme: partial, answer: key, response: `{"data":{"optionIds":["D"]}}`, marks: -0.5, status: grading.StatusIncorrect},
		{name: "partial disabled hits only", scheme: noPartial, answer: key, response: `{"data":{"optionIds":["A","B"]}}`, marks: 0, status: grading.StatusIncorrect},
		{name: "partial disabled with miss", scheme: noPartial, answer: key, response: `{"data":{"optionIds":["A","D","E"]}}`, marks: -1, status: grading.StatusIncorrect},
		{name: "nothing chosen", scheme: partial, answer: key, response: `{"data":{"optionIds":[]}}`, marks: 0, status: grading.StatusIncorrect},
		{name: "null response", scheme: partial, answer: key, response: `null`, marks: 0, status: grading.StatusIncorrect},
		{name: "null key", scheme: partial, answer: `{"data":null}`, response: `{"data":{"optionIds":["A"]}}`, marks: 0, status: grading.StatusIncorrect},
		{name: "malformed scheme", scheme: `{"data":[]}`, answer: key, response: `{"data":{"optionIds":["A"]}}`, marks: 0, status: grading.StatusIncorrect},
	})
}

func TestMultiSelect_SetPolicy(t *testing.T) {
	partial := `{"data":{"totalMark":4,"negativeMark":1,"negativeMarkingPercentage":50,"partialMarking":true,"partialMarkingPercentage":50}}`
	noPartial := `{"data":{"totalMark":4,"negativeMark":1,"negativeMarkingPercentage":50}}`
	key := `{"data":{"correctOptionIds":["A","B"]}}`
	r := grading.NewRegistry(grading.WithMultiSelectPolicy(grading.PolicySet))

	runCases(t, r, grading.TypeMCQM, []gradeCase{
		{name: "same set any order", scheme: partial, answer: key, response: `{"data":{"optionIds":["B","A"]}}`, marks: 4, status: grading.StatusCorrect},
		{name: "not a subset", scheme: partial, answer: key, response: `{"data":{"optionIds":["A","C"]}}`, marks: -0.5, status: grading.StatusIncorrect},
		{name: "strict subset earns share", scheme: partial, answer: key, response: `{"data":{"optionIds":["A"]}}`, marks: 1, status: grading.StatusPartialCorrect},
		{name: "strict subset without partial", scheme: noPartial, answer: key, response: `{"data":{"optionIds":["A"]}}`, marks: 0, status: grading.StatusIncorrect},
		{name: "nothing chosen", scheme: partial, answer: key, response: `{"data":{"optionIds":[]}}`, marks: 0, status: grading.StatusIncorrect},
	})
}

func TestNumeric(t *testing.T) {
	key := `{"data":{"validAnswers":[3.14,3.1416]}}`
	runCases(t, grading.NewRegistry(), grading.TypeNumeric, []gradeCase{
		{name: "first acceptable", scheme: selectScheme, answer: key, response: `{"data":{"validAnswer":3.14}}`, marks: 4, status: grading.StatusCorrect},
		{name: "second acceptable", scheme: selectScheme, answer: key, response: `{"data":{"validAnswer":3.1416}}`, marks: 4, status: grading.StatusCorrect},
		{name: "close but wrong", scheme: selectScheme, answer: key, response: `{"data":{"validAnswer":3.1}}`, marks: -1, status: grading.StatusIncorrect},
		{name: "no epsilon", scheme: selectScheme, answer: `{"data":{"validAnswers":[5.0]}}`, response: `{"data":{"validAnswer":4.9999999}}`, marks: -1, status: grading.StatusIncorrect},
		{name: "integer form matches", scheme: selectScheme, answer: `{"data":{"validAnswers":[5.0]}}`, response: `{"data":{"validAnswer":5}}`, marks: 4, status: grading.StatusCorrect},
		{name: "no submission", scheme: selectScheme, answer: key, response: `{"data":{}}`, marks: 0, status: grading.StatusPending},
		{name: "null value", scheme: selectScheme, answer: key, response: `{"data":{"validAnswer":null}}`, marks: 0, status: grading.StatusPending},
		{name: "malformed value", scheme: selectScheme, answer: key, response: `{"data":{"validAnswer":"pi"}}`, marks: 0, status: grading.StatusPending},
	})
}

func TestOneWord(t *testing.T) {
	scheme := `{"data":{"totalMark":2,"negativeMark":0.5,"negativeMarkingPercentage":50}}`
	key := `{"data":{"answer":"paris"}}`
	runCases(t, grading.NewRegistry(), grading.TypeOneWord, []gradeCase{
		{name: "case insensitive", scheme: scheme, answer: key, response: `{"data":{"answer":"Paris"}}`, marks: 2, status: grading.StatusCorrect},
		{name: "upper case", scheme: scheme, answer: `{"data":{"answer":"Paris"}}`, response: `{"data":{"answer":"PARIS"}}`, marks: 2, status: grading.StatusCorrect},
		{name: "flat penalty ignores percentage", scheme: scheme, answer: key, response: `{"data":{"answer":"London"}}`, marks: -0.5, status: grading.StatusIncorrect},
		{name: "empty answer", scheme: scheme, answer: key, response: `{"data":{"answer":""}}`, marks: 0, status: grading.StatusPending},
		{name: "no answer", scheme: scheme, answer: key, response: `{"data":{}}`, marks: 0, status: grading.StatusPending},
		{name: "malformed response", scheme: scheme, answer: key, response: `{"data":{"answer":42}}`, marks: 0, status: grading.StatusPending},
	})
}

func TestLongAnswer(t *testing.T) {
	scheme := `{"data":{"totalMark":4,"negativeMark":1}}`
	key := `{"data":{"content":{"answer":"The mitochondria is the powerhouse of the cell"}}}`
	runCases(t, grading.NewRegistry(), grading.TypeLongAnswer, []gradeCase{
		{name: "exact ignoring case", scheme: scheme, answer: key, response: `{"data":{"answer":"the MITOCHONDRIA is the powerhouse of the cell"}}`, marks: 4, status: grading.StatusCorrect},
		{name: "different text", scheme: scheme, answer: key, response: `{"data":{"answer":"The nucleus is the powerhouse of the cell"}}`, marks: -1, status: grading.StatusIncorrect},
		{name: "no attempt", scheme: scheme, answer: key, response: `{"data":{"answer":"   "}}`, marks: 0, status: grading.StatusPending},
		{name: "key outside content", scheme: scheme, answer: `{"data":{"answer":"The mitochondria is the powerhouse of the cell"}}`, response: `{"data":{"answer":"The mitochondria is the powerhouse of the cell"}}`, marks: -1, status: grading.StatusIncorrect},
		{name: "malformed key", scheme: scheme, answer: `{"data":{"content":"x"}}`, response: `{"data":{"answer":"x"}}`, marks: 0, status: grading.StatusPending},
	})
}
