package grading

import (
	"context"
	"strings"

	"github.com/skillgate/skillgate/internal/catalog"
)

// choiceStrategy compares the selected option's letter against the recorded
// correct letter. An empty selection is simply wrong, never an error.
type choiceStrategy struct{}

func (choiceStrategy) Grade(_ context.Context, q catalog.Question, response string) (Outcome, error) {
	out := Outcome{QuestionID: q.ID, Total: 1}
	correct := optionLetter(first(q.AnswerKey))
	sel := optionLetter(response)
	if correct != "" && sel == correct {
		out.Correct = true
		out.Passed = 1
		out.Score = q.Points
	}
	return out, nil
}

// optionLetter reduces "B) Option text" to "B".
func optionLetter(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1])
}

// formulaStrategy accepts a candidate formula when it matches any accepted
// variant after normalization and whitespace stripping. Case, accents and
// spacing are forgiven; cell references, operators and argument order are
// not.
type formulaStrategy struct{}

func (formulaStrategy) Grade(_ context.Context, q catalog.Question, response string) (Outcome, error) {
	out := Outcome{QuestionID: q.ID, Total: 1}
	u := stripSpace(Normalize(response))
	if u == "" {
		return out, nil
	}
	for _, variant := range q.AnswerKey {
		if u == stripSpace(Normalize(variant)) {
			out.Correct = true
			out.Passed = 1
			out.Score = q.Points
			return out, nil
		}
	}
	return out, nil
}

func first(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}
