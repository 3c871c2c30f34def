package grading

import (
	"context"
	"fmt"
	"time"

	"github.com/skillgate/skillgate/internal/catalog"
	"github.com/skillgate/skillgate/internal/grading/query"
	"github.com/skillgate/skillgate/internal/grading/script"
)

// Outcome is the result of grading one question or practical task.
// Never mutated after creation.
type Outcome struct {
	QuestionID int     `json:"question_id"`
	Correct    bool    `json:"correct"`
	Passed     int     `json:"passed"`
	Total      int     `json:"total"`
	Detail     string  `json:"detail,omitempty"`
	Score      float64 `json:"score"`
}

// Strategy grades a single question.
type Strategy interface {
	Grade(ctx context.Context, q catalog.Question, response string) (Outcome, error)
}

// Grader routes by question type to the correct Strategy.
type Grader struct {
	strategies map[catalog.Type]Strategy
}

type Option func(*config)

type config struct {
	ScriptTimeout time.Duration
}

func WithScriptTimeout(d time.Duration) Option {
	return func(c *config) { c.ScriptTimeout = d }
}

// NewGrader installs the built-in strategies.
func NewGrader(opts ...Option) *Grader {
	cfg := &config{ScriptTimeout: 5 * time.Second}
	for _, o := range opts {
		o(cfg)
	}
	return &Grader{
		strategies: map[catalog.Type]Strategy{
			catalog.TypeMCQ:             choiceStrategy{},
			catalog.TypeFormula:         formulaStrategy{},
			catalog.TypeScriptPractical: scriptStrategy{timeout: cfg.ScriptTimeout},
			catalog.TypeQueryPractical:  queryStrategy{},
		},
	}
}

func (g *Grader) Grade(ctx context.Context, q catalog.Question, response string) (Outcome, error) {
	s, ok := g.strategies[q.Type]
	if !ok {
		return Outcome{}, fmt.Errorf("grading: no strategy for question type %q", q.Type)
	}
	return s.Grade(ctx, q, response)
}

// scriptStrategy delegates to the restricted-interpreter runner. Execution
// faults and policy violations come back inside the Outcome, not as errors.
type scriptStrategy struct {
	timeout time.Duration
}

func (s scriptStrategy) Grade(ctx context.Context, q catalog.Question, source string) (Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := script.Grade(ctx, q.ID, source)
	if err != nil {
		return Outcome{}, err
	}
	return outcomeFromRun(q, res.Passed, res.Total, res.Detail), nil
}

// queryStrategy runs the submission against a fresh fixture dataset.
type queryStrategy struct{}

func (queryStrategy) Grade(ctx context.Context, q catalog.Question, sqlText string) (Outcome, error) {
	res, err := query.Grade(ctx, q.ID, sqlText)
	if err != nil {
		return Outcome{}, err
	}
	return outcomeFromRun(q, res.Passed, res.Total, res.Detail), nil
}

// Practical tasks score proportionally to tests passed. Total is a fixed
// positive per-task constant, so the division is safe.
func outcomeFromRun(q catalog.Question, passed, total int, detail string) Outcome {
	return Outcome{
		QuestionID: q.ID,
		Correct:    passed == total,
		Passed:     passed,
		Total:      total,
		Detail:     detail,
		Score:      q.Points * float64(passed) / float64(total),
	}
}
