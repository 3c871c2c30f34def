// Package scoring combines per-question outcomes into a submission total.
package scoring

import (
	"fmt"

	"github.com/skillgate/skillgate/internal/catalog"
	"github.com/skillgate/skillgate/internal/grading"
)

// Total is a pure function of the catalog and the outcomes: answer outcomes
// contribute their awarded score, practical outcomes contribute the task's
// catalog points weighted by tests passed. The catalog is the only source
// of point values; an outcome referencing an unknown question id is a
// configuration error.
func Total(cat *catalog.Catalog, answers, practicals []grading.Outcome) (float64, error) {
	total := 0.0
	for _, o := range answers {
		if !cat.Has(o.QuestionID) {
			return 0, fmt.Errorf("scoring: answer outcome for unknown question %d", o.QuestionID)
		}
		total += o.Score
	}
	for _, o := range practicals {
		q, err := cat.Get(o.QuestionID)
		if err != nil {
			return 0, fmt.Errorf("scoring: %w", err)
		}
		if o.Total <= 0 {
			return 0, fmt.Errorf("scoring: task %d has no test cases", o.QuestionID)
		}
		total += q.Points * float64(o.Passed) / float64(o.Total)
	}
	return total, nil
}
