package catalog

import "fmt"

type Category string

const (
	CategorySpreadsheet Category = "Excel"
	CategoryScript      Category = "Script"
	CategoryQuery       Category = "SQL"
)

type Type string

const (
	TypeMCQ             Type = "MCQ"
	TypeFormula         Type = "FORMULA"
	TypeScriptPractical Type = "SCRIPT_PRACTICAL"
	TypeQueryPractical  Type = "QUERY_PRACTICAL"
)

// Question is one row of the catalog. Immutable once loaded.
type Question struct {
	ID       int
	Category Category
	Type     Type
	Points   float64
	Prompt   string
	Options  []string // MCQ only
	// AnswerKey holds the accepted variants ("|"-split in the source file).
	// MCQ questions use only the first character of the first entry.
	AnswerKey []string
}

// Catalog is the read-only question set shared by every session.
type Catalog struct {
	byID  map[int]Question
	order []int
}

func New(questions []Question) (*Catalog, error) {
	c := &Catalog{byID: make(map[int]Question, len(questions))}
	for _, q := range questions {
		if _, dup := c.byID[q.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate question id %d", q.ID)
		}
		c.byID[q.ID] = q
		c.order = append(c.order, q.ID)
	}
	return c, nil
}

// Get fails loudly: a missing id is a configuration error, not a skip.
func (c *Catalog) Get(id int) (Question, error) {
	q, ok := c.byID[id]
	if !ok {
		return Question{}, fmt.Errorf("catalog: unknown question id %d", id)
	}
	return q, nil
}

func (c *Catalog) Has(id int) bool {
	_, ok := c.byID[id]
	return ok
}

func (c *Catalog) Len() int { return len(c.order) }

// All returns the questions in file order.
func (c *Catalog) All() []Question {
	out := make([]Question, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

func (c *Catalog) ByCategory(cat Category) []Question {
	var out []Question
	for _, id := range c.order {
		if q := c.byID[id]; q.Category == cat {
			out = append(out, q)
		}
	}
	return out
}

func (c *Catalog) ByType(t Type) []Question {
	var out []Question
	for _, id := range c.order {
		if q := c.byID[id]; q.Type == t {
			out = append(out, q)
		}
	}
	return out
}
