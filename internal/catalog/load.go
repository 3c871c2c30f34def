package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// The catalog file keeps the original template's column names.
var requiredColumns = []string{
	"id", "categoria", "tipo", "puntos", "enunciado", "opciones", "respuesta_correcta",
}

var validCategories = map[Category]bool{
	CategorySpreadsheet: true,
	CategoryScript:      true,
	CategoryQuery:       true,
}

var validTypes = map[Type]bool{
	TypeMCQ:             true,
	TypeFormula:         true,
	TypeScriptPractical: true,
	TypeQueryPractical:  true,
}

// LoadFile reads the question catalog from a CSV file. Any schema problem
// is an error: the caller is expected to abort startup on it.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func Load(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	hdr, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("catalog: read header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range hdr {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, k := range requiredColumns {
		if _, ok := idx[k]; !ok {
			return nil, errors.New("catalog: missing column: " + k)
		}
	}

	var questions []Question
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		line++
		q, err := parseRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("catalog: line %d: %w", line, err)
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, errors.New("catalog: no questions")
	}
	return New(questions)
}

func parseRow(rec []string, idx map[string]int) (Question, error) {
	field := func(k string) string { return strings.TrimSpace(rec[idx[k]]) }

	id, err := strconv.Atoi(field("id"))
	if err != nil {
		return Question{}, fmt.Errorf("bad id %q", field("id"))
	}
	points, err := strconv.ParseFloat(field("puntos"), 64)
	if err != nil || points <= 0 {
		return Question{}, fmt.Errorf("question %d: points must be a positive number", id)
	}

	q := Question{
		ID:        id,
		Category:  Category(field("categoria")),
		Type:      Type(field("tipo")),
		Points:    points,
		Prompt:    field("enunciado"),
		Options:   splitPipe(field("opciones")),
		AnswerKey: splitPipe(field("respuesta_correcta")),
	}

	if !validCategories[q.Category] {
		return Question{}, fmt.Errorf("question %d: unknown category %q", id, q.Category)
	}
	if !validTypes[q.Type] {
		return Question{}, fmt.Errorf("question %d: unknown type %q", id, q.Type)
	}
	if q.Prompt == "" {
		return Question{}, fmt.Errorf("question %d: empty prompt", id)
	}
	switch q.Type {
	case TypeMCQ:
		if len(q.Options) < 2 {
			return Question{}, fmt.Errorf("question %d: MCQ needs at least 2 options", id)
		}
		if len(q.AnswerKey) == 0 {
			return Question{}, fmt.Errorf("question %d: missing correct answer", id)
		}
	case TypeFormula:
		if len(q.AnswerKey) == 0 {
			return Question{}, fmt.Errorf("question %d: formula needs at least one accepted variant", id)
		}
	}
	return q, nil
}

func splitPipe(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
