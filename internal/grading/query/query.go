// Package query grades candidate SQL against an ephemeral reference dataset.
// Each grading call builds a fresh in-memory SQLite database, runs the
// candidate query and the task's golden query against it, and compares
// column names, row count and rounded cell values. The database never
// outlives the call.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // driver: sqlite
)

// Result carries the rubric score (0..3) and a readable breakdown.
type Result struct {
	Passed int
	Total  int
	Detail string
}

const (
	TaskTopCustomers   = 501 // top 3 customers by revenue
	TaskMonthlyRevenue = 502 // monthly revenue for 2024
)

type task struct {
	golden  string
	columns []string
}

var tasks = map[int]task{
	TaskTopCustomers: {
		golden: `
SELECT c.name AS customer, SUM(oi.qty*oi.price) AS total
FROM customers c
JOIN orders o ON o.customer_id = c.id
JOIN order_items oi ON oi.order_id = o.id
GROUP BY c.name
ORDER BY total DESC
LIMIT 3`,
		columns: []string{"customer", "total"},
	},
	TaskMonthlyRevenue: {
		golden: `
SELECT strftime('%Y-%m', o.order_date) AS month, SUM(oi.qty*oi.price) AS total
FROM orders o
JOIN order_items oi ON oi.order_id = o.id
WHERE strftime('%Y', o.order_date) = '2024'
GROUP BY strftime('%Y-%m', o.order_date)
ORDER BY month ASC`,
		columns: []string{"month", "total"},
	},
}

// IsTask reports whether id names a query practical.
func IsTask(id int) bool {
	_, ok := tasks[id]
	return ok
}

// Grade scores a candidate query 0..3: column names, row count, values.
// A failing candidate query yields 0 with the error text; an error return
// means the grader itself broke (fixture or golden query), not the
// candidate.
func Grade(ctx context.Context, taskID int, sqlText string) (Result, error) {
	t, ok := tasks[taskID]
	if !ok {
		return Result{}, fmt.Errorf("query: unknown task id %d", taskID)
	}
	res := Result{Total: 3}

	db, err := openFixture(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("query: fixture: %w", err)
	}
	defer db.Close()

	user, err := runQuery(ctx, db, sqlText)
	if err != nil {
		res.Detail = "query error: " + err.Error()
		return res, nil
	}
	gold, err := runQuery(ctx, db, t.golden)
	if err != nil {
		return Result{}, fmt.Errorf("query: golden query for task %d: %w", taskID, err)
	}

	var details []string

	if equalStrings(user.columns, t.columns) {
		res.Passed++
		details = append(details, "columns OK")
	} else {
		details = append(details, fmt.Sprintf("expected columns %v, got %v", t.columns, user.columns))
	}

	if len(user.rows) == len(gold.rows) {
		res.Passed++
		details = append(details, "row count OK")
	} else {
		details = append(details, fmt.Sprintf("expected %d rows, got %d", len(gold.rows), len(user.rows)))
	}

	if valuesEqual(user, gold) {
		res.Passed++
		details = append(details, "values OK")
	} else {
		details = append(details, "values differ from the expected result")
	}

	res.Detail = strings.Join(details, "\n")
	return res, nil
}

type resultSet struct {
	columns []string
	rows    [][]any
}

func runQuery(ctx context.Context, db *sql.DB, sqlText string) (resultSet, error) {
	rows, err := db.QueryContext(ctx, sqlText)
	if err != nil {
		return resultSet{}, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return resultSet{}, err
	}
	rs := resultSet{columns: cols}
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return resultSet{}, err
		}
		rs.rows = append(rs.rows, cells)
	}
	return rs, rows.Err()
}

// valuesEqual compares the two result sets cell by cell, in row/column
// order. Numeric cells are rounded to 2 decimal places first; everything
// else compares as text. Ordering is deliberately significant: the
// candidate must reproduce the golden query's sort.
func valuesEqual(a, b resultSet) bool {
	if len(a.rows) != len(b.rows) {
		return false
	}
	for i := range a.rows {
		if len(a.rows[i]) != len(b.rows[i]) {
			return false
		}
		for j := range a.rows[i] {
			if !cellEqual(a.rows[i][j], b.rows[i][j]) {
				return false
			}
		}
	}
	return true
}

func cellEqual(a, b any) bool {
	da, aNum := toDecimal(a)
	db, bNum := toDecimal(b)
	if aNum && bNum {
		return da.Round(2).Equal(db.Round(2))
	}
	return cellString(a) == cellString(b)
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case int64:
		return decimal.NewFromInt(x), true
	case float64:
		return decimal.NewFromFloat(x), true
	case []byte:
		d, err := decimal.NewFromString(string(x))
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(x)
		return d, err == nil
	default:
		return decimal.Decimal{}, false
	}
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
