package query_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skillgate/skillgate/internal/grading/query"
)

const topCustomersSQL = `
SELECT c.name AS customer, SUM(oi.qty * oi.price) AS total
FROM customers c
JOIN orders o ON o.customer_id = c.id
JOIN order_items oi ON oi.order_id = o.id
GROUP BY c.name
ORDER BY total DESC
LIMIT 3`

const monthlyRevenueSQL = `
SELECT strftime('%Y-%m', o.order_date) AS month, SUM(oi.qty * oi.price) AS total
FROM orders o
JOIN order_items oi ON oi.order_id = o.id
WHERE strftime('%Y', o.order_date) = '2024'
GROUP BY strftime('%Y-%m', o.order_date)
ORDER BY month ASC`

func TestGradeTopCustomersFullMarks(t *testing.T) {
	res, err := query.Grade(context.Background(), query.TaskTopCustomers, topCustomersSQL)
	require.NoError(t, err)
	require.Equal(t, 3, res.Passed)
	require.Equal(t, 3, res.Total)
	require.Contains(t, res.Detail, "columns OK")
	require.Contains(t, res.Detail, "row count OK")
	require.Contains(t, res.Detail, "values OK")
}

func TestGradeMonthlyRevenueFullMarks(t *testing.T) {
	res, err := query.Grade(context.Background(), query.TaskMonthlyRevenue, monthlyRevenueSQL)
	require.NoError(t, err)
	require.Equal(t, 3, res.Passed)
	require.Equal(t, 3, res.Total)
}

func TestGradeWrongOrderingLosesValuePoint(t *testing.T) {
	// Same columns and row count, ascending instead of descending.
	sqlText := `
SELECT c.name AS customer, SUM(oi.qty * oi.price) AS total
FROM customers c
JOIN orders o ON o.customer_id = c.id
JOIN order_items oi ON oi.order_id = o.id
GROUP BY c.name
ORDER BY total ASC
LIMIT 3`
	res, err := query.Grade(context.Background(), query.TaskTopCustomers, sqlText)
	require.NoError(t, err)
	require.Equal(t, 2, res.Passed)
	require.Contains(t, res.Detail, "values differ")
}

func TestGradeWrongColumnNames(t *testing.T) {
	sqlText := `
SELECT c.name AS client, SUM(oi.qty * oi.price) AS revenue
FROM customers c
JOIN orders o ON o.customer_id = c.id
JOIN order_items oi ON oi.order_id = o.id
GROUP BY c.name
ORDER BY revenue DESC
LIMIT 3`
	res, err := query.Grade(context.Background(), query.TaskTopCustomers, sqlText)
	require.NoError(t, err)
	require.Equal(t, 2, res.Passed)
	require.Contains(t, res.Detail, "expected columns")
}

func TestGradeWrongRowCount(t *testing.T) {
	sqlText := `
SELECT c.name AS customer, SUM(oi.qty * oi.price) AS total
FROM customers c
JOIN orders o ON o.customer_id = c.id
JOIN order_items oi ON oi.order_id = o.id
GROUP BY c.name
ORDER BY total DESC
LIMIT 2`
	res, err := query.Grade(context.Background(), query.TaskTopCustomers, sqlText)
	require.NoError(t, err)
	// Columns pass; row count and values fail.
	require.Equal(t, 1, res.Passed)
}

func TestGradeInvalidSQL(t *testing.T) {
	res, err := query.Grade(context.Background(), query.TaskTopCustomers, "SELEC nonsense FORM nothing")
	require.NoError(t, err)
	require.Equal(t, 0, res.Passed)
	require.Equal(t, 3, res.Total)
	require.Contains(t, res.Detail, "query error")
}

func TestGradeIdempotent(t *testing.T) {
	a, err := query.Grade(context.Background(), query.TaskTopCustomers, topCustomersSQL)
	require.NoError(t, err)
	b, err := query.Grade(context.Background(), query.TaskTopCustomers, topCustomersSQL)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestGradeUnknownTask(t *testing.T) {
	_, err := query.Grade(context.Background(), 999, topCustomersSQL)
	require.Error(t, err)
}

func TestIsTask(t *testing.T) {
	require.True(t, query.IsTask(query.TaskTopCustomers))
	require.True(t, query.IsTask(query.TaskMonthlyRevenue))
	require.False(t, query.IsTask(301))
}
