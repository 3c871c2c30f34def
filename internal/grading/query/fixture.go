package query

import (
	"context"
	"database/sql"
)

// The reference dataset: three related tables, small fixed fixture.
// Re-created fresh for every grading call, never persisted.
const fixtureSchema = `
CREATE TABLE customers(id INTEGER PRIMARY KEY, name TEXT, city TEXT);
CREATE TABLE orders(id INTEGER PRIMARY KEY, customer_id INTEGER, order_date TEXT);
CREATE TABLE order_items(id INTEGER PRIMARY KEY, order_id INTEGER, product TEXT, qty INTEGER, price REAL);

INSERT INTO customers VALUES
  (1, 'Acme SAS', 'Bogotá'),
  (2, 'Nova Ltda', 'Medellín'),
  (3, 'Zetta SA', 'Cali'),
  (4, 'Orion SA', 'Bogotá');

INSERT INTO orders VALUES
  (100, 1, '2024-01-15'),
  (101, 1, '2024-02-10'),
  (102, 2, '2024-01-20'),
  (103, 2, '2024-03-05'),
  (104, 3, '2024-03-22'),
  (105, 4, '2024-02-11');

INSERT INTO order_items VALUES
  (1, 100, 'Mouse',   2,  50.0),
  (2, 100, 'Teclado', 1, 120.0),
  (3, 101, 'Monitor', 1, 800.0),
  (4, 102, 'Laptop',  1, 3000.0),
  (5, 103, 'Silla',   2, 400.0),
  (6, 104, 'Dock',    3, 200.0),
  (7, 105, 'Webcam',  4, 150.0);
`

func openFixture(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// A second connection would see an empty :memory: database.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, fixtureSchema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
