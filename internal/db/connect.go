package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:skillgate.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/skillgate?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

// The store is append-only from the engine's perspective: one users row per
// registration, one submissions row per submit, answer and coding rows owned
// by their submission.
const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  doc TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS submissions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES users(id),
  started_at INTEGER NOT NULL,
  finished_at INTEGER NOT NULL,
  duration_sec REAL NOT NULL,
  score_total REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS answers (
  submission_id INTEGER NOT NULL REFERENCES submissions(id),
  qid INTEGER NOT NULL,
  response_text TEXT NOT NULL,
  is_correct INTEGER NOT NULL,
  score_awarded REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS coding (
  submission_id INTEGER NOT NULL REFERENCES submissions(id),
  task_type TEXT NOT NULL,
  task_id INTEGER NOT NULL,
  passed_tests INTEGER NOT NULL,
  total_tests INTEGER NOT NULL,
  details TEXT NOT NULL,
  score_awarded REAL NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  doc TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS submissions (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id),
  started_at BIGINT NOT NULL,
  finished_at BIGINT NOT NULL,
  duration_sec DOUBLE PRECISION NOT NULL,
  score_total DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS answers (
  submission_id BIGINT NOT NULL REFERENCES submissions(id),
  qid INTEGER NOT NULL,
  response_text TEXT NOT NULL,
  is_correct BOOLEAN NOT NULL,
  score_awarded DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS coding (
  submission_id BIGINT NOT NULL REFERENCES submissions(id),
  task_type TEXT NOT NULL,
  task_id INTEGER NOT NULL,
  passed_tests INTEGER NOT NULL,
  total_tests INTEGER NOT NULL,
  details TEXT NOT NULL,
  score_awarded DOUBLE PRECISION NOT NULL
);
`
