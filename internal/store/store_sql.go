package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrNotFound = errors.New("submission not found")

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) CreateUser(ctx context.Context, name, email, doc string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (name, email, doc, created_at) VALUES ($1,$2,$3,$4) RETURNING id`,
		name, email, doc, time.Now().Unix()).Scan(&id)
	return id, err
}

// SaveSubmission writes the submission and its owned answer/coding rows in
// one transaction. Rows are never updated afterwards.
func (s *SQLStore) SaveSubmission(ctx context.Context, sub Submission) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO submissions (user_id, started_at, finished_at, duration_sec, score_total)
		 VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		sub.UserID, sub.StartedAt.Unix(), sub.FinishedAt.Unix(), sub.DurationSec, sub.ScoreTotal).Scan(&id)
	if err != nil {
		return 0, err
	}

	for _, a := range sub.Answers {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO answers (submission_id, qid, response_text, is_correct, score_awarded)
			 VALUES ($1,$2,$3,$4,$5)`,
			id, a.QID, a.Response, a.Correct, a.Score); err != nil {
			return 0, err
		}
	}
	for _, c := range sub.Coding {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO coding (submission_id, task_type, task_id, passed_tests, total_tests, details, score_awarded)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			id, c.TaskType, c.TaskID, c.Passed, c.Total, c.Details, c.Score); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func (s *SQLStore) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&sum.Users); err != nil {
		return Summary{}, err
	}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(score_total),0), COALESCE(AVG(duration_sec),0) FROM submissions`).
		Scan(&sum.Submissions, &sum.AvgScore, &sum.AvgDurationSec)
	if err != nil {
		return Summary{}, err
	}
	return sum, nil
}

func (s *SQLStore) ListSubmissions(ctx context.Context) ([]SubmissionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT s.id, u.name, u.email, u.doc, s.score_total, s.duration_sec, s.started_at, s.finished_at
FROM submissions s
JOIN users u ON u.id = s.user_id
ORDER BY s.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SubmissionRecord{}
	for rows.Next() {
		var r SubmissionRecord
		if err := rows.Scan(&r.SubmissionID, &r.Name, &r.Email, &r.Doc,
			&r.ScoreTotal, &r.DurationSec, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetSubmission(ctx context.Context, id int64) (Submission, error) {
	var sub Submission
	var started, finished int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, started_at, finished_at, duration_sec, score_total FROM submissions WHERE id=$1`, id).
		Scan(&sub.ID, &sub.UserID, &started, &finished, &sub.DurationSec, &sub.ScoreTotal)
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	if err != nil {
		return Submission{}, err
	}
	sub.StartedAt = time.Unix(started, 0).UTC()
	sub.FinishedAt = time.Unix(finished, 0).UTC()

	arows, err := s.db.QueryContext(ctx,
		`SELECT qid, response_text, is_correct, score_awarded FROM answers WHERE submission_id=$1 ORDER BY qid`, id)
	if err != nil {
		return Submission{}, err
	}
	defer arows.Close()
	for arows.Next() {
		var a AnswerRow
		if err := arows.Scan(&a.QID, &a.Response, &a.Correct, &a.Score); err != nil {
			return Submission{}, err
		}
		sub.Answers = append(sub.Answers, a)
	}
	if err := arows.Err(); err != nil {
		return Submission{}, err
	}

	crows, err := s.db.QueryContext(ctx,
		`SELECT task_type, task_id, passed_tests, total_tests, details, score_awarded FROM coding WHERE submission_id=$1 ORDER BY task_id`, id)
	if err != nil {
		return Submission{}, err
	}
	defer crows.Close()
	for crows.Next() {
		var c CodingRow
		if err := crows.Scan(&c.TaskType, &c.TaskID, &c.Passed, &c.Total, &c.Details, &c.Score); err != nil {
			return Submission{}, err
		}
		sub.Coding = append(sub.Coding, c)
	}
	return sub, crows.Err()
}
