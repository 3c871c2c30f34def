// Package store persists users and submitted assessments. Inserts from
// independent sessions are independent rows; there is no cross-session
// read-modify-write, so the storage layer's own atomic insert is the only
// locking discipline needed.
package store

import (
	"context"
	"time"
)

type AnswerRow struct {
	QID      int     `json:"qid"`
	Response string  `json:"response"`
	Correct  bool    `json:"correct"`
	Score    float64 `json:"score"`
}

// TaskType values for coding rows.
const (
	TaskTypeScript = "SCRIPT"
	TaskTypeQuery  = "QUERY"
)

type CodingRow struct {
	TaskType string  `json:"task_type"`
	TaskID   int     `json:"task_id"`
	Passed   int     `json:"passed"`
	Total    int     `json:"total"`
	Details  string  `json:"details"`
	Score    float64 `json:"score"`
}

// Submission is one finished assessment with its owned outcome rows.
type Submission struct {
	ID          int64       `json:"id"`
	UserID      int64       `json:"user_id"`
	StartedAt   time.Time   `json:"started_at"`
	FinishedAt  time.Time   `json:"finished_at"`
	DurationSec float64     `json:"duration_sec"`
	ScoreTotal  float64     `json:"score_total"`
	Answers     []AnswerRow `json:"answers,omitempty"`
	Coding      []CodingRow `json:"coding,omitempty"`
}

// SubmissionRecord is a submission joined with its user, for listings and
// exports.
type SubmissionRecord struct {
	SubmissionID int64   `json:"submission_id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Doc          string  `json:"doc"`
	ScoreTotal   float64 `json:"score_total"`
	DurationSec  float64 `json:"duration_sec"`
	StartedAt    int64   `json:"started_at"`
	FinishedAt   int64   `json:"finished_at"`
}

type Summary struct {
	Users          int     `json:"users"`
	Submissions    int     `json:"submissions"`
	AvgScore       float64 `json:"avg_score"`
	AvgDurationSec float64 `json:"avg_duration_sec"`
}

type Store interface {
	CreateUser(ctx context.Context, name, email, doc string) (int64, error)
	SaveSubmission(ctx context.Context, sub Submission) (int64, error)
	Summary(ctx context.Context) (Summary, error)
	ListSubmissions(ctx context.Context) ([]SubmissionRecord, error)
	GetSubmission(ctx context.Context, id int64) (Submission, error)
}
