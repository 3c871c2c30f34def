package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/skillgate/skillgate/internal/auth"
	"github.com/skillgate/skillgate/internal/catalog"
	"github.com/skillgate/skillgate/internal/grading"
	"github.com/skillgate/skillgate/internal/scoring"
	"github.com/skillgate/skillgate/internal/session"
	"github.com/skillgate/skillgate/internal/store"
)

// POST /auth/register  { "name": "...", "email": "...", "doc": "..." }
func RegisterHandler(st store.Store, sessions *session.Manager, authSvc *auth.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name  string `json:"name"`
			Email string `json:"email"`
			Doc   string `json:"doc"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.TrimSpace(req.Email)
		req.Doc = strings.TrimSpace(req.Doc)
		if req.Name == "" || req.Email == "" || req.Doc == "" {
			http.Error(w, "name, email and doc are required", http.StatusBadRequest)
			return
		}
		uid, err := st.CreateUser(r.Context(), req.Name, req.Email, req.Doc)
		if err != nil {
			http.Error(w, "create user: "+err.Error(), http.StatusInternalServerError)
			return
		}
		s := sessions.Start(uid)
		tok, err := authSvc.IssueJWT(s.ID, "candidate")
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": tok,
			"session_id":   s.ID,
		})
	}
}

// POST /auth/admin  { "key": "..." }
func AdminLoginHandler(authSvc *auth.AuthService, adminKeyHash string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Key string `json:"key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(adminKeyHash), []byte(req.Key)) != nil {
			http.Error(w, "invalid admin key", http.StatusUnauthorized)
			return
		}
		tok, err := authSvc.IssueJWT("admin", "admin")
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok})
	}
}

type questionView struct {
	ID       int              `json:"id"`
	Category catalog.Category `json:"category"`
	Type     catalog.Type     `json:"type"`
	Points   float64          `json:"points"`
	Prompt   string           `json:"prompt"`
	Options  []string         `json:"options,omitempty"`
}

// GET /questions — answer keys are stripped before serving to candidates.
func ListQuestionsHandler(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs := cat.All()
		out := make([]questionView, 0, len(qs))
		for _, q := range qs {
			out = append(out, questionView{
				ID: q.ID, Category: q.Category, Type: q.Type,
				Points: q.Points, Prompt: q.Prompt, Options: q.Options,
			})
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// PUT /session/answers  { "answers": {"101": "B", "205": "=SUM(A1:A10)"} }
func SaveAnswersHandler(cat *catalog.Catalog, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := auth.SubjectFromContext(r.Context())
		var req struct {
			Answers map[string]string `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		for key, val := range req.Answers {
			qid, err := strconv.Atoi(key)
			if err != nil {
				http.Error(w, "bad question id: "+key, http.StatusBadRequest)
				return
			}
			q, err := cat.Get(qid)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if q.Type != catalog.TypeMCQ && q.Type != catalog.TypeFormula {
				http.Error(w, "question "+key+" is a practical task", http.StatusBadRequest)
				return
			}
			if err := sessions.SetAnswer(sid, qid, val); err != nil {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"saved": len(req.Answers)})
	}
}

// POST /session/script/{taskID}  { "source": "function fizzbuzz(n) ... end" }
func GradeScriptTaskHandler(cat *catalog.Catalog, sessions *session.Manager, grader *grading.Grader) http.HandlerFunc {
	return gradePracticalHandler(cat, sessions, grader, catalog.TypeScriptPractical, "source")
}

// POST /session/query/{taskID}  { "sql": "SELECT ..." }
func GradeQueryTaskHandler(cat *catalog.Catalog, sessions *session.Manager, grader *grading.Grader) http.HandlerFunc {
	return gradePracticalHandler(cat, sessions, grader, catalog.TypeQueryPractical, "sql")
}

func gradePracticalHandler(cat *catalog.Catalog, sessions *session.Manager, grader *grading.Grader, want catalog.Type, field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := auth.SubjectFromContext(r.Context())
		taskID, err := strconv.Atoi(chi.URLParam(r, "taskID"))
		if err != nil {
			http.Error(w, "bad task id", http.StatusBadRequest)
			return
		}
		q, err := cat.Get(taskID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if q.Type != want {
			http.Error(w, "task type mismatch", http.StatusBadRequest)
			return
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		text, ok := req[field]
		if !ok || strings.TrimSpace(text) == "" {
			http.Error(w, field+" is required", http.StatusBadRequest)
			return
		}
		out, err := grader.Grade(r.Context(), q, text)
		if err != nil {
			http.Error(w, "grade: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := sessions.SetPractical(sid, out); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// POST /session/submit — grades every recorded answer, combines with the
// stored practical outcomes, persists the submission and closes the session.
func SubmitHandler(cat *catalog.Catalog, sessions *session.Manager, grader *grading.Grader, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := auth.SubjectFromContext(r.Context())
		snap, err := sessions.Snapshot(sid)
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		finished := time.Now()

		qids := make([]int, 0, len(snap.Answers))
		for qid := range snap.Answers {
			qids = append(qids, qid)
		}
		sort.Ints(qids)

		var answerOutcomes []grading.Outcome
		var answerRows []store.AnswerRow
		for _, qid := range qids {
			q, err := cat.Get(qid)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			out, err := grader.Grade(r.Context(), q, snap.Answers[qid])
			if err != nil {
				http.Error(w, "grade: "+err.Error(), http.StatusInternalServerError)
				return
			}
			answerOutcomes = append(answerOutcomes, out)
			answerRows = append(answerRows, store.AnswerRow{
				QID: qid, Response: snap.Answers[qid], Correct: out.Correct, Score: out.Score,
			})
		}

		tids := make([]int, 0, len(snap.Practicals))
		for tid := range snap.Practicals {
			tids = append(tids, tid)
		}
		sort.Ints(tids)

		var practicalOutcomes []grading.Outcome
		var codingRows []store.CodingRow
		for _, tid := range tids {
			out := snap.Practicals[tid]
			q, err := cat.Get(tid)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			taskType := store.TaskTypeScript
			if q.Type == catalog.TypeQueryPractical {
				taskType = store.TaskTypeQuery
			}
			practicalOutcomes = append(practicalOutcomes, out)
			codingRows = append(codingRows, store.CodingRow{
				TaskType: taskType, TaskID: tid,
				Passed: out.Passed, Total: out.Total,
				Details: out.Detail, Score: out.Score,
			})
		}

		total, err := scoring.Total(cat, answerOutcomes, practicalOutcomes)
		if err != nil {
			http.Error(w, "score: "+err.Error(), http.StatusInternalServerError)
			return
		}

		sub := store.Submission{
			UserID:      snap.UserID,
			StartedAt:   snap.StartedAt,
			FinishedAt:  finished,
			DurationSec: finished.Sub(snap.StartedAt).Seconds(),
			ScoreTotal:  total,
			Answers:     answerRows,
			Coding:      codingRows,
		}
		id, err := st.SaveSubmission(r.Context(), sub)
		if err != nil {
			http.Error(w, "save submission: "+err.Error(), http.StatusInternalServerError)
			return
		}
		sessions.End(sid)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"submission_id": id,
			"score_total":   total,
			"duration_sec":  sub.DurationSec,
		})
	}
}
