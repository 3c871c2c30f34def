package http

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skillgate/skillgate/internal/store"
)

// GET /admin/summary
func SummaryHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := st.Summary(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(sum)
	}
}

// GET /admin/submissions
func ListSubmissionsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := st.ListSubmissions(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(recs)
	}
}

// GET /admin/submissions/{id} — the full record with answer and coding rows.
func GetSubmissionHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "bad submission id", http.StatusBadRequest)
			return
		}
		sub, err := st.GetSubmission(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(sub)
	}
}

// GET /admin/export.csv — flat results for spreadsheet tooling.
func ExportCSVHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := st.ListSubmissions(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="results.csv"`)

		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"submission_id", "name", "email", "doc", "score_total", "duration_sec", "started_at", "finished_at"})
		for _, rec := range recs {
			_ = cw.Write([]string{
				strconv.FormatInt(rec.SubmissionID, 10),
				rec.Name,
				rec.Email,
				rec.Doc,
				strconv.FormatFloat(rec.ScoreTotal, 'f', 2, 64),
				strconv.FormatFloat(rec.DurationSec, 'f', 0, 64),
				time.Unix(rec.StartedAt, 0).UTC().Format(time.RFC3339),
				time.Unix(rec.FinishedAt, 0).UTC().Format(time.RFC3339),
			})
		}
		cw.Flush()
	}
}
