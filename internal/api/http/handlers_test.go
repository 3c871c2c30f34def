package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	api "github.com/skillgate/skillgate/internal/api/http"
	"github.com/skillgate/skillgate/internal/auth"
	"github.com/skillgate/skillgate/internal/catalog"
	"github.com/skillgate/skillgate/internal/db"
	"github.com/skillgate/skillgate/internal/grading"
	"github.com/skillgate/skillgate/internal/rbac"
	"github.com/skillgate/skillgate/internal/session"
	"github.com/skillgate/skillgate/internal/store"
)

const testCatalogCSV = `id,categoria,tipo,puntos,enunciado,opciones,respuesta_correcta
101,Excel,MCQ,5,Which function sums a range?,A) SUM|B) COUNT,A
102,Excel,FORMULA,10,Sum A1 through A10,,=SUM(A1:A10)
301,Script,SCRIPT_PRACTICAL,20,Implement fizzbuzz(n),,
501,SQL,QUERY_PRACTICAL,20,Top 3 customers by revenue,,
`

const adminKey = "letmein"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	cat, err := catalog.Load(strings.NewReader(testCatalogCSV))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbh.Close() })

	st := store.NewSQLStore(dbh)
	sessions := session.NewManager()
	grader := grading.NewGrader()
	authSvc := auth.NewAuthService("test-secret")

	hash, err := bcrypt.GenerateFromPassword([]byte(adminKey), bcrypt.MinCost)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Post("/auth/register", api.RegisterHandler(st, sessions, authSvc))
	r.Post("/auth/admin", api.AdminLoginHandler(authSvc, string(hash)))
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.With(rbac.Require("questions:view")).
			Get("/questions", api.ListQuestionsHandler(cat))
		pr.With(rbac.Require("session:answer")).
			Put("/session/answers", api.SaveAnswersHandler(cat, sessions))
		pr.With(rbac.Require("session:grade")).
			Post("/session/script/{taskID}", api.GradeScriptTaskHandler(cat, sessions, grader))
		pr.With(rbac.Require("session:grade")).
			Post("/session/query/{taskID}", api.GradeQueryTaskHandler(cat, sessions, grader))
		pr.With(rbac.Require("session:submit")).
			Post("/session/submit", api.SubmitHandler(cat, sessions, grader, st))
		pr.With(rbac.Require("admin:view")).
			Get("/admin/summary", api.SummaryHandler(st))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func register(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/auth/register", "",
		map[string]string{"name": "Ana", "email": "ana@example.com", "doc": "CC-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tok, _ := body["access_token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func TestCandidateFlow(t *testing.T) {
	srv := newServer(t)
	tok := register(t, srv)

	// Answer keys never reach the candidate.
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/questions", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var questions []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&questions))
	require.Len(t, questions, 4)
	for _, q := range questions {
		_, leaked := q["AnswerKey"]
		require.False(t, leaked)
	}

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/session/answers", tok,
		map[string]any{"answers": map[string]string{"101": "A) SUM", "102": "=sum( a1 : a10 )"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, out := doJSON(t, http.MethodPost, srv.URL+"/session/script/301", tok,
		map[string]string{"source": `
function fizzbuzz(n)
  if n % 15 == 0 then return "FizzBuzz"
  elseif n % 3 == 0 then return "Fizz"
  elseif n % 5 == 0 then return "Buzz"
  end
  return tostring(n)
end`})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 6.0, out["passed"])
	require.Equal(t, 6.0, out["total"])

	resp, out = doJSON(t, http.MethodPost, srv.URL+"/session/submit", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	// 5 (MCQ) + 10 (formula) + 20 (script 6/6)
	require.InDelta(t, 35.0, out["score_total"].(float64), 1e-9)

	// The session is gone after submit.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/session/submit", tok, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminFlow(t *testing.T) {
	srv := newServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/auth/admin", "", map[string]string{"key": "wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/auth/admin", "", map[string]string{"key": adminKey})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	adminTok, _ := body["access_token"].(string)
	require.NotEmpty(t, adminTok)

	resp, sum := doJSON(t, http.MethodGet, srv.URL+"/admin/summary", adminTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 0.0, sum["submissions"])

	// Candidates cannot reach admin surfaces.
	tok := register(t, srv)
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/admin/summary", tok, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// And no token at all is unauthorized.
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/admin/summary", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSaveAnswersValidation(t *testing.T) {
	srv := newServer(t)
	tok := register(t, srv)

	// Unknown question id.
	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/session/answers", tok,
		map[string]any{"answers": map[string]string{"999": "A"}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Practical task ids are not free-text answers.
	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/session/answers", tok,
		map[string]any{"answers": map[string]string{"301": "code"}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGradeQueryTask(t *testing.T) {
	srv := newServer(t)
	tok := register(t, srv)

	resp, out := doJSON(t, http.MethodPost, srv.URL+"/session/query/501", tok,
		map[string]string{"sql": "not even sql"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 0.0, out["passed"])
	require.Equal(t, 3.0, out["total"])
	detail, _ := out["detail"].(string)
	require.Contains(t, detail, "query error")

	// Task/type mismatch is rejected.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/session/query/301", tok,
		map[string]string{"sql": "SELECT 1"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
