package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/skillgate/skillgate/internal/api/http"
	"github.com/skillgate/skillgate/internal/auth"
	"github.com/skillgate/skillgate/internal/catalog"
	"github.com/skillgate/skillgate/internal/config"
	"github.com/skillgate/skillgate/internal/db"
	"github.com/skillgate/skillgate/internal/grading"
	"github.com/skillgate/skillgate/internal/rbac"
	"github.com/skillgate/skillgate/internal/session"
	"github.com/skillgate/skillgate/internal/store"
)

func main() {
	cfg := config.FromEnv()

	// A broken catalog must abort startup, not degrade grading.
	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	st := store.NewSQLStore(dbh)

	sessions := session.NewManager()
	grader := grading.NewGrader(grading.WithScriptTimeout(cfg.ScriptTimeout))
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/register", api.RegisterHandler(st, sessions, authSvc))
	r.Post("/auth/admin", api.AdminLoginHandler(authSvc, cfg.AdminKeyHash))

	// Protected API (JWT → role in context → rbac)
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
		pr.With(rbac.Require("admin:view")).
			Get("/admin/submissions", api.ListSubmissionsHandler(st))
		pr.With(rbac.Require("admin:view")).
			Get("/admin/submissions/{id}", api.GetSubmissionHandler(st))
		pr.With(rbac.Require("admin:export")).
			Get("/admin/export.csv", api.ExportCSVHandler(st))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s, questions=%d)", cfg.HTTPAddr, cfg.DBDriver, cat.Len())
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
