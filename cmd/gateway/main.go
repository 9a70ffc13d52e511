package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/skillforge/skillforge/internal/api/http"
	auth "github.com/skillforge/skillforge/internal/auth/middleware"
	"github.com/skillforge/skillforge/internal/config"
	"github.com/skillforge/skillforge/internal/db"
	"github.com/skillforge/skillforge/internal/genai"
	"github.com/skillforge/skillforge/internal/grading"
	"github.com/skillforge/skillforge/internal/notify"
	"github.com/skillforge/skillforge/internal/quiz"
	rbac "github.com/skillforge/skillforge/internal/rbac"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := quiz.NewSQLStore(dbh, cfg.DBDriver)

	// --- Question generation ---
	var gen genai.Generator
	switch cfg.GenProvider {
	case "openai":
		gen = genai.NewOpenAI(cfg.GenBaseURL, cfg.GenAPIKey, cfg.GenModel)
	default:
		gen = genai.NewOllama(cfg.GenBaseURL, cfg.GenModel)
	}
	svc := quiz.NewService(store, gen, grading.NewDefaultGrader())

	// --- Auth ---
	mailer := notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	authSvc := auth.NewAuthService(cfg.AuthSecret, dbh, mailer)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(90 * time.Second)) // quiz generation can be slow

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc))
	r.Post("/auth/register", auth.RegisterHandler(authSvc))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, true))

		// Catalog
		pr.With(rbac.Require("course:manage")).Post("/courses", api.CreateCourseHandler(store))
		pr.Get("/courses", api.ListCoursesHandler(store))
		pr.With(rbac.Require("topic:manage")).Post("/topics", api.CreateTopicHandler(store))
		pr.Get("/topics", api.ListTopicsHandler(store))
		pr.With(rbac.Require("student:list")).Post("/students", api.CreateStudentHandler(store))
		pr.With(rbac.Require("student:list")).Get("/students", api.ListStudentsHandler(store))

		// Quiz catalog (instructor)
		pr.With(rbac.Require("quiz:create")).Get("/generator/health", api.GeneratorHealthHandler(gen))
		pr.With(rbac.Require("quiz:create")).Post("/quizzes", api.CreateQuizHandler(svc, store))
		pr.With(rbac.Require("quiz:view-all")).Get("/quizzes", api.ListQuizzesHandler(store))
		pr.With(rbac.Require("quiz:view-all")).Get("/topics/{topicID}/quizzes", api.ListQuizzesByTopicHandler(store))
		pr.With(rbac.Require("quiz:delete")).Delete("/quizzes/{quizID}", api.DeleteQuizHandler(store))
		pr.With(rbac.Require("question:manage")).Get("/quizzes/{quizID}/questions", api.ListQuestionsHandler(store))
		pr.With(rbac.Require("question:manage")).Post("/quizzes/{quizID}/questions", api.AddQuestionHandler(store))
		pr.With(rbac.Require("question:manage")).Put("/questions/{questionID}", api.UpdateQuestionHandler(store))
		pr.With(rbac.Require("question:manage")).Delete("/questions/{questionID}", api.DeleteQuestionHandler(store))
		pr.With(rbac.Require("quiz:assign")).Post("/quizzes/{quizID}/assign", api.AssignQuizHandler(svc))

		// Student flow. The owner check keeps students inside their own
		// records; attempt:view-all lets instructors through.
		pr.Route("/students/{studentID}", func(sr chi.Router) {
			sr.Use(rbac.RequireOwnerOr("attempt:view-all", api.IsOwnStudent))

			sr.Get("/assignments", api.ListAssignmentsHandler(store))
			sr.With(rbac.Require("attempt:start")).
				Post("/quizzes/{quizID}/start", api.StartQuizHandler(svc))
			sr.With(rbac.Require("attempt:submit")).
				Post("/quizzes/{quizID}/submit", api.SubmitQuizHandler(svc))
			sr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
				Get("/attempts", api.ListAttemptsHandler(svc))
			sr.With(rbac.RequireAny("progress:view-own", "progress:view-all")).
				Get("/progress", api.GetProgressHandler(svc))
		})

		// Instructor grading
		pr.With(rbac.Require("attempt:grade")).Get("/grading/attempts", api.ListUngradedHandler(svc))
		pr.With(rbac.Require("attempt:grade")).Get("/grading/attempts/{attemptID}", api.GetGradingItemsHandler(svc))
		pr.With(rbac.Require("attempt:grade")).Post("/grading/attempts/{attemptID}", api.GradeAttemptHandler(svc))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	log.Printf("listening on %s (db=%s, generator=%s)", cfg.HTTPAddr, cfg.DBDriver, cfg.GenProvider)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
