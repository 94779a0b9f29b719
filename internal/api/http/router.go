package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-grader/internal/assessment"
	auth "github.com/mind-engage/mindengage-grader/internal/auth/middleware"
	"github.com/mind-engage/mindengage-grader/internal/metrics"
	"github.com/mind-engage/mindengage-grader/internal/rbac"
)

// Deps is everything the router needs. Metrics, Events and Ready are optional.
type Deps struct {
	Service *assessment.Service
	Events  EventLister
	Auth    *auth.AuthService
	Metrics *metrics.Metrics
	Log     *zap.Logger

	EnableLocalAuth bool
	Login           auth.LoginOptions
	CORSOrigins     []string
	RequestTimeout  time.Duration
	Ready           func(ctx context.Context) error
}

func NewRouter(d Deps) chi.Router {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(log), middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if d.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(d.Auth, d.Login))
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth))

		pr.With(rbac.Require(rbac.PermGradeRun)).
			Post("/grade", GradeHandler(d.Service))

		pr.With(rbac.Require(rbac.PermQuestionCreate)).
			Post("/questions", CreateQuestionHandler(d.Service))
		pr.With(rbac.Require(rbac.PermQuestionView)).
			Get("/questions", ListQuestionsHandler(d.Service))
		pr.With(rbac.Require(rbac.PermQuestionView)).
			Get("/questions/{questionID}", GetQuestionHandler(d.Service))

		pr.With(rbac.Require(rbac.PermGradeRun)).
			Post("/attempts/{attemptID}/grade", GradeAttemptHandler(d.Service))
		pr.With(rbac.RequireAny(rbac.PermResultViewOwn, rbac.PermResultViewAll)).
			Get("/attempts/{attemptID}/result", GetAttemptResultHandler(d.Service))

		pr.With(rbac.Require(rbac.PermPracticeCheck)).
			Post("/practice/check", PracticeCheckHandler(d.Service))

		if d.Events != nil {
			pr.With(rbac.Require(rbac.PermEventsRead)).
				Get("/events", ListEventsHandler(d.Events))
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				log.Warn("not ready", zap.Error(err))
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}
	return r
}

// requestLogger writes one structured line per request.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("http request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("took", time.Since(start)))
		})
	}
}
