package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jusunglee/singlish/internal/db"
	"github.com/jusunglee/singlish/internal/health"
	"github.com/jusunglee/singlish/internal/translation"
	"github.com/jusunglee/singlish/internal/web/handlers"
	"github.com/jusunglee/singlish/internal/web/middleware"
)

type Config struct {
	// APIKey guards custom word changes.
	APIKey string
	// AdminPassword guards the feedback listing.
	AdminPassword  string
	AllowedOrigins []string
	// RateLimit is requests per minute per client IP on write routes.
	RateLimit int
}

type Router struct {
	repo       db.Repository
	log        *slog.Logger
	translator *translation.Translator
	cfg        Config
}

func NewRouter(repo db.Repository, log *slog.Logger, translator *translation.Translator, cfg Config) *Router {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 60
	}
	return &Router{
		repo:       repo,
		log:        log,
		translator: translator,
		cfg:        cfg,
	}
}

// Handler builds the API mux. ctx bounds the rate limiter's background
// cleanup.
func (r *Router) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()

	convertHandler := handlers.NewConvertHandler(r.translator, r.log)
	wordsHandler := handlers.NewWordsHandler(r.repo, r.translator, r.log)
	feedbackHandler := handlers.NewFeedbackHandler(r.repo, r.log)

	rateLimiter := middleware.NewRateLimiter(ctx, r.cfg.RateLimit, time.Minute)

	mux.Handle("GET /health", health.Handler(r.translator))

	mux.Handle("POST /api/v1/convert",
		middleware.Chain(
			http.HandlerFunc(convertHandler.Convert),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.RateLimit(rateLimiter),
			middleware.MaxBody(64<<10),
		),
	)

	mux.Handle("GET /api/v1/stats",
		middleware.Chain(
			http.HandlerFunc(convertHandler.Stats),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
		),
	)

	mux.Handle("GET /api/v1/words",
		middleware.Chain(
			http.HandlerFunc(wordsHandler.List),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
		),
	)

	mux.Handle("POST /api/v1/words",
		middleware.Chain(
			http.HandlerFunc(wordsHandler.Create),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.APIKeyAuth(r.cfg.APIKey),
			middleware.MaxBody(16<<10),
		),
	)

	mux.Handle("DELETE /api/v1/words/{id}",
		middleware.Chain(
			http.HandlerFunc(wordsHandler.Delete),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.APIKeyAuth(r.cfg.APIKey),
		),
	)

	mux.Handle("POST /api/v1/feedback",
		middleware.Chain(
			http.HandlerFunc(feedbackHandler.Create),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.RateLimit(rateLimiter),
			middleware.MaxBody(16<<10),
		),
	)

	mux.Handle("GET /api/v1/feedback",
		middleware.Chain(
			http.HandlerFunc(feedbackHandler.List),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.BasicAuth(r.cfg.AdminPassword),
		),
	)

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.CORS(r.cfg.AllowedOrigins),
	)
}
