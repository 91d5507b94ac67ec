package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jusunglee/singlish/internal/db"
	"github.com/jusunglee/singlish/internal/db/open"
	"github.com/jusunglee/singlish/internal/db/postgres"
	"github.com/jusunglee/singlish/internal/logger"
	"github.com/jusunglee/singlish/internal/metrics"
	"github.com/jusunglee/singlish/internal/tables"
	"github.com/jusunglee/singlish/internal/translation"
	"github.com/jusunglee/singlish/internal/web"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed all:dist
var staticFiles embed.FS

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
	slog.Info("exiting without error")
}

func mainE() error {
	_ = godotenv.Load()

	fs_ := ff.NewFlagSet("singlish-web")

	var (
		port           = fs_.Int64Long("port", 3000, "HTTP server port")
		databaseURL    = fs_.StringLong("database-url", "./singlish.db", "SQLite path or PostgreSQL connection URL")
		apiKey         = fs_.StringLong("api-key", "", "Key required to add or delete custom words")
		adminPassword  = fs_.StringLong("admin-password", "", "Password for reading submitted feedback")
		allowedOrigins = fs_.StringLong("allowed-origins", "", "Comma-separated list of allowed CORS origins")
		rateLimit      = fs_.IntLong("rate-limit", 60, "Requests per minute per client on convert and feedback")
	)

	if err := ff.Parse(fs_, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs_))
		return fmt.Errorf("parsing flags: %w", err)
	}

	if *databaseURL == "" {
		return errors.New("database-url is required")
	}

	log := logger.New()
	if *apiKey == "" {
		log.Warn("api-key not set, custom word changes are disabled")
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	repo, err := open.Repository(ctx, *databaseURL)
	if err != nil {
		return err
	}
	defer repo.Close()
	log.InfoContext(ctx, "connected to database", "postgres", db.IsPostgresURL(*databaseURL))

	if pg, ok := repo.(*postgres.Repository); ok {
		go exportPoolStats(ctx, pg)
	}

	base, err := tables.Load()
	if err != nil {
		return fmt.Errorf("loading tables: %w", err)
	}
	translator, err := translation.NewTranslator(ctx, base, repo)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "tables loaded", "stats", translator.Engine().Stats())

	router := web.NewRouter(repo, log, translator, web.Config{
		APIKey:         *apiKey,
		AdminPassword:  *adminPassword,
		AllowedOrigins: splitOrigins(*allowedOrigins),
		RateLimit:      *rateLimit,
	})
	apiHandler := router.Handler(ctx)

	distFS, err := fs.Sub(staticFiles, "dist")
	if err != nil {
		return fmt.Errorf("creating sub filesystem: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", withStatic(apiHandler, distFS))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", *port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.InfoContext(ctx, "received signal, shutting down gracefully", "signal", sig)
		cancel(errors.New("signal received"))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(ctx, "server shutdown error", "error", err)
		}
	}()

	log.InfoContext(ctx, "starting web server", "port", *port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// exportPoolStats periodically copies pgxpool stats into Prometheus gauges.
func exportPoolStats(ctx context.Context, repo *postgres.Repository) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s := repo.PoolStats()
			metrics.DBPoolTotalConns.Set(float64(s.TotalConns()))
			metrics.DBPoolIdleConns.Set(float64(s.IdleConns()))
			metrics.DBPoolAcquiredConns.Set(float64(s.AcquiredConns()))
			metrics.DBPoolMaxConns.Set(float64(s.MaxConns()))
		case <-ctx.Done():
			return
		}
	}
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// withStatic sends API and health routes to api and everything else to the
// embedded page, falling back to index.html.
func withStatic(api http.Handler, distFS fs.FS) http.Handler {
	fileServer := http.FileServer(http.FS(distFS))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/health" {
			api.ServeHTTP(w, r)
			return
		}

		path := r.URL.Path
		if path == "/" {
			path = "/index.html"
		}
		if _, err := fs.Stat(distFS, strings.TrimPrefix(path, "/")); err == nil {
			w.Header().Set("Cache-Control", "public, s-maxage=60, max-age=0")
			fileServer.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Cache-Control", "public, s-maxage=60, max-age=0")
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
