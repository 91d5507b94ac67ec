package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jusunglee/singlish/internal/transliteration"
)

// EngineSource is anything holding the active engine.
type EngineSource interface {
	Engine() *transliteration.Engine
}

type status struct {
	Status string                `json:"status"`
	Tables transliteration.Stats `json:"tables"`
}

// Handler reports ok together with the active table sizes, or 503 when no
// engine is loaded.
func Handler(src EngineSource) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		e := src.Engine()
		if e == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
			return
		}
		json.NewEncoder(w).Encode(status{Status: "ok", Tables: e.Stats()})
	})
}

type Server struct {
	httpServer *http.Server
}

func New(port int, src EngineSource) *Server {
	mux := http.NewServeMux()
	mux.Handle("GET /health", Handler(src))
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
