// Package server exposes the coach over HTTP: the MCP tool endpoint used
// by the chat front-end and the health-sync REST API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"diet-agent/internal/coach"
	"diet-agent/internal/logger"
)

const Version = "1.0.0"

type Config struct {
	Host       string
	Port       int
	SyncAPIKey string
}

// Pinger reports store health for /healthcheck.
type Pinger interface {
	Ping(ctx context.Context) error
}

type DietServer struct {
	coach      *coach.Service
	db         Pinger
	config     *Config
	tools      map[string]tool
	httpServer *http.Server
	log        *logger.Logger
}

func NewDietServer(cfg *Config, c *coach.Service, db Pinger, log *logger.Logger) *DietServer {
	if log == nil {
		log = logger.Nop()
	}
	s := &DietServer{
		coach:  c,
		db:     db,
		config: cfg,
		log:    log.With("component", "server"),
	}
	s.registerTools()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler is the full routing tree with CORS and request logging.
func (s *DietServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthcheck", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/", s.handleToolCall).Methods(http.MethodPost)
	r.HandleFunc("/mcp", s.handleToolCall).Methods(http.MethodPost)
	r.HandleFunc("/mcp/tools", s.handleListTools).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.requireAPIKey)
	api.HandleFunc("/sync/water", s.handleSyncWater).Methods(http.MethodPost)
	api.HandleFunc("/sync/weight", s.handleSyncWeight).Methods(http.MethodPost)
	api.HandleFunc("/sync/food", s.handleSyncFood).Methods(http.MethodPost)
	api.HandleFunc("/user/{telegram_id:[0-9]+}/stats", s.handleStats).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-API-Key"},
	})
	return c.Handler(s.loggingMiddleware(r))
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *DietServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting diet agent server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	s.log.Info("Server stopped")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *DietServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.statusCode,
			"duration", time.Since(start).String())
	})
}

// requireAPIKey enforces X-API-Key when a sync key is configured.
func (s *DietServer) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.SyncAPIKey != "" && r.Header.Get("X-API-Key") != s.config.SyncAPIKey {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *DietServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			s.log.Error("Health check failed", "error", err)
			status, code = "unavailable", http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, map[string]string{"status": status, "version": Version})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
