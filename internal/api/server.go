package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mindforge/focusd/internal/cache"
	"github.com/mindforge/focusd/internal/config"
	"github.com/mindforge/focusd/internal/engine"
	"github.com/mindforge/focusd/internal/health"
)

// SampleStore is the persistent-store surface the handlers need. The
// concrete implementation lives in internal/storage.
type SampleStore interface {
	InsertSample(ctx context.Context, s health.Sample) error
	FindSamples(ctx context.Context, userID string, start, end time.Time) ([]health.Sample, error)
	GetProfile(ctx context.Context, userID string) (*health.UserProfile, error)
}

// Server sequences check-cache, compute, populate-cache for every request
// and owns the HTTP lifecycle.
type Server struct {
	config     *config.Config
	logger     *zap.Logger
	router     *mux.Router
	httpServer *http.Server
	engine     *engine.Engine
	store      SampleStore
	cacheStore cache.Store
	metrics    *Metrics
	limiter    *clientLimiter

	startTime time.Time
}

// NewServer creates the HTTP server. store may be nil in degraded
// deployments; sample-backed routes then serve empty results. The cache
// connection's availability decides whether handler-level caching is on.
func NewServer(cfg *config.Config, logger *zap.Logger, eng *engine.Engine, store SampleStore, conn cache.Connection) *Server {
	cacheStore, available := conn.Available()
	if !available {
		logger.Warn("cache tier unavailable, serving in always-compute mode",
			zap.Error(conn.Reason()))
		cacheStore = nil
	}

	s := &Server{
		config:     cfg,
		logger:     logger,
		router:     mux.NewRouter(),
		engine:     eng,
		store:      store,
		cacheStore: cacheStore,
		metrics:   NewMetrics(),
		limiter:   newClientLimiter(cfg.Server.RatePerSecond, cfg.Server.RateBurst),
		startTime: time.Now(),
	}

	eng.SetObserver(s.metrics)
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/ready", s.handleReady).Methods("GET")
	s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")

	apiRouter := s.router.PathPrefix("/api/v1").Subrouter()
	apiRouter.HandleFunc("/predict/concentration", s.handlePredict).Methods("POST")
	apiRouter.HandleFunc("/health-metrics", s.handleStoreSample).Methods("POST")
	apiRouter.HandleFunc("/users/{user_id}/focus-pattern", s.handleFocusPattern).Methods("GET")
	apiRouter.HandleFunc("/users/{user_id}/profile", s.handleProfile).Methods("GET")

	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.rateLimitMiddleware)
}

// Start runs the server until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.Int("port", s.config.Server.Port))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the handler tree for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"uptime":  time.Since(s.startTime).Seconds(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ready": true,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}
