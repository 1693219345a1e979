package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/goodtune/classwatch/internal/aggregator"
	"github.com/goodtune/classwatch/web"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Config holds the API server configuration.
type Config struct {
	ListenAddr      string
	AllowedOrigins  []string
	Dashboard       bool
	ShutdownTimeout time.Duration
}

// Server is the status aggregator HTTP server.
type Server struct {
	config     Config
	aggregator *aggregator.Aggregator
	server     *http.Server
	router     *mux.Router
	listener   net.Listener // Optional pre-created listener (for systemd socket activation)
	logger     zerolog.Logger
}

// NewServer creates a new API server backed by agg.
func NewServer(cfg Config, agg *aggregator.Aggregator, logger zerolog.Logger) *Server {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		config:     cfg,
		aggregator: agg,
		router:     mux.NewRouter(),
		logger:     logger.With().Str("component", "api").Logger(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(MetricsMiddleware)

	// Always installed so preflight requests get 204 even when no origin is allowed.
	s.router.Use(CORSMiddleware(s.config.AllowedOrigins))

	statusHandler := NewStatusHandler(s.aggregator, s.logger)
	s.router.HandleFunc("/update_status", statusHandler.UpdateStatus).Methods("POST", "OPTIONS")
	s.router.HandleFunc("/get_statuses", statusHandler.GetStatuses).Methods("GET", "OPTIONS")
	s.router.HandleFunc("/get_statuses/{student_id}", statusHandler.GetStatus).Methods("GET", "OPTIONS")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	if s.config.Dashboard {
		s.router.HandleFunc("/", web.ServeIndex).Methods("GET")
		s.router.PathPrefix("/").Handler(web.Handler()).Methods("GET")
	}
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SetListener sets a pre-created listener for systemd socket activation.
func (s *Server) SetListener(ln net.Listener) {
	s.listener = ln
}

// Start starts the API server in the background.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.config.ListenAddr).Msg("Starting status API server")

	go func() {
		var err error
		if s.listener != nil {
			s.logger.Debug().Msg("Using systemd socket-activated HTTP listener")
			err = s.server.Serve(s.listener)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Status API server error")
		}
	}()

	return nil
}

// Stop gracefully stops the API server.
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping status API server")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	students, err := s.aggregator.Count(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Health check failed")
		WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"students": students,
	})
}
