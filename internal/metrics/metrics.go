package metrics

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// Aggregator metrics
	StatusUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classwatch_status_updates_total",
			Help: "Total status updates received, by result",
		},
		[]string{"result"},
	)

	StudentsTracked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "classwatch_students_tracked",
			Help: "Number of students with a recorded status",
		},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classwatch_http_requests_total",
			Help: "Total HTTP requests handled by the aggregator API",
		},
		[]string{"route", "method", "code"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classwatch_http_request_duration_seconds",
			Help:    "Aggregator API request duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"route"},
	)

	// Student client metrics
	ReportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classwatch_reports_total",
			Help: "Status reports sent by the student client, by result",
		},
		[]string{"result"},
	)

	ReportDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "classwatch_report_duration_seconds",
			Help:    "Status report round-trip time in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2},
		},
	)

	EngagementState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "classwatch_engagement_state",
			Help: "Current engagement state of the local student (1 = engaged, 0 = zoned out)",
		},
		[]string{"student"},
	)

	FramesProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "classwatch_frames_processed_total",
			Help: "Total video frames classified",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(
		StatusUpdatesTotal,
		StudentsTracked,
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ReportsTotal,
		ReportDuration,
		EngagementState,
		FramesProcessed,
	)
}

// Server is the metrics HTTP server
type Server struct {
	server   *http.Server
	logger   zerolog.Logger
	listener net.Listener // Optional pre-created listener (for systemd socket activation)
}

// NewServer creates a new metrics server
func NewServer(addr string, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// SetListener sets a pre-created listener for systemd socket activation
func (s *Server) SetListener(ln net.Listener) {
	s.listener = ln
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the metrics server
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	go func() {
		var err error
		if s.listener != nil {
			s.logger.Debug().Msg("Using systemd socket-activated metrics listener")
			err = s.server.Serve(s.listener)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Stop stops the metrics server
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Close()
}
