package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tinytelemetry/fleetlens/internal/logging"
	"github.com/tinytelemetry/fleetlens/internal/model"
	"github.com/tinytelemetry/fleetlens/internal/sample"
)

// StoreSource hands out the read store for one request.
type StoreSource interface {
	Acquire(ctx context.Context) (model.ReadAPI, error)
}

// Config holds the HTTP surface settings.
type Config struct {
	Addr             string
	APIKey           string
	CORSOrigins      []string
	DashboardEnabled bool
	MetricsEnabled   bool
}

// Server provides the fleetlens HTTP API.
type Server struct {
	addr      string
	cfg       Config
	stores    StoreSource
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time

	// samples is shared by fallback handlers; the generator is not
	// goroutine-safe.
	sampleMu sync.Mutex
	samples  *sample.Generator
}

// NewServer creates a new HTTP API server.
func NewServer(cfg Config, stores StoreSource) *Server {
	if cfg.Addr == "" {
		cfg.Addr = "0.0.0.0:3000"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      cfg.Addr,
		cfg:       cfg,
		stores:    stores,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
		samples:   sample.New(),
	}
}

// Handler builds the routed handler, wrapped in CORS when origins are set.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger())

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/aggregations", s.handleAggregations)
	api.GET("/servers-sample", s.handleServersSample)

	gated := api.Group("", requireAPIKey(s.cfg.APIKey))
	gated.GET("/servers", s.handleServers)
	gated.GET("/sessions", s.handleSessions)
	gated.GET("/signups", s.handleSignups)

	if s.cfg.DashboardEnabled {
		r.GET("/dashboard", s.handleDashboard)
	}
	if s.cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	if len(s.cfg.CORSOrigins) == 0 {
		return r
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", apiKeyHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	})(r)
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)
	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.addr = listener.Addr().String()
	s.startTime = time.Now()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("http server stopped")
		}
	}()
	logging.Info().Str("addr", s.addr).Msg("http server listening")
	return nil
}

// Addr returns the listen address, resolved after Start.
func (s *Server) Addr() string {
	return s.addr
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) sampleServers(n int) []model.ServerRecord {
	s.sampleMu.Lock()
	defer s.sampleMu.Unlock()
	return s.samples.Servers(n)
}

func (s *Server) sampleSessions() model.Page[model.Session] {
	s.sampleMu.Lock()
	defer s.sampleMu.Unlock()
	return s.samples.SessionsPage()
}

func (s *Server) sampleSignups() model.Page[model.Signup] {
	s.sampleMu.Lock()
	defer s.sampleMu.Unlock()
	return s.samples.SignupsPage()
}
