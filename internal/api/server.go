// Package api serves a read-only monitoring view of the governance system.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/metrics"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// DefaultPollInterval is how often the event log is tailed for metrics
const DefaultPollInterval = 2 * time.Second

// Server exposes proposals, operations, roles, events and metrics over HTTP
type Server struct {
	workspace *usecase.Workspace
	events    usecase.EventLog
	logger    *slog.Logger

	listProposals *usecase.ListProposals
	showProposal  *usecase.ShowProposal
	showTimelock  *usecase.ShowTimelock
	listRoles     *usecase.ListRoles
	listEvents    *usecase.ListEvents

	registry *prometheus.Registry
	recorder *metrics.Recorder

	listenAddr   string
	pollInterval time.Duration

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a monitoring server. Lookups never prompt, whatever the
// interactive setting of cfg.
func NewServer(cfg *config.RuntimeConfig, workspace *usecase.Workspace, events usecase.EventLog, logger *slog.Logger) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	resolver := usecase.NewProposalResolver(nil, &config.RuntimeConfig{NonInteractive: true})
	return &Server{
		workspace:     workspace,
		events:        events,
		logger:        logger.With("component", "api"),
		listProposals: usecase.NewListProposals(workspace),
		showProposal:  usecase.NewShowProposal(workspace, resolver, events),
		showTimelock:  usecase.NewShowTimelock(workspace),
		listRoles:     usecase.NewListRoles(workspace),
		listEvents:    usecase.NewListEvents(events),
		registry:      registry,
		recorder:      metrics.NewRecorder(registry),
		listenAddr:    cfg.ListenAddr,
		pollInterval:  DefaultPollInterval,
	}
}

// SetPollInterval changes how often metrics are refreshed
func (s *Server) SetPollInterval(d time.Duration) {
	if d > 0 {
		s.pollInterval = d
	}
}

// Handler builds the gin engine
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	s.InstallAPI(r)
	return r
}

// InstallAPI registers the monitoring handlers with gin
func (s *Server) InstallAPI(r *gin.Engine) {
	r.GET("/healthz", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	r.GET("/api/v1/status", s.statusHandler)
	r.GET("/api/v1/proposals", s.listProposalsHandler)
	r.GET("/api/v1/proposals/:id", s.proposalDetailsHandler)
	r.GET("/api/v1/operations", s.listOperationsHandler)
	r.GET("/api/v1/operations/:id", s.operationDetailsHandler)
	r.GET("/api/v1/roles", s.listRolesHandler)
	r.GET("/api/v1/events", s.listEventsHandler)
}

// Addr returns the bound address once Run is listening
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.listenAddr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	pollCtx, stopPolling := context.WithCancel(ctx)
	defer stopPolling()

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	go func() {
		defer wg.Done()
		s.poll(pollCtx)
	}()

	s.logger.Info("monitoring API listening", "addr", ln.Addr().String())

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("failed to shut down monitoring API", "error", err)
	}
	stopPolling()
	wg.Wait()
	return runErr
}

// Sync feeds new events to the recorder and refreshes the state gauges
func (s *Server) Sync(ctx context.Context) error {
	events, err := s.events.List(ctx, domain.EventFilter{AfterSeq: s.recorder.LastSeq()})
	if err != nil {
		return err
	}
	if err := s.recorder.Publish(ctx, events); err != nil {
		return err
	}
	sys, err := s.workspace.Open(ctx)
	if err != nil {
		if errors.Is(err, usecase.ErrNotInitialized) {
			return nil
		}
		return err
	}
	s.recorder.Observe(sys)
	return nil
}

func (s *Server) poll(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		if err := s.Sync(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("failed to refresh metrics", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
