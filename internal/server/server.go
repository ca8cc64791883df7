// Package server exposes the HTTP surface of the worker manager: webhook
// deliveries, node descriptions, option loaders, probes and metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	commonerrors "rynko-workers/internal/common/errors"
	"rynko-workers/internal/common/logger"
	"rynko-workers/internal/models"
	"rynko-workers/pkg/registry"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// OptionLoader serves dynamic dropdown values.
type OptionLoader interface {
	LoadOptions(ctx context.Context, method string, params map[string]string) ([]models.OptionItem, error)
}

// HealthChecker backs the readiness probe.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Options struct {
	Address     string
	ServiceName string
	Logger      logger.Logger
	Nodes       []registry.NodeDescription
	Options     OptionLoader
	Ready       HealthChecker
	// Webhooks maps callback path segments to delivery handlers.
	Webhooks     map[string]http.Handler
	ReadyTimeout time.Duration
}

type Server struct {
	Router     *chi.Mux
	httpServer *http.Server
	logger     logger.Logger
	opts       Options
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "rynko-workers"
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = 5 * time.Second
	}

	s := &Server{
		Router: chi.NewRouter(),
		logger: opts.Logger,
		opts:   opts,
	}

	r := s.Router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, opts.ServiceName)
	})

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/webhooks/rynko/{path}", s.handleWebhook)

	r.Get("/nodes", s.handleNodes)
	r.Get("/nodes/{name}", s.handleNode)
	r.Get("/nodes/"+registry.NodeRynko+"/options/{method}", s.handleOptions)

	s.httpServer = &http.Server{
		Addr:              opts.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start listens on the configured address and serves until Shutdown is called.
func (s *Server) Start() error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Listen binds the configured address. Connections are accepted by the
// kernel from this point on, so callers can register callback URLs before
// Serve runs.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.opts.Address, err)
	}
	s.logger.Info("Starting HTTP server", map[string]interface{}{
		"address": ln.Addr().String(),
	})
	return ln, nil
}

// Serve handles requests on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.opts.Ready == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.ReadyTimeout)
	defer cancel()

	if err := s.opts.Ready.HealthCheck(ctx); err != nil {
		s.logger.Warn("Readiness check failed", map[string]interface{}{
			"error": err.Error(),
		})
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	handler, ok := s.opts.Webhooks[chi.URLParam(r, "path")]
	if !ok {
		writeError(w, http.StatusNotFound, "no trigger is listening on this path")
		return
	}
	handler.ServeHTTP(w, r)
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := registry.WriteJSON(w, s.opts.Nodes); err != nil {
		s.logger.Error("Failed to write node descriptions", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	for _, n := range s.opts.Nodes {
		if n.Name == name {
			writeJSON(w, http.StatusOK, n)
			return
		}
	}
	writeError(w, http.StatusNotFound, "unknown node: "+name)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	if s.opts.Options == nil {
		writeError(w, http.StatusNotFound, "option loaders are not enabled")
		return
	}

	params := map[string]string{}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	items, err := s.opts.Options.LoadOptions(r.Context(), chi.URLParam(r, "method"), params)
	if err != nil {
		stdErr := commonerrors.AsStandardError(err)
		status := http.StatusInternalServerError
		if stdErr.Code == commonerrors.ErrCodeUnknownSelector {
			status = http.StatusNotFound
		}
		writeError(w, status, stdErr.Message)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
