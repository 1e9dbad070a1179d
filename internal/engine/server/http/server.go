// Package http exposes the engine's REST API plus health and metrics
// endpoints.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veltrack-io/veltrack/internal/engine/core/service"
	"github.com/veltrack-io/veltrack/internal/pkg/metrics"
	"github.com/veltrack-io/veltrack/pkg/log"
	"github.com/veltrack-io/veltrack/pkg/options"
)

// ReadyChecker reports whether a backing dependency is reachable.
type ReadyChecker func(ctx context.Context) error

// Server is the HTTP transport.
type Server struct {
	server *http.Server
	opts   *options.HttpOptions
}

// NewServer builds the router and wraps it in an http.Server.
func NewServer(opts *options.HttpOptions, svc *service.Service, checks ...ReadyChecker) *Server {
	h := &handler{svc: svc, logger: log.WithName("http")}

	r := mux.NewRouter()
	r.HandleFunc("/v1/positions", h.ingestPosition).Methods(http.MethodPost)
	r.HandleFunc("/v1/vehicles/{plate}/command", h.submitCommand).Methods(http.MethodPost)
	r.HandleFunc("/v1/vehicles/{plate}/status", h.vehicleStatus).Methods(http.MethodGet)
	r.HandleFunc("/v1/vehicles/{plate}/export", h.exportHistory).Methods(http.MethodPost)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.HandleFunc("/readyz", func(w http.ResponseWriter, req *http.Request) {
		for _, check := range checks {
			if err := check(req.Context()); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return &Server{
		server: &http.Server{
			Addr:         opts.Addr,
			Handler:      r,
			ReadTimeout:  opts.Timeout,
			WriteTimeout: opts.Timeout,
		},
		opts: opts,
	}
}

// Start serves until ctx is canceled, then drains connections.
func (s *Server) Start(ctx context.Context) error {
	log.Info("Starting HTTP Server", "addr", s.server.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}
