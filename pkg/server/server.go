// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.elastic.co/apm/module/apmhttp/v2"
	"go.elastic.co/apm/v2"

	ulog "github.com/elastic/timeseries-optimizer/pkg/utils/log"
	"github.com/elastic/timeseries-optimizer/pkg/utils/metrics"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 30 * time.Second
)

var log = ulog.Log.WithName("http-server")

// Options configure the HTTP handler.
type Options struct {
	// ServeMetrics exposes /metrics on the API listener.
	ServeMetrics bool
	// Tracer instruments every request when not nil.
	Tracer *apm.Tracer
}

// NewHandler returns the routes of the shrink API.
func NewHandler(controller Controller, cluster ClusterInfoGetter, opts Options) http.Handler {
	h := &handlers{controller: controller, cluster: cluster}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)
	if opts.ServeMetrics {
		r.Handle("/metrics", metrics.Handler())
	}
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/shrink", h.shrink)
		r.Post("/shrink-by-date", h.shrinkByDate)
	})

	if opts.Tracer == nil {
		return r
	}
	return apmhttp.Wrap(r, apmhttp.WithTracer(opts.Tracer))
}

// Server is an HTTP server shut down gracefully when its context is done.
type Server struct {
	name   string
	server *http.Server
}

// New returns a server listening on addr.
func New(name, addr string, handler http.Handler) *Server {
	return &Server{
		name: name,
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// NewMetricsServer returns a server exposing only the metrics on the given port.
func NewMetricsServer(port int) *Server {
	mux := chi.NewRouter()
	mux.Handle("/metrics", metrics.Handler())
	return New("metrics", fmt.Sprintf(":%d", port), mux)
}

// Run serves requests until ctx is done, then waits up to 30 seconds for in-flight requests to complete.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("while listening on %s: %w", s.server.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve is like Run with an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "name", s.name, "address", listener.Addr().String())
		errCh <- s.server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server", "name", s.name)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("while shutting down %s server: %w", s.name, err)
	}
	return nil
}
