// Package httpapi is the HTTP transport: the streaming ingestion endpoint,
// device lookups, health and Prometheus metrics.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/camfeed/internal/logging"
	"github.com/dmitrijs2005/camfeed/internal/server/archive"
	"github.com/dmitrijs2005/camfeed/internal/server/models"
	"github.com/dmitrijs2005/camfeed/internal/server/normalize"
	"github.com/dmitrijs2005/camfeed/internal/server/schema"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reconciler persists one extracted record.
type Reconciler interface {
	Reconcile(ctx context.Context, rec models.DeviceRecord) (models.ReconcileOutcome, error)
}

// DeviceReader answers lookups and health checks.
type DeviceReader interface {
	Latest(ctx context.Context, sn string) (*models.Row, error)
	History(ctx context.Context, sn string, limit int) ([]models.Row, error)
	Ping(ctx context.Context) error
}

type Options struct {
	Addr            string
	IngestPath      string
	MaxBodyBytes    int64
	MetricsEnabled  bool
	ArchiveTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type HTTPServer struct {
	server     *http.Server
	opts       Options
	schema     *schema.Schema
	normalizer *normalize.Normalizer
	reconciler Reconciler
	devices    DeviceReader
	archiver   archive.Archiver
	logger     logging.Logger
}

// NewHTTPServer wires the routes. arch may be nil to disable archiving.
func NewHTTPServer(o Options, s *schema.Schema, rec Reconciler, dev DeviceReader, arch archive.Archiver, logger logging.Logger) *HTTPServer {
	if o.IngestPath == "" {
		o.IngestPath = "/"
	}

	srv := &HTTPServer{
		opts:       o,
		schema:     s,
		normalizer: normalize.New(s),
		reconciler: rec,
		devices:    dev,
		archiver:   arch,
		logger:     logger.With("module", "http_server"),
	}
	srv.server = &http.Server{
		Addr:              o.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv
}

// Handler returns the full middleware-wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", s.healthCheck).Methods(http.MethodGet)
	if s.opts.MetricsEnabled {
		router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
	router.HandleFunc("/devices/{sn}", s.getLatest).Methods(http.MethodGet)
	router.HandleFunc("/devices/{sn}/history", s.getHistory).Methods(http.MethodGet)

	router.PathPrefix(s.opts.IngestPath).HandlerFunc(s.ingest).Methods(http.MethodPost)

	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusNotFound, "Not Found\n")
	})

	// Outside the router so 404 and 405 responses are logged and counted too.
	return s.requestIDMiddleware(s.metricsMiddleware(s.loggingMiddleware(router)))
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on listen until ctx is cancelled, then drains in-flight
// requests for at most ShutdownTimeout.
func (s *HTTPServer) Serve(ctx context.Context, listen net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
		errCh <- s.server.Serve(listen)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	timeout := s.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
