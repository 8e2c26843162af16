// Package httpapi exposes a tool catalog over HTTP: discovery endpoints under /tools and one
// POST endpoint per tool that invokes it through the dispatcher.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/skosovsky/toolreg"
)

const maxBodyBytes = 1 << 20

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAllowedOrigins sets the CORS allow list. "*" allows any origin; an empty list
// disables CORS headers.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = append([]string(nil), origins...)
	}
}

// Server serves the HTTP surface of a dispatcher and its catalog.
type Server struct {
	dispatcher *toolreg.Dispatcher
	catalog    *toolreg.Catalog
	logger     *slog.Logger
	origins    []string
	handler    http.Handler
}

// New returns a Server for d.
func New(d *toolreg.Dispatcher, opts ...Option) *Server {
	s := &Server{
		dispatcher: d,
		catalog:    d.Catalog(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "http_server")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /tools/list", s.handleList)
	mux.HandleFunc("GET /tools/all", s.handleAll)
	mux.HandleFunc("GET /tools/{name}", s.handleDescribe)
	mux.HandleFunc("POST /tools/{name}", s.handleInvoke)
	s.handler = s.withMiddleware(mux)
	return s
}

// Handler returns the root handler with CORS and request logging applied.
func (s *Server) Handler() http.Handler { return s.handler }

// Serve listens on addr until ctx is cancelled, then shuts the HTTP server down and waits for
// in-flight tool invocations.
func (s *Server) Serve(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.logger.Info("starting HTTP server", "addr", addr, "tools", s.catalog.Len())

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		<-serveDone
		return errors.Join(err, s.dispatcher.Shutdown(shutdownCtx))
	case err := <-serveDone:
		if errors.Is(err, http.ErrServerClosed) {
			s.logger.Info("HTTP server stopped")
			return nil
		}
		s.logger.Error("HTTP server stopped with error", "error", err)
		return err
	}
}
