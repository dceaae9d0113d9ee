// Package server exposes validation and unpacking over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"golang.org/x/net/netutil"
)

const shutdownTimeout = 5 * time.Second

type Options struct {
	Addr string

	// MaxConns caps concurrently accepted connections; zero means no cap.
	MaxConns       int
	ReadTimeout    time.Duration
	MaxBodyBytes   int64
	MaxUnpackedLen uint64
}

type Server struct {
	opts   Options
	logger *log.Logger
	router *mux.Router
}

func New(opts Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	router := mux.NewRouter()
	router.Use(LoggingMiddleware(logger))
	NewHandler(opts, logger).RegisterRoutes(router)

	return &Server{opts: opts, logger: logger, router: router}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe listens on the configured address and serves until ctx is
// canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve takes ownership of ln. When ctx is canceled the server stops
// accepting connections and waits up to shutdownTimeout for in-flight
// requests; a clean shutdown returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.opts.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.opts.MaxConns)
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: s.opts.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("server started", "addr", ln.Addr().String(), "max_conns", s.opts.MaxConns)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
