// Package site serves local pages for the browser to load: a directory of
// fixtures plus a built-in demo gallery, behind chi with security headers.
package site

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

//go:embed demo.html
var demoHTML []byte

// DemoPath is where the built-in gallery is served.
const DemoPath = "/demo"

type options struct {
	logger  *slog.Logger
	headers HeaderConfig
}

// Option configures the handler.
type Option func(*options)

// WithLogger sets a custom logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHeaders replaces DefaultHeaders.
func WithHeaders(h HeaderConfig) Option {
	return func(o *options) { o.headers = h }
}

// Handler serves dir (may be empty for demo only), /health and the demo page.
func Handler(dir string, opts ...Option) http.Handler {
	o := options{logger: slog.Default(), headers: DefaultHeaders()}
	for _, fn := range opts {
		fn(&o)
	}

	r := chi.NewRouter()
	r.Use(HeadToGet)
	r.Use(SecurityHeaders(o.headers))
	r.Use(requestLog(o.logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	r.Get(DemoPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(demoHTML)
	})
	if dir != "" {
		r.Handle("/*", http.FileServer(http.Dir(dir)))
	}
	return r
}

func requestLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("site: request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
		})
	}
}

// Server is a running fixture server.
type Server struct {
	URL string // base URL, no trailing slash
	srv *http.Server
	ln  net.Listener
}

// Start listens on addr (":0" style addresses pick a free port) and serves
// Handler(dir) in the background.
func Start(addr, dir string, opts ...Option) (*Server, error) {
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("site: listen %s: %w", addr, err)
	}

	o := options{logger: slog.Default()}
	for _, fn := range opts {
		fn(&o)
	}

	s := &Server{
		URL: "http://" + ln.Addr().String(),
		srv: &http.Server{Handler: Handler(dir, opts...), ReadHeaderTimeout: 10 * time.Second},
		ln:  ln,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			o.logger.Error("site: serve", "error", err)
		}
	}()
	o.logger.Info("site: serving", "url", s.URL, "dir", dir)
	return s, nil
}

// Close shuts the server down, waiting for in-flight requests until ctx ends.
func (s *Server) Close(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
