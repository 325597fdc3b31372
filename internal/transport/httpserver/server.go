package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sandevgo/tuskmem/pkg/log"
)

const healthTimeout = 2 * time.Second

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Server exposes /metrics and /healthz for the memory service.
type Server struct {
	addr     string
	gatherer prometheus.Gatherer
	checks   map[string]HealthCheck

	mu     sync.Mutex
	server *http.Server
	bound  string
}

func NewServer(addr string, gatherer prometheus.Gatherer, checks map[string]HealthCheck) *Server {
	return &Server{
		addr:     addr,
		gatherer: gatherer,
		checks:   checks,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Start blocks serving until ctx is done or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	ctx = log.WithComponent(ctx, "http")
	logger := log.FromCtx(ctx)

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.mu.Lock()
	s.server = server
	s.bound = ln.Addr().String()
	s.mu.Unlock()

	logger.Info().Str("addr", ln.Addr().String()).Msg("serving metrics")
	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the listening address once Start has bound it.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("check", name).Msg("health check failed")
			status = http.StatusServiceUnavailable
		}
	}

	w.WriteHeader(status)
	_, _ = w.Write([]byte(http.StatusText(status)))
}
