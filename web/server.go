package web

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"syscall"

	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/pkg/errors"
	"golang.org/x/net/trace"
)

var ErrPortInUse = errors.New("port in use")

// ServerState is the lifecycle state of a Server.
type ServerState int

const (
	Stopped ServerState = iota
	Listening
)

func (s ServerState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Listening:
		return "listening"
	}
	return "bad state"
}

// Server runs an http.Server for a handler, bound according to a Config.
type Server struct {
	cfg  *Config
	http *http.Server

	mu       sync.Mutex
	state    ServerState
	listener net.Listener
}

// NewServer wraps h with request tracing, panic recovery and, if
// cfg.AccessLog is set, access logging.
func NewServer(cfg *Config, h http.Handler) *Server {
	h = traced(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(glogRecoveryLogger{}),
		handlers.PrintRecoveryStack(true),
	)(h)
	if cfg.AccessLog != nil {
		h = handlers.CombinedLoggingHandler(cfg.AccessLog, h)
	}
	return &Server{
		cfg: cfg,
		http: &http.Server{
			Handler:      h,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

func (s *Server) State() ServerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Addr is the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// RegisterOnShutdown arranges for f to run when the server starts shutting
// down, e.g. to close hijacked connections.
func (s *Server) RegisterOnShutdown(f func()) {
	s.http.RegisterOnShutdown(f)
}

// Listen binds the configured address and moves the server to Listening.
func (s *Server) Listen() error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Listening {
		return errors.New("already listening")
	}
	addr := s.cfg.Address()
	l, err := net.Listen("tcp", addr)
	if errors.Is(err, syscall.EADDRINUSE) {
		return errors.Wrapf(ErrPortInUse, "listening on %s", addr)
	} else if err != nil {
		return errors.Wrapf(err, "listening on %s", addr)
	}
	s.listener = l
	s.state = Listening
	glog.Infof("listening on %s", l.Addr())
	return nil
}

// Serve handles connections until ctx is done, then shuts down gracefully,
// waiting at most Config.ShutdownTimeout for requests in flight. Listen must
// have succeeded.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l == nil {
		return errors.New("serve called before listen")
	}

	errc := make(chan error, 1)
	go func() {
		errc <- s.http.Serve(l)
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "serving")
	case <-ctx.Done():
	}

	glog.Infof("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(sctx); err != nil {
		return errors.Wrap(err, "shutting down")
	}
	if err := <-errc; err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "serving")
	}
	return nil
}

// traced records each request in x/net/trace, visible at /debug/requests.
func traced(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tr := trace.New("cards.web", r.Method+" "+r.URL.Path)
		defer tr.Finish()
		tr.LazyPrintf("from %s", r.RemoteAddr)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		tr.LazyPrintf("status %d", sw.status)
		if sw.status >= http.StatusInternalServerError {
			tr.SetError()
		}
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack passes through so websockets keep working behind the tracer.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("connection cannot be hijacked")
	}
	w.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// GlogWriter sends each written line to glog at info level.
type GlogWriter struct{}

func (GlogWriter) Write(p []byte) (int, error) {
	glog.Info(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

type glogRecoveryLogger struct{}

func (glogRecoveryLogger) Println(v ...interface{}) {
	glog.Error(v...)
}
