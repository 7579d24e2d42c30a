package tabdbwire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/tuannm99/tabdb/internal/sql/executor"
)

// Server speaks the frame protocol over TCP. Each connection owns one
// Session, so USE <db> is connection-scoped. Commands from all connections
// run one at a time: the store does no locking of its own.
type Server struct {
	ex  *executor.Executor
	log *slog.Logger

	mu sync.Mutex
	wg conc.WaitGroup
}

func NewServer(ex *executor.Executor, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{ex: ex, log: log}
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then closes every
// open connection and waits for its handler to return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer func() { _ = ln.Close() }()
	s.log.Info("tabdbwire: listening", "addr", ln.Addr().String())

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	var acceptErr error
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if errors.Is(err, net.ErrClosed) {
				acceptErr = err
				break
			}
			s.log.Warn("tabdbwire: accept", "err", err)
			continue
		}
		s.wg.Go(func() { s.ServeConn(ctx, conn) })
	}

	if r := s.wg.WaitAndRecover(); r != nil {
		s.log.Error("tabdbwire: connection handler panicked", "panic", r.Value)
	}
	return acceptErr
}

// ServeConn runs the request loop for one connection until the peer goes
// away or ctx is cancelled.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	// No global deadline; the client sets per-request deadlines.
	_ = conn.SetDeadline(time.Time{})

	sess := executor.NewSession()
	log := s.log.With("session", sess.ID, "remote", conn.RemoteAddr().String())
	log.Debug("tabdbwire: session opened")
	defer log.Debug("tabdbwire: session closed")

	for {
		var req ExecuteRequest
		if err := ReadFrame(conn, &req); err != nil {
			// Client closed or bad frame.
			return
		}

		resp := ExecuteResponse{ID: req.ID, Response: s.handle(ctx, sess, req.SQL)}
		if err := WriteFrame(conn, resp); err != nil {
			log.Debug("tabdbwire: write response", "err", err)
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, sess *executor.Session, sql string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ex.Handle(ctx, sess, sql)
}
