// File: internal/server/server.go
// License: Apache-2.0
//
// Accept loop of the benchmark server. Every accepted connection gets
// its own detached handler goroutine; the only state shared with the
// loop is the cancellation context and the handler registry used to
// force sockets closed at shutdown. Handlers are not joined: shutdown
// is best-effort, not a clean drain.

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"github.com/sendpath/sendpath/internal/message"
	"github.com/sendpath/sendpath/internal/sendstrat"
	"github.com/sendpath/sendpath/internal/sockopt"
)

// Config carries the validated server parameters.
type Config struct {
	Port     int
	MsgSize  int
	Fields   int
	Strategy string
}

type Server struct {
	cfg      Config
	log      *zap.Logger
	ln       net.Listener
	handlers *xsync.MapOf[uint64, *handler]
	nextID   atomic.Uint64
}

// New validates cfg and binds the listening socket with address and
// port reuse enabled. Configuration errors surface here, before any
// connection work begins.
func New(cfg Config, log *zap.Logger) (*Server, error) {
	if cfg.Fields <= 0 {
		cfg.Fields = message.DefaultFields
	}
	size := message.Truncate(cfg.MsgSize, cfg.Fields)
	if size == 0 {
		return nil, fmt.Errorf("message size %d with %d fields: too small", cfg.MsgSize, cfg.Fields)
	}
	if size != cfg.MsgSize {
		log.Warn("message size truncated to field multiple",
			zap.Int("requested", cfg.MsgSize), zap.Int("effective", size))
		cfg.MsgSize = size
	}
	valid := false
	for _, n := range sendstrat.Names() {
		if n == cfg.Strategy {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("unknown strategy %q (have %v)", cfg.Strategy, sendstrat.Names())
	}

	lc := sockopt.ListenConfig()
	ln, err := lc.Listen(context.Background(), "tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", cfg.Port, err)
	}

	log.Info("server listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("strategy", cfg.Strategy),
		zap.Int("msg_size", cfg.MsgSize),
		zap.Int("field_size", cfg.MsgSize/cfg.Fields))

	return &Server{
		cfg:      cfg,
		log:      log,
		ln:       ln,
		handlers: xsync.NewMapOf[uint64, *handler](),
	}, nil
}

// Addr returns the bound listener address (useful with Port 0).
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Serve accepts and dispatches connections until ctx is cancelled.
// Cancellation closes the listener to unblock Accept, then the sockets
// of still-running handlers are force-closed.
func (s *Server) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { s.ln.Close() })
	defer stop()
	defer s.closeAll()

	go s.reportLoop(ctx)

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.log.Info("accept loop stopped")
				return nil
			}
			s.log.Warn("accept failed", zap.Error(err))
			continue
		}
		acceptedTotal.Inc()
		id := s.nextID.Add(1)
		h := newHandler(id, conn.(*net.TCPConn), s.cfg, s.log)
		s.handlers.Store(id, h)
		go func() {
			defer s.handlers.Delete(id)
			h.run(ctx)
		}()
	}
}

// closeAll force-closes handler sockets so in-flight sends fail fast
// and shutdown completes in bounded time.
func (s *Server) closeAll() {
	s.handlers.Range(func(id uint64, h *handler) bool {
		h.conn.Close()
		return true
	})
}
