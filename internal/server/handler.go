// File: internal/server/handler.go
// License: Apache-2.0
//
// Per-connection execution unit: ACCEPTED -> SENDING -> (CLOSED|ERROR).
// Owns one message instance for the connection's lifetime and drives
// the configured send strategy in a tight loop.

package server

import (
	"context"
	"errors"
	"net"

	"go.uber.org/zap"

	"github.com/sendpath/sendpath/api"
	"github.com/sendpath/sendpath/internal/message"
	"github.com/sendpath/sendpath/internal/sendstrat"
)

type handler struct {
	id   uint64
	conn *net.TCPConn
	cfg  Config
	log  *zap.Logger
}

func newHandler(id uint64, conn *net.TCPConn, cfg Config, log *zap.Logger) *handler {
	return &handler{
		id:   id,
		conn: conn,
		cfg:  cfg,
		log:  log.With(zap.Uint64("conn", id)),
	}
}

// run sends until shutdown, peer close, or an unrecoverable error.
// Cleanup (strategy teardown, socket close) happens on every exit path.
func (h *handler) run(ctx context.Context) {
	defer h.conn.Close()

	msg, err := message.New(h.cfg.MsgSize, h.cfg.Fields)
	if err != nil {
		// Aborts this connection only, never the server.
		h.log.Error("message allocation failed", zap.Error(err))
		return
	}
	snd, err := sendstrat.New(h.cfg.Strategy, h.conn, msg, h.log)
	if err != nil {
		h.log.Error("strategy setup failed", zap.Error(err))
		return
	}
	defer snd.Close()

	h.log.Debug("sending", zap.String("peer", h.conn.RemoteAddr().String()))
	for ctx.Err() == nil {
		n, err := snd.Send()
		if err != nil {
			if errors.Is(err, api.ErrClosed) {
				h.log.Debug("peer disconnected")
			} else {
				h.log.Warn("send failed", zap.Error(err))
			}
			return
		}
		messagesTotal.Inc()
		bytesTotal.Add(n)
	}
}
