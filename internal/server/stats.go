// File: internal/server/stats.go
// License: Apache-2.0
//
// Operational counters and the once-per-second reporter.

package server

import (
	"context"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"go.uber.org/zap"
)

var (
	acceptedTotal = metrics.GetOrCreateCounter(`sendpath_server_connections_accepted_total`)
	messagesTotal = metrics.GetOrCreateCounter(`sendpath_server_messages_sent_total`)
	bytesTotal    = metrics.GetOrCreateCounter(`sendpath_server_bytes_sent_total`)
)

// reportLoop logs per-second deltas of the send counters until ctx is
// cancelled. Progress text goes through the logger (stderr), keeping
// stdout free for machine-parseable output.
func (s *Server) reportLoop(ctx context.Context) {
	t := time.NewTicker(time.Second)
	defer t.Stop()

	lastMsgs := messagesTotal.Get()
	lastBytes := bytesTotal.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			msgs := messagesTotal.Get()
			bytes := bytesTotal.Get()
			s.log.Info("stats",
				zap.Int("active_conns", s.handlers.Size()),
				zap.Uint64("msgs_per_s", msgs-lastMsgs),
				zap.Uint64("bytes_per_s", bytes-lastBytes))
			lastMsgs, lastBytes = msgs, bytes
		}
	}
}
