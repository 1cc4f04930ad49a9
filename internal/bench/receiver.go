// File: internal/bench/receiver.go
// License: Apache-2.0
//
// One receive stream of the client: a duration-bound loop of
// full-message reads with per-message latency accounting.

package bench

import (
	"errors"
	"io"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/sendpath/sendpath/api"
	"github.com/sendpath/sendpath/internal/affinity"
	"github.com/sendpath/sendpath/internal/sockopt"
)

// ReceiverConfig describes one receive stream.
type ReceiverConfig struct {
	Addr     string // host:port of the benchmark server
	MsgSize  int
	Duration time.Duration
	ThreadID int
	Pin      bool // bind this stream's thread to a CPU
}

// Receive connects, reads whole messages until the duration elapses or
// the peer goes away, and returns the thread's measurements. The result
// is owned by the calling goroutine until it is joined.
func Receive(cfg ReceiverConfig, log *zap.Logger) api.ThreadResult {
	res := api.ThreadResult{ThreadID: cfg.ThreadID}

	if cfg.Pin {
		if err := affinity.Pin(cfg.ThreadID); err != nil {
			log.Warn("could not pin thread", zap.Int("thread", cfg.ThreadID), zap.Error(err))
		}
	}

	conn, err := net.Dial("tcp", cfg.Addr)
	if err != nil {
		res.Err = err
		return res
	}
	defer conn.Close()
	if err := sockopt.TuneClientConn(conn); err != nil {
		log.Warn("could not disable nagle", zap.Error(err))
	}

	buf := make([]byte, cfg.MsgSize)
	start := time.Now()
	deadline := start.Add(cfg.Duration)

	for time.Now().Before(deadline) {
		msgStart := time.Now()
		// io.ReadFull loops over partial reads until the full message
		// size arrived or the connection closed/errored.
		if _, err := io.ReadFull(conn, buf); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				res.Err = err
			}
			break
		}
		res.Latency += time.Since(msgStart)
		res.Bytes += int64(cfg.MsgSize)
		res.Messages++
	}

	elapsed := time.Since(start).Seconds()
	avgLat := 0.0
	if res.Messages > 0 {
		avgLat = float64(res.Latency.Microseconds()) / float64(res.Messages)
	}
	gbps := 0.0
	if elapsed > 0 {
		gbps = float64(res.Bytes) * 8.0 / (elapsed * 1e9)
	}
	log.Info("thread finished",
		zap.Int("thread", cfg.ThreadID),
		zap.Int64("messages", res.Messages),
		zap.Float64("mb", float64(res.Bytes)/(1024.0*1024.0)),
		zap.Float64("gbps", gbps),
		zap.Float64("avg_lat_us", avgLat))
	return res
}
