// File: internal/sendstrat/zerocopy_linux.go
//go:build linux

// License: Apache-2.0
//
// Zero-copy path: SO_ZEROCOPY plus sendmsg(MSG_ZEROCOPY). The kernel
// pins the field pages and the device reads them directly, so every
// send leaves a buffer outstanding until a completion notification is
// read back from the socket error queue. Completions are drained every
// drainInterval sends, synchronously on ENOBUFS backpressure, and once
// more on teardown.

package sendstrat

import (
	"errors"
	"net"

	"github.com/VictoriaMetrics/metrics"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/sendpath/sendpath/api"
	"github.com/sendpath/sendpath/internal/message"
)

// drainInterval is how many successful sends pass between non-blocking
// completion drains. Must be a power of two.
const drainInterval = 64

var (
	backpressureTotal = metrics.GetOrCreateCounter(`sendpath_zerocopy_backpressure_total`)
	completionsTotal  = metrics.GetOrCreateCounter(`sendpath_zerocopy_completions_total`)
)

// rawSock is the raw-socket surface the zero-copy sender needs. The
// production implementation wraps a TCP connection's syscall.RawConn;
// tests substitute a scripted fake.
type rawSock interface {
	// SendBuffers gathers bufs into the socket in one sendmsg call,
	// waiting for writability as needed. flags is OR-ed into the call.
	// Returns api.ErrBackpressure when too many zero-copy buffers are
	// still outstanding.
	SendBuffers(bufs [][]byte, flags int) (int, error)

	// NextCompletion returns one zero-copy completion range from the
	// error queue without blocking. ok is false when none is pending.
	NextCompletion() (lo, hi uint32, ok bool, err error)

	// SetZeroCopy enables SO_ZEROCOPY on the socket.
	SetZeroCopy() error
}

type zeroCopySender struct {
	raw      rawSock
	msg      *message.Message
	comp     *completions
	scratch  [][]byte
	sends    uint64
	fallback api.Sender // non-nil when SO_ZEROCOPY was refused
	log      *zap.Logger
}

func newZeroCopy(conn *net.TCPConn, msg *message.Message, log *zap.Logger) (api.Sender, error) {
	rc, err := conn.SyscallConn()
	if err != nil {
		return nil, err
	}
	return newZeroCopyWithRaw(&tcpRaw{rc: rc}, conn, msg, log), nil
}

// newZeroCopyWithRaw is the injection point for tests.
func newZeroCopyWithRaw(raw rawSock, conn net.Conn, msg *message.Message, log *zap.Logger) api.Sender {
	s := &zeroCopySender{
		raw:     raw,
		msg:     msg,
		comp:    newCompletions(raw),
		scratch: make([][]byte, 0, len(msg.Fields())),
		log:     log,
	}
	if err := raw.SetZeroCopy(); err != nil {
		log.Warn("zero-copy unsupported on this socket, degrading to vectored send",
			zap.Error(err))
		s.fallback = newVectored(conn, msg)
	}
	return s
}

func (s *zeroCopySender) Name() string { return ZeroCopy }

func (s *zeroCopySender) Send() (int, error) {
	if s.fallback != nil {
		return s.fallback.Send()
	}
	total := s.msg.Size()
	sent := 0
	s.scratch = append(s.scratch[:0], s.msg.Fields()...)
	vec := s.scratch
	for sent < total {
		n, err := s.raw.SendBuffers(vec, unix.MSG_ZEROCOPY)
		switch {
		case err == nil:
			s.comp.expect()
			sent += n
			vec = advance(vec, n)
		case errors.Is(err, api.ErrBackpressure):
			// Backpressure, not failure: too many pinned buffers are
			// still outstanding. Drain until some complete, retry.
			backpressureTotal.Inc()
			if derr := s.comp.drainUntilProgress(); derr != nil {
				return sent, classify(derr)
			}
		default:
			return sent, classify(err)
		}
	}
	s.sends++
	if s.sends&(drainInterval-1) == 0 {
		if _, err := s.comp.drain(); err != nil {
			return sent, classify(err)
		}
	}
	return sent, nil
}

func (s *zeroCopySender) Close() error {
	if s.fallback != nil {
		return s.fallback.Close()
	}
	// Final pass so stale notifications do not outlive the socket.
	drained, err := s.comp.drain()
	if out := s.comp.outstanding(); out > 0 {
		s.log.Debug("closing with zero-copy sends still outstanding",
			zap.Int("outstanding", out), zap.Int("drained", drained))
	}
	return err
}
