// File: internal/sendstrat/sendstrat.go
// License: Apache-2.0
//
// Transmission strategy selection. Each strategy trades copy work for
// bookkeeping: two_copy stages every field into one buffer, writev
// hands the kernel a descriptor per field, zerocopy additionally asks
// the kernel to pin the field pages and signal completion out of band.

package sendstrat

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"

	"go.uber.org/zap"

	"github.com/sendpath/sendpath/api"
	"github.com/sendpath/sendpath/internal/message"
)

// Strategy labels, as they appear in flags, logs and RESULT lines.
const (
	TwoCopy  = "two_copy"
	Vectored = "writev"
	ZeroCopy = "zerocopy"
)

// Names lists the selectable strategies.
func Names() []string { return []string{TwoCopy, Vectored, ZeroCopy} }

// New builds a per-connection sender for the named strategy, bound to
// conn and msg for the lifetime of the connection.
func New(name string, conn *net.TCPConn, msg *message.Message, log *zap.Logger) (api.Sender, error) {
	switch name {
	case TwoCopy:
		return newTwoCopy(conn, msg), nil
	case Vectored:
		return newVectored(conn, msg), nil
	case ZeroCopy:
		return newZeroCopy(conn, msg, log)
	default:
		return nil, fmt.Errorf("unknown strategy %q (have %v)", name, Names())
	}
}

// classify maps peer-disconnect errors onto api.ErrClosed so handler
// loops can tell an ordinary hangup from a real failure.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) {
		return api.ErrClosed
	}
	return err
}

// advance trims n consumed bytes from the front of a descriptor
// vector after a short gathering send.
func advance(vec [][]byte, n int) [][]byte {
	for n > 0 && len(vec) > 0 {
		if n < len(vec[0]) {
			vec[0] = vec[0][n:]
			break
		}
		n -= len(vec[0])
		vec = vec[1:]
	}
	return vec
}
