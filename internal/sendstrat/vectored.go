// File: internal/sendstrat/vectored.go
// License: Apache-2.0
//
// Scatter-gather path: one descriptor per field, one gathering send,
// no staging copy. The transport assembles the descriptors directly
// into its buffer.

package sendstrat

import (
	"net"

	"github.com/sendpath/sendpath/internal/message"
)

type vectoredSender struct {
	conn    net.Conn
	msg     *message.Message
	scratch [][]byte
}

func newVectored(conn net.Conn, msg *message.Message) *vectoredSender {
	return &vectoredSender{
		conn:    conn,
		msg:     msg,
		scratch: make([][]byte, 0, len(msg.Fields())),
	}
}

func (s *vectoredSender) Name() string { return Vectored }

func (s *vectoredSender) Send() (int, error) {
	// net.Buffers consumes its descriptor vector as it writes, so the
	// vector is rebuilt from the field buffers on every send.
	s.scratch = append(s.scratch[:0], s.msg.Fields()...)
	bufs := net.Buffers(s.scratch)
	n, err := bufs.WriteTo(s.conn)
	if err != nil {
		return int(n), classify(err)
	}
	return int(n), nil
}

func (s *vectoredSender) Close() error { return nil }
