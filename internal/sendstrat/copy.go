// File: internal/sendstrat/copy.go
// License: Apache-2.0
//
// Two-copy baseline: serialize all fields into one staging buffer
// (copy #1), then a blocking send that the transport copies into the
// socket buffer (copy #2).

package sendstrat

import (
	"net"

	"github.com/sendpath/sendpath/internal/message"
)

type twoCopySender struct {
	conn    net.Conn
	msg     *message.Message
	staging []byte
}

func newTwoCopy(conn net.Conn, msg *message.Message) *twoCopySender {
	return &twoCopySender{
		conn:    conn,
		msg:     msg,
		staging: make([]byte, msg.Size()),
	}
}

func (s *twoCopySender) Name() string { return TwoCopy }

func (s *twoCopySender) Send() (int, error) {
	s.msg.Serialize(s.staging)
	// net.Conn.Write resumes short writes internally, so a nil error
	// means the full message went out.
	n, err := s.conn.Write(s.staging)
	if err != nil {
		return n, classify(err)
	}
	return n, nil
}

func (s *twoCopySender) Close() error { return nil }
