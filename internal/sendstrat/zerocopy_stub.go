// File: internal/sendstrat/zerocopy_stub.go
//go:build !linux

// License: Apache-2.0
//
// MSG_ZEROCOPY is a Linux facility. Elsewhere the zerocopy strategy
// degrades to the vectored path with a one-time warning so benchmark
// runs still complete.

package sendstrat

import (
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/sendpath/sendpath/api"
	"github.com/sendpath/sendpath/internal/message"
)

var zcWarnOnce sync.Once

func newZeroCopy(conn *net.TCPConn, msg *message.Message, log *zap.Logger) (api.Sender, error) {
	zcWarnOnce.Do(func() {
		log.Warn("zero-copy not supported on this platform, degrading to vectored send")
	})
	return newVectored(conn, msg), nil
}
