// File: internal/sockopt/sockopt.go
// License: Apache-2.0
//
// Socket option plumbing shared by the server and client sides.
// Platform-specific option setting lives in the _linux/_stub files.

package sockopt

import (
	"fmt"
	"net"

	"github.com/sendpath/sendpath/api"
)

// ListenConfig returns a listener configuration with address and port
// reuse enabled where the platform supports it, so a benchmark server
// can be restarted immediately after shutdown.
func ListenConfig() net.ListenConfig {
	return net.ListenConfig{Control: reuseControl}
}

// TuneClientConn disables Nagle coalescing on an outgoing benchmark
// connection so per-message latency is measured, not batching delay.
func TuneClientConn(conn net.Conn) error {
	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		return fmt.Errorf("%w: cannot tune %T", api.ErrNotSupported, conn)
	}
	return tcp.SetNoDelay(true)
}
