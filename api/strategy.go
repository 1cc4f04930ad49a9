// File: api/strategy.go
// License: Apache-2.0
//
// Send-path abstraction. A Sender is bound to one established connection
// and one message instance; it is driven repeatedly by a connection
// handler until the peer goes away or the server shuts down.

package api

// Sender transmits one full message per call over its connection.
//
// Send returns the number of payload bytes written. Short writes are
// resumed internally; a successful call always transferred the whole
// message. Implementations map peer disconnects to ErrClosed and handle
// transient zero-copy backpressure themselves, so any error other than
// ErrClosed is unrecoverable for this connection.
type Sender interface {
	Send() (int, error)

	// Name reports the strategy label used in logs and RESULT lines.
	Name() string

	// Close releases per-connection strategy resources. For the
	// zero-copy path this performs the final completion drain.
	Close() error
}
