// File: api/errors.go
// License: Apache-2.0
//
// Common error values shared across the sendpath packages.

package api

import "errors"

var (
	// ErrClosed reports that the peer closed the connection. Senders and
	// receivers translate EOF, EPIPE and ECONNRESET into this value so
	// callers can end their loop without treating it as a failure.
	ErrClosed = errors.New("connection closed by peer")

	// ErrBackpressure reports that too many zero-copy buffers are still
	// pinned by the kernel. It is transient: drain completions and retry.
	ErrBackpressure = errors.New("zero-copy buffers exhausted")

	// ErrNotSupported reports that a requested socket or platform
	// facility is not available here.
	ErrNotSupported = errors.New("not supported")

	// ErrInvalidSize reports a message size that cannot be split into the
	// configured number of fields.
	ErrInvalidSize = errors.New("message size smaller than field count")
)
