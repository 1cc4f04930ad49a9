// File: internal/sockopt/sockopt_stub.go
//go:build !linux

// License: Apache-2.0

package sockopt

import "syscall"

// Non-Linux platforms keep the stdlib listener defaults.
func reuseControl(network, address string, c syscall.RawConn) error {
	return nil
}
