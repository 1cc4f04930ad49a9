// File: internal/affinity/affinity.go
// License: Apache-2.0

// Package affinity pins goroutine worker threads to logical CPUs so
// per-thread benchmark numbers are not smeared by migration. The
// platform implementations live behind build tags.
package affinity

import "runtime"

// Pin locks the calling goroutine to its OS thread and binds that
// thread to the logical CPU id modulo the machine's CPU count. The
// caller owns the thread until it exits; there is no unpin.
func Pin(id int) error {
	runtime.LockOSThread()
	return pin(id % runtime.NumCPU())
}
