//go:build linux

// File: internal/affinity/affinity_linux.go
// License: Apache-2.0

package affinity

import "golang.org/x/sys/unix"

// pin binds the current thread to one logical CPU.
func pin(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
