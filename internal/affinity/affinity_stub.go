//go:build !linux

// File: internal/affinity/affinity_stub.go
// License: Apache-2.0

package affinity

import (
	"fmt"

	"github.com/sendpath/sendpath/api"
)

func pin(cpu int) error {
	return fmt.Errorf("cpu pinning: %w", api.ErrNotSupported)
}
