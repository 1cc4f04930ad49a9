// File: internal/sendstrat/completion_linux.go
//go:build linux

// License: Apache-2.0
//
// Outstanding zero-copy send accounting. The kernel numbers MSG_ZEROCOPY
// sends per socket starting at zero and acknowledges contiguous [lo,hi]
// ranges through the error queue; the pending queue mirrors that
// numbering on the application side.

package sendstrat

import (
	"time"

	"github.com/eapache/queue"
)

type completions struct {
	raw     rawSock
	pending *queue.Queue // sequence numbers of unacknowledged sends
	next    uint32
}

func newCompletions(raw rawSock) *completions {
	return &completions{raw: raw, pending: queue.New()}
}

// expect records that one more zero-copy send is outstanding.
func (c *completions) expect() {
	c.pending.Add(c.next)
	c.next++
}

// outstanding reports how many sends still await acknowledgement.
func (c *completions) outstanding() int { return c.pending.Length() }

// drain consumes every currently available completion notification
// without blocking and returns how many sends were acknowledged.
func (c *completions) drain() (int, error) {
	acked := 0
	defer func() {
		// Count on every exit path, including error-queue failures.
		if acked > 0 {
			completionsTotal.Add(acked)
		}
	}()
	for {
		lo, hi, ok, err := c.raw.NextCompletion()
		if err != nil {
			return acked, err
		}
		if !ok {
			return acked, nil
		}
		// The range is inclusive; hi may wrap around zero.
		for seq := lo; ; seq++ {
			if c.pending.Length() > 0 {
				c.pending.Remove()
				acked++
			}
			if seq == hi {
				break
			}
		}
	}
}

// drainUntilProgress polls the error queue until at least one
// completion is consumed. Called only on ENOBUFS backpressure, where
// retrying the send before anything completed would fail again.
func (c *completions) drainUntilProgress() error {
	for {
		n, err := c.drain()
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		if c.pending.Length() == 0 {
			// ENOBUFS with nothing of ours outstanding: the socket
			// buffer itself is full. Let the kernel catch up.
			time.Sleep(time.Millisecond)
			return nil
		}
		time.Sleep(50 * time.Microsecond)
	}
}
