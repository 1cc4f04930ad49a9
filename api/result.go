// File: api/result.go
// License: Apache-2.0
//
// Measurement records produced by the client side of the benchmark.

package api

import (
	"fmt"
	"time"
)

// ThreadResult is written by exactly one receiver goroutine and read by
// the coordinator only after that goroutine finished.
type ThreadResult struct {
	ThreadID int
	Bytes    int64
	Messages int64
	Latency  time.Duration
	Err      error
}

// AggregateResult is the joined view over all receiver threads of one
// benchmark run.
type AggregateResult struct {
	Strategy string
	MsgSize  int
	Threads  int
	Failed   int
	Duration time.Duration
	Bytes    int64
	Messages int64
	Latency  time.Duration
}

// ThroughputGbps returns 8*bytes / (duration * 1e9).
func (a AggregateResult) ThroughputGbps() float64 {
	if a.Duration <= 0 {
		return 0
	}
	return float64(a.Bytes) * 8.0 / (a.Duration.Seconds() * 1e9)
}

// AvgLatencyMicros returns the mean per-message latency in microseconds.
func (a AggregateResult) AvgLatencyMicros() float64 {
	if a.Messages == 0 {
		return 0
	}
	return float64(a.Latency.Microseconds()) / float64(a.Messages)
}

// CSV renders the machine-parseable result line consumed by the
// experiment scripts:
//
//	RESULT,<strategy>,<msg_size>,<threads>,<gbps>,<avg_lat_us>,<bytes>,<msgs>
func (a AggregateResult) CSV() string {
	return fmt.Sprintf("RESULT,%s,%d,%d,%.4f,%.2f,%d,%d",
		a.Strategy, a.MsgSize, a.Threads,
		a.ThroughputGbps(), a.AvgLatencyMicros(), a.Bytes, a.Messages)
}
