// File: internal/bench/coordinator.go
// License: Apache-2.0
//
// Client-side benchmark coordinator: spawns the configured number of
// receive streams, joins them, and folds the per-thread records into
// one aggregate.

package bench

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sendpath/sendpath/api"
	"github.com/sendpath/sendpath/internal/message"
)

// Options configures one benchmark run.
type Options struct {
	Host     string
	Port     int
	MsgSize  int
	Threads  int
	Duration time.Duration
	Fields   int
	Strategy string // label for the RESULT line; the server picks the actual path
	Pin      bool   // pin each receive stream's thread to a CPU
}

// Validate normalizes the options, truncating the message size the
// same way the server does so both ends agree on the wire unit.
func (o *Options) Validate() error {
	if o.Fields <= 0 {
		o.Fields = message.DefaultFields
	}
	size := message.Truncate(o.MsgSize, o.Fields)
	if size == 0 {
		return fmt.Errorf("message size %d with %d fields: too small", o.MsgSize, o.Fields)
	}
	o.MsgSize = size
	if o.Threads <= 0 {
		return fmt.Errorf("thread count must be positive, got %d", o.Threads)
	}
	if o.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", o.Duration)
	}
	return nil
}

// Run spawns the receive streams concurrently, joins them, and
// aggregates. Failed threads are counted but do not suppress the
// summary.
func Run(opts Options, log *zap.Logger) (api.AggregateResult, error) {
	if err := opts.Validate(); err != nil {
		return api.AggregateResult{}, err
	}
	addr := net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))
	log.Info("benchmark starting",
		zap.String("strategy", opts.Strategy),
		zap.String("server", addr),
		zap.Int("msg_size", opts.MsgSize),
		zap.Int("threads", opts.Threads),
		zap.Duration("duration", opts.Duration))

	results := make([]api.ThreadResult, opts.Threads)
	var wg sync.WaitGroup
	for i := 0; i < opts.Threads; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			results[id] = Receive(ReceiverConfig{
				Addr:     addr,
				MsgSize:  opts.MsgSize,
				Duration: opts.Duration,
				ThreadID: id,
				Pin:      opts.Pin,
			}, log)
		}(i)
	}
	wg.Wait()

	agg := Aggregate(results, opts)
	log.Info("benchmark finished",
		zap.Int64("total_bytes", agg.Bytes),
		zap.Int64("total_msgs", agg.Messages),
		zap.Int("failed_threads", agg.Failed),
		zap.Float64("throughput_gbps", agg.ThroughputGbps()),
		zap.Float64("avg_latency_us", agg.AvgLatencyMicros()))
	return agg, nil
}

// Aggregate folds joined per-thread records into one result.
func Aggregate(results []api.ThreadResult, opts Options) api.AggregateResult {
	agg := api.AggregateResult{
		Strategy: opts.Strategy,
		MsgSize:  opts.MsgSize,
		Threads:  len(results),
		Duration: opts.Duration,
	}
	for _, r := range results {
		if r.Err != nil {
			agg.Failed++
		}
		agg.Bytes += r.Bytes
		agg.Messages += r.Messages
		agg.Latency += r.Latency
	}
	return agg
}

// Emit writes the machine-parseable RESULT line to w (stdout in the
// CLI; diagnostics go to the logger instead).
func Emit(w io.Writer, agg api.AggregateResult) error {
	_, err := fmt.Fprintln(w, agg.CSV())
	return err
}
