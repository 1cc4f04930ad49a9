// File: internal/stress/stress.go
// License: Apache-2.0
//
// Resource stress workers: a standalone demo of concurrent CPU-,
// memory-, and I/O-bound work, independent of the networking core.
// Each worker runs a fixed iteration count; the runner reports
// per-worker and total wall time.

package stress

import (
	"fmt"
	"math"
	"os"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Kind selects which resource a worker stresses.
type Kind string

const (
	CPU    Kind = "cpu"
	Memory Kind = "mem"
	IO     Kind = "io"
)

// DefaultIterations matches the original demo's loop count.
const DefaultIterations = 7000

// Kinds lists the selectable worker kinds.
func Kinds() []Kind { return []Kind{CPU, Memory, IO} }

// sink defeats dead-code elimination of the computation loops.
var sink float64

// Run executes workers concurrent goroutines of the given kind and
// joins them. A worker failure is logged and counted, not fatal.
func Run(kind Kind, workers, iterations int, log *zap.Logger) error {
	if workers <= 0 {
		return fmt.Errorf("worker count must be positive, got %d", workers)
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	log.Info("stress run starting",
		zap.String("kind", string(kind)),
		zap.Int("workers", workers),
		zap.Int("iterations", iterations))

	errs := make([]error, workers)
	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			wStart := time.Now()
			switch kind {
			case CPU:
				cpuWorker(iterations)
			case Memory:
				memWorker(iterations)
			case IO:
				errs[id] = ioWorker(id, iterations)
			default:
				errs[id] = fmt.Errorf("unknown worker kind %q", kind)
			}
			log.Info("worker finished",
				zap.Int("worker", id),
				zap.Duration("elapsed", time.Since(wStart)))
		}(i)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
			log.Error("worker failed", zap.Error(err))
		}
	}
	log.Info("stress run finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%d of %d workers failed", failed, workers)
	}
	return nil
}

// cpuWorker burns cycles on transcendental math.
func cpuWorker(iterations int) {
	var result float64
	for i := 1; i <= iterations; i++ {
		f := float64(i)
		temp := math.Sin(f) + math.Cos(f) + math.Tan(f/1000.0)
		temp += math.Atan(f)
		temp += math.Pow(f, 2.5) + math.Pow(f, 1.5)
		temp /= math.Pow(f+1, 0.5)
		temp += math.Sqrt(f*1.5) + math.Sqrt(f*f+1)
		temp += math.Log(f+1) + math.Log10(f+1)
		temp += math.Exp(f / float64(iterations))
		result += temp / (f + 1)
	}
	sink = result
}

// memWorker allocates, fills, strides, sorts and copies a large array
// per iteration to keep the memory subsystem busy.
func memWorker(iterations int) {
	const arraySize = 256 * 1024 // 1 MiB of ints per iteration
	var checksum int64
	for i := 0; i < iterations; i++ {
		arr := make([]int, arraySize)
		for j := range arr {
			arr[j] = (i*arraySize + j) % 1000000
		}
		for j := 0; j < arraySize; j += 64 { // cache-line stride
			checksum += int64(arr[j])
		}
		sort.Ints(arr)
		cp := make([]int, arraySize)
		copy(cp, arr)
		for j := 0; j < arraySize; j += 128 {
			checksum += int64(cp[j])
		}
	}
	sink = float64(checksum)
}

// ioWorker writes and reads back 1 MiB per iteration against a
// per-worker temp file, removed on exit.
func ioWorker(id, iterations int) error {
	f, err := os.CreateTemp("", fmt.Sprintf("sendpath_io_%d_*.dat", id))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)
	defer f.Close()

	const blockSize = 64 * 1024
	block := make([]byte, blockSize)
	for i := range block {
		block[i] = byte(i % 256)
	}

	for i := 0; i < iterations; i++ {
		if _, err := f.Seek(0, 0); err != nil {
			return err
		}
		for j := 0; j < 16; j++ { // 1 MiB per iteration
			if _, err := f.Write(block); err != nil {
				return fmt.Errorf("write iteration %d: %w", i, err)
			}
		}
		if err := f.Sync(); err != nil {
			return err
		}
		if _, err := f.Seek(0, 0); err != nil {
			return err
		}
		for j := 0; j < 16; j++ {
			if _, err := f.Read(block); err != nil {
				return fmt.Errorf("read iteration %d: %w", i, err)
			}
		}
	}
	return nil
}
