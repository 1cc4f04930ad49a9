// File: internal/bench/sweep.go
// License: Apache-2.0
//
// YAML-driven experiment sweeps: a plan lists message-size and
// thread-count combinations to run back to back against running
// servers, emitting one RESULT line per experiment.

package bench

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Plan is the top-level sweep file.
type Plan struct {
	// Host applies to every experiment unless overridden per entry.
	Host        string       `yaml:"host"`
	Experiments []Experiment `yaml:"experiments"`
}

// Experiment is one benchmark run. Port selects which server process
// (and therefore which send strategy) the run talks to; Strategy is
// the label recorded in the RESULT line.
type Experiment struct {
	Strategy  string `yaml:"strategy"`
	Host      string `yaml:"host,omitempty"`
	Port      int    `yaml:"port"`
	MsgSize   int    `yaml:"msg_size"`
	Threads   int    `yaml:"threads"`
	DurationS int    `yaml:"duration_s"`
}

// LoadPlan reads and validates a sweep plan file.
func LoadPlan(path string) (*Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	var p Plan
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if len(p.Experiments) == 0 {
		return nil, fmt.Errorf("plan %s lists no experiments", path)
	}
	if p.Host == "" {
		p.Host = "127.0.0.1"
	}
	for i := range p.Experiments {
		e := &p.Experiments[i]
		if e.Host == "" {
			e.Host = p.Host
		}
		if e.DurationS <= 0 {
			e.DurationS = 10
		}
		if e.Port <= 0 || e.Port > 65535 {
			return nil, fmt.Errorf("experiment %d: invalid port %d", i, e.Port)
		}
	}
	return &p, nil
}

// Run executes the plan sequentially. A failing experiment is logged
// and skipped; the remaining entries still run.
func (p *Plan) Run(w io.Writer, log *zap.Logger) error {
	var failed int
	for i, e := range p.Experiments {
		agg, err := Run(Options{
			Host:     e.Host,
			Port:     e.Port,
			MsgSize:  e.MsgSize,
			Threads:  e.Threads,
			Duration: time.Duration(e.DurationS) * time.Second,
			Strategy: e.Strategy,
		}, log.With(zap.Int("experiment", i)))
		if err != nil {
			failed++
			log.Error("experiment failed", zap.Int("experiment", i), zap.Error(err))
			continue
		}
		if err := Emit(w, agg); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d experiments failed", failed, len(p.Experiments))
	}
	return nil
}
