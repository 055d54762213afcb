// Package replay runs scripted gestures against a picker column on a
// fixed-step clock, producing deterministic traces for plotting,
// regression tests and tuning comparisons.
package replay

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/whirl/internal/config"
	"github.com/san-kum/whirl/internal/lifecycle"
	"github.com/san-kum/whirl/internal/wheel"
)

// Runner owns one column and one lifecycle machine and drives them
// frame by frame. Not safe for concurrent use.
type Runner struct {
	column  *wheel.Column
	machine *lifecycle.Machine
	metrics []Metric
	obs     []Observer
	logger  *zap.Logger

	now     time.Time
	events  []wheel.Event
	closes  []lifecycle.CloseInfo
	commits []Commit
}

func NewRunner(cfg *config.Config, key string, options []string, selected int, logger *zap.Logger) *Runner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Runner{logger: logger}
	r.column = wheel.NewColumn(cfg.Column(key, options, selected),
		func(ev wheel.Event) {
			r.events = append(r.events, ev)
			if lev, ok := lifecycle.FromGesture(ev); ok {
				r.machine.Handle(lev, r.now)
			}
		},
		func(key, value string) bool {
			r.commits = append(r.commits, Commit{Key: key, Value: value})
			return true
		},
		logger)
	r.machine = lifecycle.New(cfg.Lifecycle(), func(info lifecycle.CloseInfo) {
		r.closes = append(r.closes, info)
		r.column.SetOpen(false)
	}, logger)
	return r
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.obs = append(r.obs, o) }

// Run plays the script to completion: every action applied, the column
// quiescent and the session closed, or the duration cap reached.
func (r *Runner) Run(ctx context.Context, script Script, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	start := time.Unix(1, 0)
	r.now = start
	r.events = nil
	r.closes = nil
	r.commits = nil
	for _, m := range r.metrics {
		m.Reset()
	}

	result := &Result{Metrics: make(map[string]float64)}
	next := 0

	for elapsed := time.Duration(0); elapsed <= cfg.MaxDuration; elapsed += cfg.Dt {
		select {
		case <-ctx.Done():
			r.finish(result)
			return result, ctx.Err()
		default:
		}

		r.now = start.Add(elapsed)
		for next < len(script.Actions) && script.Actions[next].At <= elapsed {
			r.apply(script.Actions[next])
			next++
		}

		r.column.Tick(r.now)
		r.machine.Tick(r.now)

		t := elapsed.Seconds()
		pos := r.column.Position()
		vel := r.column.TrackedVelocity()

		for _, m := range r.metrics {
			m.Observe(pos, vel, t)
		}
		for _, o := range r.obs {
			o.OnFrame(pos, vel, t)
		}

		result.Times = append(result.Times, t)
		result.Positions = append(result.Positions, pos)
		result.Velocities = append(result.Velocities, vel)
		result.Frames++

		if next == len(script.Actions) && r.quiescent() {
			break
		}
	}

	r.finish(result)
	return result, nil
}

func (r *Runner) apply(a Action) {
	switch a.Kind {
	case ActionPointerDown:
		r.column.PointerDown(a.Y, a.Pointer, r.now)
	case ActionPointerMove:
		r.column.PointerMove(a.Y, r.now)
	case ActionPointerUp:
		r.column.PointerUp(r.now)
	case ActionWheel:
		r.column.Wheel(a.Delta, r.now)
	case ActionKey:
		r.column.KeyPress(a.Key, r.now)
	}
}

func (r *Runner) quiescent() bool {
	return !r.column.Dragging() &&
		!r.column.WheelActive() &&
		!r.column.Settling() &&
		r.machine.State() == lifecycle.StateClosed
}

func (r *Runner) finish(result *Result) {
	result.Events = r.events
	result.Closes = r.closes
	result.Commits = r.commits
	result.FinalIndex = r.column.CenterIndex()
	result.FinalValue = r.column.Value()
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	r.logger.Debug("replay finished",
		zap.Int("frames", result.Frames),
		zap.Int("final_index", result.FinalIndex),
		zap.Int("events", len(result.Events)))
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %v", cfg.Dt)
	}
	if cfg.MaxDuration <= 0 {
		return fmt.Errorf("max duration must be positive, got %v", cfg.MaxDuration)
	}
	return nil
}
