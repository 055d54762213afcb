package replay

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/san-kum/whirl/internal/config"
	"github.com/san-kum/whirl/internal/lifecycle"
	"github.com/san-kum/whirl/internal/metrics"
	"github.com/san-kum/whirl/internal/wheel"
)

func testOptions(n int) []string {
	opts := make([]string, n)
	for i := range opts {
		opts[i] = fmt.Sprintf("%d", i)
	}
	return opts
}

func newTestRunner() *Runner {
	return NewRunner(config.DefaultConfig(), "test", testOptions(100), 10, nil)
}

type frameCounter struct{ frames int }

func (f *frameCounter) OnFrame(pos, vel, t float64) { f.frames++ }

func TestRunDragGesture(t *testing.T) {
	r := newTestRunner()

	var script Script
	script.Drag(0, 200, 8, -25, 10*time.Millisecond, wheel.PointerTouch)

	res, err := r.Run(context.Background(), script, DefaultRunConfig())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if res.FinalIndex <= 10 {
		t.Errorf("upward drag should advance the index, got %d", res.FinalIndex)
	}
	if len(res.Commits) != 1 {
		t.Fatalf("expected exactly one commit, got %d", len(res.Commits))
	}
	if res.Commits[0].Value != res.FinalValue {
		t.Errorf("commit %q does not match final value %q", res.Commits[0].Value, res.FinalValue)
	}
	if len(res.Closes) != 1 {
		t.Fatalf("expected one close, got %d", len(res.Closes))
	}
	if res.Closes[0].Reason != lifecycle.ReasonGesture {
		t.Errorf("single gesture should close with reason gesture, got %s", res.Closes[0].Reason)
	}

	// The trace ends on a snap point.
	last := res.Positions[len(res.Positions)-1]
	if want := -float64(res.FinalIndex) * 40; last != want {
		t.Errorf("expected final position %f, got %f", want, last)
	}
}

func TestRunWheelGesture(t *testing.T) {
	r := newTestRunner()

	var script Script
	script.WheelBurst(0, 5, 30, 50*time.Millisecond)

	res, err := r.Run(context.Background(), script, DefaultRunConfig())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if res.FinalIndex <= 10 {
		t.Errorf("positive wheel deltas should advance the index, got %d", res.FinalIndex)
	}
	if len(res.Commits) != 1 {
		t.Errorf("expected one commit, got %d", len(res.Commits))
	}
	if len(res.Closes) != 1 || res.Closes[0].Reason != lifecycle.ReasonGesture {
		t.Errorf("unexpected closes: %+v", res.Closes)
	}
}

func TestRunMetricsAndObservers(t *testing.T) {
	r := newTestRunner()
	r.AddMetric(metrics.NewPeakVelocity())
	r.AddMetric(metrics.NewTravelDistance())
	counter := &frameCounter{}
	r.AddObserver(counter)

	var script Script
	script.Drag(0, 200, 8, -25, 10*time.Millisecond, wheel.PointerTouch)

	res, err := r.Run(context.Background(), script, DefaultRunConfig())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if res.Metrics["travel_distance"] <= 0 {
		t.Error("expected positive travel distance")
	}
	if _, ok := res.Metrics["peak_velocity"]; !ok {
		t.Error("expected peak_velocity in metrics")
	}
	if counter.frames != res.Frames {
		t.Errorf("observer saw %d frames, result has %d", counter.frames, res.Frames)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	var script Script
	at := script.Drag(0, 200, 6, -30, 10*time.Millisecond, wheel.PointerTouch)
	script.Drag(at+100*time.Millisecond, 200, 6, -30, 10*time.Millisecond, wheel.PointerTouch)

	a, err := newTestRunner().Run(context.Background(), script, DefaultRunConfig())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	b, err := newTestRunner().Run(context.Background(), script, DefaultRunConfig())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if a.FinalIndex != b.FinalIndex || a.Frames != b.Frames {
		t.Errorf("identical scripts diverged: (%d,%d) vs (%d,%d)",
			a.FinalIndex, a.Frames, b.FinalIndex, b.Frames)
	}
	if len(a.Events) != len(b.Events) {
		t.Errorf("event streams diverged: %d vs %d", len(a.Events), len(b.Events))
	}
}

func TestRunValidatesConfig(t *testing.T) {
	r := newTestRunner()

	if _, err := r.Run(context.Background(), Script{}, Config{Dt: 0, MaxDuration: time.Second}); err == nil {
		t.Error("expected error for zero dt")
	}
	if _, err := r.Run(context.Background(), Script{}, Config{Dt: 16 * time.Millisecond}); err == nil {
		t.Error("expected error for zero max duration")
	}
}

func TestRunHonorsContext(t *testing.T) {
	r := newTestRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var script Script
	script.Drag(0, 200, 8, -25, 10*time.Millisecond, wheel.PointerTouch)

	res, err := r.Run(ctx, script, DefaultRunConfig())
	if err == nil {
		t.Fatal("expected context error")
	}
	if res == nil {
		t.Fatal("expected partial result")
	}
}
