package replay

import (
	"time"

	"github.com/san-kum/whirl/internal/lifecycle"
	"github.com/san-kum/whirl/internal/wheel"
)

type ActionKind int

const (
	ActionPointerDown ActionKind = iota
	ActionPointerMove
	ActionPointerUp
	ActionWheel
	ActionKey
)

// Action is one scripted input at a fixed offset from the run start.
type Action struct {
	At      time.Duration
	Kind    ActionKind
	Y       float64
	Delta   float64
	Key     wheel.Key
	Pointer wheel.PointerKind
}

// Script is a deterministic gesture recording. Actions must be sorted
// by offset.
type Script struct {
	Name    string
	Actions []Action
}

// Drag appends a pointer drag: down at y0, steps moves of dy every
// stepDt, then up. Returns the offset just after the release.
func (s *Script) Drag(at time.Duration, y0 float64, steps int, dy float64, stepDt time.Duration, kind wheel.PointerKind) time.Duration {
	s.Actions = append(s.Actions, Action{At: at, Kind: ActionPointerDown, Y: y0, Pointer: kind})
	y := y0
	for i := 0; i < steps; i++ {
		at += stepDt
		y += dy
		s.Actions = append(s.Actions, Action{At: at, Kind: ActionPointerMove, Y: y})
	}
	at += stepDt
	s.Actions = append(s.Actions, Action{At: at, Kind: ActionPointerUp, Y: y})
	return at
}

// WheelBurst appends ticks wheel events of the given delta every stepDt.
func (s *Script) WheelBurst(at time.Duration, ticks int, delta float64, stepDt time.Duration) time.Duration {
	for i := 0; i < ticks; i++ {
		s.Actions = append(s.Actions, Action{At: at, Kind: ActionWheel, Delta: delta})
		at += stepDt
	}
	return at
}

// Metric accumulates one scalar over a run's frames.
type Metric interface {
	Name() string
	Observe(pos, vel, t float64)
	Value() float64
	Reset()
}

// Observer receives every frame as it is simulated.
type Observer interface {
	OnFrame(pos, vel, t float64)
}

// Config controls the frame loop. Dt is the fixed frame step.
type Config struct {
	Dt          time.Duration
	MaxDuration time.Duration
}

func DefaultRunConfig() Config {
	return Config{
		Dt:          16 * time.Millisecond,
		MaxDuration: 30 * time.Second,
	}
}

// Commit is one accepted value commit observed during a run.
type Commit struct {
	Key   string
	Value string
}

// Result is the full trace of one scripted run.
type Result struct {
	Times      []float64 // seconds from run start
	Positions  []float64
	Velocities []float64
	Events     []wheel.Event
	Closes     []lifecycle.CloseInfo
	Commits    []Commit
	Metrics    map[string]float64

	Frames     int
	FinalIndex int
	FinalValue string
}
