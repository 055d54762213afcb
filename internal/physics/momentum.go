package physics

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

const (
	DefaultDecelerationRate      = 0.9965 // per ms
	DefaultSnapVelocityThreshold = 90.0   // px/s
	DefaultMaxDuration           = 2500 * time.Millisecond

	DefaultSpringFPS       = 60
	DefaultSpringFrequency = 9.0
	DefaultSpringDamping   = 1.0 // critically damped: no overshoot

	settleEpsilon = 0.05 // px
)

// MomentumConfig tunes the post-release friction phase.
type MomentumConfig struct {
	DecelerationRate      float64 `yaml:"deceleration_rate"`       // exponential decay per ms, 0 < r < 1
	SnapVelocityThreshold float64 `yaml:"snap_velocity_threshold"` // px/s
	MaxDurationMs         float64 `yaml:"max_duration_ms"`
}

func DefaultMomentumConfig() MomentumConfig {
	return MomentumConfig{
		DecelerationRate:      DefaultDecelerationRate,
		SnapVelocityThreshold: DefaultSnapVelocityThreshold,
		MaxDurationMs:         float64(DefaultMaxDuration / time.Millisecond),
	}
}

func (c MomentumConfig) Normalize() MomentumConfig {
	if !isFinite(c.DecelerationRate) || c.DecelerationRate <= 0 || c.DecelerationRate >= 1 {
		c.DecelerationRate = DefaultDecelerationRate
	}
	if !isFinitePositive(c.SnapVelocityThreshold) {
		c.SnapVelocityThreshold = DefaultSnapVelocityThreshold
	}
	if !isFinitePositive(c.MaxDurationMs) {
		c.MaxDurationMs = float64(DefaultMaxDuration / time.Millisecond)
	}
	return c
}

// SpringConfig tunes the snap-phase settle spring.
type SpringConfig struct {
	FPS       int     `yaml:"fps"`
	Frequency float64 `yaml:"frequency"`
	Damping   float64 `yaml:"damping"`
}

func DefaultSpringConfig() SpringConfig {
	return SpringConfig{FPS: DefaultSpringFPS, Frequency: DefaultSpringFrequency, Damping: DefaultSpringDamping}
}

func (c SpringConfig) Normalize() SpringConfig {
	if c.FPS <= 0 {
		c.FPS = DefaultSpringFPS
	}
	if !isFinitePositive(c.Frequency) {
		c.Frequency = DefaultSpringFrequency
	}
	if !isFinitePositive(c.Damping) {
		c.Damping = DefaultSpringDamping
	}
	return c
}

type momentumPhase int

const (
	phaseFriction momentumPhase = iota
	phaseSnap
	phaseCompleted
	phaseStopped
)

// MomentumOptions configures one post-release settle run.
type MomentumOptions struct {
	Position   float64
	Velocity   float64 // px/s at release
	Min, Max   float64 // position bounds
	SnapTarget func(pos float64) float64
	Config     MomentumConfig
	Spring     SpringConfig
	OnComplete func(finalPos float64, hitBound bool)
}

// Momentum is the two-phase post-release simulator: an exponential
// friction coast followed by a spring settle onto the snap target. The
// step function is pure of scheduling; whoever owns the frame loop
// calls Tick with the elapsed wall time.
type Momentum struct {
	cfg      MomentumConfig
	spring   harmonica.Spring
	snapFn   func(float64) float64
	onDone   func(float64, bool)
	min, max float64

	phase     momentumPhase
	pos       float64
	vel       float64 // px/s, friction phase only
	springVel float64
	target    float64
	elapsedMs float64
	hitBound  bool

	// The spring advances in fixed quanta of the configured FPS, so the
	// snap phase stays frame-rate independent like the friction phase.
	springStepMs float64
	springAccMs  float64
}

func NewMomentum(opts MomentumOptions) *Momentum {
	cfg := opts.Config.Normalize()
	spr := opts.Spring.Normalize()
	snapFn := opts.SnapTarget
	if snapFn == nil {
		snapFn = func(p float64) float64 { return p }
	}
	m := &Momentum{
		cfg:          cfg,
		spring:       harmonica.NewSpring(harmonica.FPS(spr.FPS), spr.Frequency, spr.Damping),
		snapFn:       snapFn,
		onDone:       opts.OnComplete,
		min:          opts.Min,
		max:          opts.Max,
		phase:        phaseFriction,
		pos:          opts.Position,
		vel:          opts.Velocity,
		springStepMs: 1000 / float64(spr.FPS),
	}
	if !isFinite(m.vel) {
		m.vel = 0
	}
	// A release below the snap threshold skips the coast entirely.
	if math.Abs(m.vel) < cfg.SnapVelocityThreshold {
		m.enterSnap()
	}
	return m
}

// Tick advances the simulation by dt and reports the new position and
// whether the animation has finished. Finished includes stopped.
func (m *Momentum) Tick(dt time.Duration) (float64, bool) {
	switch m.phase {
	case phaseStopped, phaseCompleted:
		return m.pos, true
	}

	dtMs := float64(dt) / float64(time.Millisecond)
	if dtMs <= 0 {
		return m.pos, false
	}
	m.elapsedMs += dtMs

	if m.phase == phaseFriction {
		m.tickFriction(dtMs)
		// The friction portion consumed this frame; the spring starts
		// accumulating on the next one.
		return m.pos, false
	}

	m.tickSnap(dtMs)
	if m.phase == phaseCompleted {
		if m.onDone != nil {
			m.onDone(m.pos, m.hitBound)
		}
		return m.pos, true
	}
	return m.pos, false
}

func (m *Momentum) tickFriction(dtMs float64) {
	// Exponential decay keeps the coast frame-rate independent.
	m.vel *= math.Pow(m.cfg.DecelerationRate, dtMs)
	m.pos += m.vel * dtMs / 1000

	// Momentum stops dead at a boundary: clamp, zero out, settle.
	if m.pos <= m.min {
		m.pos = m.min
		m.vel = 0
		m.hitBound = true
		m.enterSnap()
		return
	}
	if m.pos >= m.max {
		m.pos = m.max
		m.vel = 0
		m.hitBound = true
		m.enterSnap()
		return
	}

	// Only velocity triggers the handoff, never distance to a snap
	// point; snapping while still fast causes a visible bounce-back.
	if math.Abs(m.vel) < m.cfg.SnapVelocityThreshold {
		m.enterSnap()
		return
	}

	// Safety valve against floating-point stalls.
	if m.elapsedMs > m.cfg.MaxDurationMs {
		m.enterSnap()
	}
}

// enterSnap starts the spring from zero velocity. Carrying the residual
// friction velocity into the spring causes overshoot and oscillation.
func (m *Momentum) enterSnap() {
	m.phase = phaseSnap
	m.target = m.snapFn(m.pos)
	m.springVel = 0
}

func (m *Momentum) tickSnap(dtMs float64) {
	m.springAccMs += dtMs
	for m.springAccMs >= m.springStepMs && m.phase == phaseSnap {
		m.springAccMs -= m.springStepMs
		m.pos, m.springVel = m.spring.Update(m.pos, m.springVel, m.target)
		if math.Abs(m.pos-m.target) < settleEpsilon && math.Abs(m.springVel) < settleEpsilon {
			m.pos = m.target
			m.springVel = 0
			m.phase = phaseCompleted
		}
	}
}

// Stop cancels both phases without firing OnComplete. Idempotent.
func (m *Momentum) Stop() {
	if m.phase == phaseCompleted {
		return
	}
	m.phase = phaseStopped
	m.vel = 0
	m.springVel = 0
}

func (m *Momentum) Position() float64 { return m.pos }

// Velocity reports the live velocity in px/s for either phase.
func (m *Momentum) Velocity() float64 {
	if m.phase == phaseFriction {
		return m.vel
	}
	return m.springVel
}

func (m *Momentum) FrictionPhase() bool { return m.phase == phaseFriction }

func (m *Momentum) Done() bool {
	return m.phase == phaseCompleted || m.phase == phaseStopped
}
