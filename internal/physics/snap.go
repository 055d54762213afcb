package physics

import "math"

const (
	DefaultSnapRange         = 0.5
	DefaultEnterThreshold    = 0.35
	DefaultExitThreshold     = 0.5
	DefaultVelocityThreshold = 600.0
	DefaultPullStrength      = 0.55
	DefaultVelocityReducer   = 0.7
	DefaultCenterLock        = 0.35

	// Proportion-in-zone above which the center-lock clamp engages.
	centerLockAggressiveness = 0.6
)

// SnapConfig tunes the magnetic attraction toward the nearest item.
// Thresholds and range are fractions of the item height. CenterLock is
// in [0,1]; 1 is a hard lock onto the target.
type SnapConfig struct {
	Enabled           bool    `yaml:"enabled"`
	SnapRange         float64 `yaml:"snap_range"`
	EnterThreshold    float64 `yaml:"enter_threshold"`
	ExitThreshold     float64 `yaml:"exit_threshold"`
	VelocityThreshold float64 `yaml:"velocity_threshold"`
	VelocityScaling   float64 `yaml:"velocity_scaling"`
	PullStrength      float64 `yaml:"pull_strength"`
	VelocityReducer   float64 `yaml:"velocity_reducer"`
	CenterLock        float64 `yaml:"center_lock"`

	// Optional: widen the pull zone as velocity rises, so fast drags
	// still feel the detents.
	RangeScaleIntensity     float64 `yaml:"range_scale_intensity"`
	RangeScaleVelocityCap   float64 `yaml:"range_scale_velocity_cap"`
	RangeScaleVelocityBoost float64 `yaml:"range_scale_velocity_boost"`
}

func DefaultSnapConfig() SnapConfig {
	return SnapConfig{
		Enabled:           true,
		SnapRange:         DefaultSnapRange,
		EnterThreshold:    DefaultEnterThreshold,
		ExitThreshold:     DefaultExitThreshold,
		VelocityThreshold: DefaultVelocityThreshold,
		VelocityScaling:   1.0,
		PullStrength:      DefaultPullStrength,
		VelocityReducer:   DefaultVelocityReducer,
		CenterLock:        DefaultCenterLock,
	}
}

// Normalize clamps out-of-range tuning values to safe defaults. Tuning
// data is never a correctness boundary, so nothing here errors.
func (c SnapConfig) Normalize() SnapConfig {
	if !isFinitePositive(c.SnapRange) {
		c.SnapRange = DefaultSnapRange
	}
	if c.EnterThreshold < 0 || !isFinite(c.EnterThreshold) {
		c.EnterThreshold = DefaultEnterThreshold
	}
	if c.ExitThreshold < 0 || !isFinite(c.ExitThreshold) {
		c.ExitThreshold = DefaultExitThreshold
	}
	if !isFinitePositive(c.VelocityThreshold) {
		c.VelocityThreshold = DefaultVelocityThreshold
	}
	if !isFinitePositive(c.VelocityScaling) {
		c.VelocityScaling = 1.0
	}
	c.PullStrength = clamp(c.PullStrength, 0, 1)
	c.VelocityReducer = clamp(c.VelocityReducer, 0, 1)
	c.CenterLock = clamp(c.CenterLock, 0, 1)
	return c
}

// DragFrame is one pointer/wheel tick worth of motion, consumed once.
type DragFrame struct {
	DeltaY           float64
	VelocityY        float64
	TotalPixelsMoved float64
}

type SnapResult struct {
	MappedTranslate float64
	InSnapZone      bool
	Debug           *SnapDebug
}

// SnapDebug carries intermediate terms for tracing; nil unless requested.
type SnapDebug struct {
	DistanceToSnap   float64
	ZoneWidth        float64
	ProportionInZone float64
	Pull             float64
	TotalPixelsMoved float64
}

// SnapPhysics applies hysteresis and magnetic pull to a drag offset.
// The zone latch survives across frames within one gesture; Reset it
// on gesture start.
type SnapPhysics struct {
	cfg       SnapConfig
	wasInZone bool
	trace     bool
}

func NewSnapPhysics(cfg SnapConfig) *SnapPhysics {
	return &SnapPhysics{cfg: cfg.Normalize()}
}

func (s *SnapPhysics) SetTrace(on bool) { s.trace = on }

func (s *SnapPhysics) Reset() { s.wasInZone = false }

func (s *SnapPhysics) InZone() bool { return s.wasInZone }

func (s *SnapPhysics) Calculate(frame DragFrame, snapTargetOffset, itemHeight float64) SnapResult {
	if !s.cfg.Enabled {
		return SnapResult{MappedTranslate: frame.DeltaY}
	}

	zoneWidth := itemHeight * s.cfg.SnapRange * s.rangeScale(frame.VelocityY)
	if zoneWidth <= 0 {
		return SnapResult{MappedTranslate: frame.DeltaY}
	}

	distance := math.Abs(frame.DeltaY - snapTargetOffset)

	// Hysteresis: the enter radius is tighter than the exit radius, so
	// the zone is easier to enter than to leave.
	enterRadius := itemHeight * s.cfg.EnterThreshold
	exitRadius := itemHeight * s.cfg.ExitThreshold
	if s.wasInZone {
		s.wasInZone = distance <= exitRadius
	} else {
		s.wasInZone = distance < enterRadius
	}

	if !s.wasInZone {
		return s.result(frame, SnapResult{MappedTranslate: frame.DeltaY}, distance, zoneWidth, 0, 0)
	}

	proportion := clamp(1-distance/zoneWidth, 0, 1)
	pull := s.cfg.PullStrength * s.velocityScale(frame.VelocityY)

	attraction := (snapTargetOffset - frame.DeltaY) * proportion * pull
	mapped := frame.DeltaY + attraction

	mapped = s.centerLock(mapped, snapTargetOffset, zoneWidth, proportion)

	return s.result(frame, SnapResult{MappedTranslate: mapped, InSnapZone: true}, distance, zoneWidth, proportion, pull)
}

// velocityScale linearly weakens the pull as |v| approaches twice the
// velocity threshold, bottoming out at (1 - VelocityReducer).
func (s *SnapPhysics) velocityScale(v float64) float64 {
	limit := 2 * s.cfg.VelocityThreshold
	speed := math.Abs(v) * s.cfg.VelocityScaling
	ratio := clamp(speed/limit, 0, 1)
	return 1 - s.cfg.VelocityReducer*ratio
}

func (s *SnapPhysics) rangeScale(v float64) float64 {
	if s.cfg.RangeScaleIntensity <= 0 || s.cfg.RangeScaleVelocityCap <= 0 {
		return 1
	}
	boost := s.cfg.RangeScaleVelocityBoost
	if boost <= 0 {
		boost = 1
	}
	speed := math.Min(math.Abs(v)*boost, s.cfg.RangeScaleVelocityCap)
	return 1 + s.cfg.RangeScaleIntensity*speed/s.cfg.RangeScaleVelocityCap
}

// centerLock clamps the mapped offset to a shrinking radius around the
// target once deep in the zone, then blends toward the exact target so
// crossing the engagement threshold never pops visibly.
func (s *SnapPhysics) centerLock(mapped, target, zoneWidth, proportion float64) float64 {
	lock := s.cfg.CenterLock
	if lock <= 0 || proportion < centerLockAggressiveness {
		return mapped
	}
	radius := zoneWidth * (1 - lock)
	clamped := clamp(mapped, target-radius, target+radius)
	blend := lock * math.Pow(proportion, 1+lock*1.5)
	return clamped + (target-clamped)*blend
}

func (s *SnapPhysics) result(frame DragFrame, r SnapResult, distance, zoneWidth, proportion, pull float64) SnapResult {
	if s.trace {
		r.Debug = &SnapDebug{
			DistanceToSnap:   distance,
			ZoneWidth:        zoneWidth,
			ProportionInZone: proportion,
			Pull:             pull,
			TotalPixelsMoved: frame.TotalPixelsMoved,
		}
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isFinitePositive(v float64) bool {
	return isFinite(v) && v > 0
}
