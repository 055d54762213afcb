package metrics

import "math"

// movementEpsilon is the per-frame position change below which the
// column counts as stationary.
const movementEpsilon = 1e-3

// SettleTime reports the timestamp of the last frame that still moved,
// in seconds from run start. Zero means the column never moved.
type SettleTime struct {
	name    string
	lastT   float64
	prev    float64
	samples int
}

func NewSettleTime() *SettleTime {
	return &SettleTime{name: "settle_time"}
}

func (s *SettleTime) Name() string { return s.name }

func (s *SettleTime) Observe(pos, vel, t float64) {
	if s.samples > 0 && math.Abs(pos-s.prev) > movementEpsilon {
		s.lastT = t
	}
	s.prev = pos
	s.samples++
}

func (s *SettleTime) Value() float64 {
	return s.lastT
}

func (s *SettleTime) Reset() {
	s.lastT = 0
	s.prev = 0
	s.samples = 0
}
