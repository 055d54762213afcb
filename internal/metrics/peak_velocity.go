package metrics

import "math"

// PeakVelocity records the largest absolute velocity seen in px/s.
type PeakVelocity struct {
	name string
	peak float64
}

func NewPeakVelocity() *PeakVelocity {
	return &PeakVelocity{name: "peak_velocity"}
}

func (p *PeakVelocity) Name() string { return p.name }

func (p *PeakVelocity) Observe(pos, vel, t float64) {
	speed := math.Abs(vel)
	if speed > p.peak {
		p.peak = speed
	}
}

func (p *PeakVelocity) Value() float64 {
	return p.peak
}

func (p *PeakVelocity) Reset() {
	p.peak = 0
}
