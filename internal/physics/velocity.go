package physics

import "time"

const (
	DefaultMaxSamples = 8
	DefaultSampleAge  = 150 * time.Millisecond
)

// Sample is one observed position at a point in time.
type Sample struct {
	Position float64
	At       time.Time
}

// VelocityTracker estimates gesture velocity from a bounded ring of
// position samples. The estimate is a least-squares regression slope
// rather than a two-point delta, which rejects pointer jitter.
type VelocityTracker struct {
	samples    []Sample
	maxSamples int
	maxAge     time.Duration
}

func NewVelocityTracker() *VelocityTracker {
	return &VelocityTracker{
		samples:    make([]Sample, 0, DefaultMaxSamples),
		maxSamples: DefaultMaxSamples,
		maxAge:     DefaultSampleAge,
	}
}

func (t *VelocityTracker) Reset() {
	t.samples = t.samples[:0]
}

func (t *VelocityTracker) AddSample(pos float64, now time.Time) {
	t.samples = append(t.samples, Sample{Position: pos, At: now})
	t.prune(now)
}

func (t *VelocityTracker) prune(now time.Time) {
	cutoff := now.Add(-t.maxAge)
	start := 0
	for start < len(t.samples) && t.samples[start].At.Before(cutoff) {
		start++
	}
	if over := len(t.samples) - start - t.maxSamples; over > 0 {
		start += over
	}
	if start > 0 {
		t.samples = append(t.samples[:0], t.samples[start:]...)
	}
}

// Velocity returns the current estimate in px/s. With fewer than two
// samples, or with all samples at the same instant, it returns 0.
func (t *VelocityTracker) Velocity() float64 {
	return RegressionVelocity(t.samples)
}

// RegressionVelocity fits position against time-since-first-sample and
// returns the slope in px/s. Pure; usable directly with synthetic samples.
func RegressionVelocity(samples []Sample) float64 {
	n := len(samples)
	if n < 2 {
		return 0
	}

	t0 := samples[0].At
	var sumX, sumY, sumXY, sumXX float64
	for _, s := range samples {
		x := s.At.Sub(t0).Seconds()
		y := s.Position
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / denom
}
