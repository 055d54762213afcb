package metrics

import "math"

// TravelDistance accumulates total pixels travelled, direction ignored.
type TravelDistance struct {
	name    string
	total   float64
	prev    float64
	samples int
}

func NewTravelDistance() *TravelDistance {
	return &TravelDistance{name: "travel_distance"}
}

func (d *TravelDistance) Name() string { return d.name }

func (d *TravelDistance) Observe(pos, vel, t float64) {
	if d.samples > 0 {
		d.total += math.Abs(pos - d.prev)
	}
	d.prev = pos
	d.samples++
}

func (d *TravelDistance) Value() float64 {
	return d.total
}

func (d *TravelDistance) Reset() {
	d.total = 0
	d.prev = 0
	d.samples = 0
}
