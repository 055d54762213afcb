package metrics

// velocityDeadband filters out regression noise around zero.
const velocityDeadband = 1.0 // px/s

// DirectionChanges counts velocity sign flips over a run. A clean
// settle has zero; any positive count means visible wobble.
type DirectionChanges struct {
	name  string
	sign  int
	flips int
}

func NewDirectionChanges() *DirectionChanges {
	return &DirectionChanges{name: "direction_changes"}
}

func (d *DirectionChanges) Name() string { return d.name }

func (d *DirectionChanges) Observe(pos, vel, t float64) {
	sign := 0
	if vel > velocityDeadband {
		sign = 1
	} else if vel < -velocityDeadband {
		sign = -1
	}
	if sign == 0 {
		return
	}
	if d.sign != 0 && sign != d.sign {
		d.flips++
	}
	d.sign = sign
}

func (d *DirectionChanges) Value() float64 {
	return float64(d.flips)
}

func (d *DirectionChanges) Reset() {
	d.sign = 0
	d.flips = 0
}
