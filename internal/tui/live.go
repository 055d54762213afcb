package tui

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	liveWidth   = 70
	liveHeight  = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer draws a replayed wheel trace to the terminal as it is
// simulated. It implements the replay observer contract.
type LiveRenderer struct {
	script     string
	itemHeight float64
	options    []string
	frameRate  int
	lastFrame  time.Time
	canvas     [][]rune
	velTrail   []float64
}

func NewLiveRenderer(script string, options []string, itemHeight float64, frameRate int) *LiveRenderer {
	canvas := make([][]rune, liveHeight)
	for i := range canvas {
		canvas[i] = make([]rune, liveWidth)
	}
	return &LiveRenderer{
		script:     script,
		itemHeight: itemHeight,
		options:    options,
		frameRate:  frameRate,
		canvas:     canvas,
		velTrail:   make([]float64, 0, 50),
	}
}

func (r *LiveRenderer) OnFrame(pos, vel, t float64) {
	elapsed := time.Since(r.lastFrame)
	if elapsed < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	r.velTrail = append(r.velTrail, vel)
	if len(r.velTrail) > 50 {
		r.velTrail = r.velTrail[1:]
	}

	r.clear()
	r.drawWheel(pos)
	r.drawVelocity()
	r.render(pos, vel, t)
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < liveWidth && y >= 0 && y < liveHeight {
		r.canvas[y][x] = c
	}
}

// drawWheel renders the options strip around the current position; the
// sub-item offset shifts the strip so motion between detents is visible.
func (r *LiveRenderer) drawWheel(pos float64) {
	if r.itemHeight <= 0 || len(r.options) == 0 {
		return
	}
	cy := liveHeight / 2
	center := -pos / r.itemHeight
	nearest := int(math.Round(center))
	// Fraction of one item the wheel sits off the detent, in rows.
	offRows := int(math.Round((center - float64(nearest)) * 2))

	for row := -4; row <= 4; row++ {
		idx := nearest + row
		if idx < 0 || idx >= len(r.options) {
			continue
		}
		y := cy + row*2 - offRows
		label := r.options[idx]
		x := 6
		if row == 0 {
			r.set(x-2, y, '>')
		}
		for i, ch := range label {
			r.set(x+i, y, ch)
		}
	}

	for y := 0; y < liveHeight; y++ {
		r.set(18, y, '|')
	}
	r.set(2, cy, '=')
	r.set(3, cy, '=')
}

func (r *LiveRenderer) drawVelocity() {
	if len(r.velTrail) == 0 {
		return
	}
	maxV := 1.0
	for _, v := range r.velTrail {
		if math.Abs(v) > maxV {
			maxV = math.Abs(v)
		}
	}
	cy := liveHeight / 2
	for i, v := range r.velTrail {
		x := 22 + i
		bh := int(v / maxV * float64(liveHeight/2-1))
		if bh > 0 {
			for y := cy - 1; y >= cy-bh && y >= 0; y-- {
				r.set(x, y, '#')
			}
		} else if bh < 0 {
			for y := cy + 1; y <= cy-bh && y < liveHeight; y++ {
				r.set(x, y, '#')
			}
		} else {
			r.set(x, cy, '-')
		}
	}
}

func (r *LiveRenderer) render(pos, vel, t float64) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  t=%.2fs\n", r.script, t))
	b.WriteString("  " + strings.Repeat("-", liveWidth) + "\n")

	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", liveWidth) + "\n")
	b.WriteString(fmt.Sprintf("  pos=%.1fpx  vel=%.0fpx/s\n", pos, vel))

	fmt.Print(b.String())
}

func (r *LiveRenderer) Start() { fmt.Print(hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Print(showCursor) }
