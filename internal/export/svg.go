// Package export renders replayed traces to SVG for sharing outside
// the terminal.
package export

import (
	"fmt"
	"os"
	"strings"
)

// TraceToSVG renders one series as a polyline over a dark background.
func TraceToSVG(times, values []float64, width, height int, strokeColor string) string {
	if len(times) < 2 || len(times) != len(values) {
		return ""
	}

	minX, maxX := times[0], times[0]
	minY, maxY := values[0], values[0]
	for i := range times {
		if times[i] < minX {
			minX = times[i]
		}
		if times[i] > maxX {
			maxX = times[i]
		}
		if values[i] < minY {
			minY = values[i]
		}
		if values[i] > maxY {
			maxY = values[i]
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i := range times {
		x := (times[i] - minX) / rangeX * float64(width)
		y := float64(height) - (values[i]-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// WriteTraceSVG writes position and velocity panels to one file,
// stacked vertically.
func WriteTraceSVG(path string, times, positions, velocities []float64) error {
	position := TraceToSVG(times, positions, 640, 200, "#00ffcc")
	velocity := TraceToSVG(times, velocities, 640, 200, "#ffcc00")
	if position == "" {
		return fmt.Errorf("not enough samples to render")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="640" height="400">
<g>%s</g>
<g transform="translate(0,200)">%s</g>
</svg>`, inner(position), inner(velocity)))

	return os.WriteFile(path, []byte(sb.String()), 0644)
}

// inner strips the XML prolog and outer svg element so a rendered
// panel can be nested in a stacked document.
func inner(svg string) string {
	start := strings.Index(svg, "<rect")
	end := strings.LastIndex(svg, "</svg>")
	if start < 0 || end < 0 {
		return ""
	}
	return svg[start:end]
}
