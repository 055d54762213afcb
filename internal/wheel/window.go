package wheel

// WindowFrame is the bounded rendering slice handed to the host each
// frame. It is derived state; recompute it on every input change.
type WindowFrame struct {
	StartIndex   int
	WindowLength int
	OffsetPixels float64
}

// Window maps a center index to the slice of options worth rendering.
// Out-of-range inputs clamp; a zero option count yields an empty frame.
func Window(centerIndex, slotCount, overscan, optionCount int, itemHeight float64) WindowFrame {
	if optionCount <= 0 || slotCount <= 0 {
		return WindowFrame{}
	}

	maxStart := optionCount - slotCount
	if maxStart < 0 {
		maxStart = 0
	}
	start := centerIndex - overscan
	if start < 0 {
		start = 0
	}
	if start > maxStart {
		start = maxStart
	}

	length := slotCount
	if optionCount < length {
		length = optionCount
	}

	return WindowFrame{
		StartIndex:   start,
		WindowLength: length,
		OffsetPixels: float64(start) * itemHeight,
	}
}
