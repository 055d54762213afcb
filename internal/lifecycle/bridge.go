package lifecycle

import "github.com/san-kum/whirl/internal/wheel"

// FromGesture maps a gesture stream event onto a lifecycle event.
// Keyboard gestures synthesize pointer down/up so the machine treats
// them as completed gestures. Events with no lifecycle meaning report
// false.
func FromGesture(ev wheel.Event) (Event, bool) {
	switch ev.Kind {
	case wheel.EventDragStart:
		if ev.Source == wheel.SourceWheel {
			return Event{Type: EventWheelStart}, true
		}
		return Event{Type: EventPointerDown}, true
	case wheel.EventDragEnd:
		if ev.Source == wheel.SourceWheel {
			return Event{Type: EventWheelIdle}, true
		}
		return Event{Type: EventPointerUp}, true
	case wheel.EventValueSettle:
		return Event{Type: EventMomentumEnd, AtBoundary: ev.AtBoundary}, true
	}
	return Event{}, false
}
