package wheel

// Source identifies which input family produced a gesture.
type Source int

const (
	SourcePointer Source = iota
	SourceWheel
	SourceKeyboard
)

func (s Source) String() string {
	switch s {
	case SourcePointer:
		return "pointer"
	case SourceWheel:
		return "wheel"
	case SourceKeyboard:
		return "keyboard"
	}
	return "unknown"
}

// Boundary names which end of the list an overscroll ran into.
type Boundary int

const (
	BoundaryStart Boundary = iota // first option
	BoundaryEnd                   // last option
)

func (b Boundary) String() string {
	if b == BoundaryStart {
		return "start"
	}
	return "end"
}

type EventKind int

const (
	// EventDragStart opens a gesture on one input source.
	EventDragStart EventKind = iota
	// EventValueVisual fires for every index visually passed through,
	// for live feedback; never a commit.
	EventValueVisual
	// EventBoundaryHit fires once per overscroll excursion.
	EventBoundaryHit
	// EventDragEnd closes the input portion of a gesture.
	EventDragEnd
	// EventValueSettle is the final commit of a gesture.
	EventValueSettle
)

func (k EventKind) String() string {
	switch k {
	case EventDragStart:
		return "drag:start"
	case EventValueVisual:
		return "value:visual"
	case EventBoundaryHit:
		return "boundary:hit"
	case EventDragEnd:
		return "drag:end"
	case EventValueSettle:
		return "value:settle"
	}
	return "unknown"
}

// Event is one entry in the ordered gesture stream. The sink is the
// sole coupling point for external feedback (haptics, audio, logging);
// feedback policy stays fully pluggable.
type Event struct {
	Kind     EventKind
	Source   Source
	Value    string
	Index    int
	Boundary Boundary

	// Drag end.
	HasMoved bool
	Velocity float64

	// Settle.
	HadMomentum bool
	AtBoundary  bool
}

// Sink receives the event stream in emission order.
type Sink func(Event)

// CommitFunc reports a settled value to the host. Called exactly once
// per settle, never for intermediate visual changes. The host may
// reject the value; rejection is advisory and never moves the wheel.
type CommitFunc func(key, value string) bool
