package wheel

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/whirl/internal/physics"
)

const (
	DefaultWheelSensitivity   = 1.0
	DefaultWheelDeltaCap      = 0.8 // fraction of item height per tick
	DefaultMaxOverscrollPx    = 60.0
	DefaultOverscrollExponent = 0.82
	DefaultOpenDragThreshold  = 6.0
	DefaultTapThreshold       = 4.0
	DefaultWheelIdleTimeout   = 200 * time.Millisecond
)

// PointerKind distinguishes tap-step behavior: mouse and pen taps step
// proportionally to the offset from center, touch taps step one item.
type PointerKind int

const (
	PointerTouch PointerKind = iota
	PointerMouse
	PointerPen
)

// Key is a keyboard stepping command.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
)

type VirtualConfig struct {
	SlotCount int `yaml:"slot_count"`
	Overscan  int `yaml:"overscan"`
}

// ColumnConfig is the per-column tuning supplied by the host layer.
type ColumnConfig struct {
	Key           string
	Options       []string
	ItemHeight    float64
	Height        float64
	SelectedIndex int

	WheelSensitivity float64
	WheelDeltaCap    float64

	Snap      physics.SnapConfig
	WheelSnap physics.SnapConfig
	Momentum  physics.MomentumConfig
	Spring    physics.SpringConfig
	Virtual   VirtualConfig

	MaxOverscrollPx    float64
	OverscrollExponent float64
	OpenDragThreshold  float64
	TapThreshold       float64
	WheelIdleTimeout   time.Duration
	PageSize           int
}

// normalize clamps invalid tuning to safe defaults; bad numbers here
// are tuning data, not a correctness boundary.
func (c ColumnConfig) normalize() ColumnConfig {
	if !finitePositive(c.ItemHeight) {
		c.ItemHeight = 32
	}
	if !finitePositive(c.Height) {
		c.Height = c.ItemHeight * 7
	}
	if !finitePositive(c.WheelSensitivity) {
		c.WheelSensitivity = DefaultWheelSensitivity
	}
	if !finitePositive(c.WheelDeltaCap) {
		c.WheelDeltaCap = DefaultWheelDeltaCap
	}
	if !finitePositive(c.MaxOverscrollPx) {
		c.MaxOverscrollPx = DefaultMaxOverscrollPx
	}
	if !finitePositive(c.OverscrollExponent) || c.OverscrollExponent >= 1 {
		c.OverscrollExponent = DefaultOverscrollExponent
	}
	if !finitePositive(c.OpenDragThreshold) {
		c.OpenDragThreshold = DefaultOpenDragThreshold
	}
	if !finitePositive(c.TapThreshold) {
		c.TapThreshold = DefaultTapThreshold
	}
	if c.WheelIdleTimeout <= 0 {
		c.WheelIdleTimeout = DefaultWheelIdleTimeout
	}
	if c.PageSize <= 0 {
		c.PageSize = 5
	}
	if c.Virtual.SlotCount <= 0 {
		c.Virtual.SlotCount = 11
	}
	if c.Virtual.Overscan < 0 {
		c.Virtual.Overscan = 0
	}
	if c.SelectedIndex < 0 {
		c.SelectedIndex = 0
	}
	if n := len(c.Options); n > 0 && c.SelectedIndex >= n {
		c.SelectedIndex = n - 1
	}
	return c
}

// RenderFrame is what the host renders each frame.
type RenderFrame struct {
	CenterIndex  int
	StartIndex   int
	WindowLength int
	OffsetPixels float64
	Position     float64
}

// Column owns the continuous scroll position for one interactive
// column and dispatches pointer, wheel and keyboard input onto it. The
// position is the single source of truth; index i sits at -i*itemHeight.
type Column struct {
	cfg    ColumnConfig
	sink   Sink
	commit CommitFunc
	logger *zap.Logger

	pos  float64
	open bool

	tracker   *physics.VelocityTracker
	snap      *physics.SnapPhysics
	wheelSnap *physics.SnapPhysics

	// Pointer gesture state.
	dragging       bool
	pointerKind    PointerKind
	dragStartY     float64
	dragStartPos   float64
	lastY          float64
	totalMoved     float64
	tracking       bool
	wasOpenAtStart bool
	boundaryFired  bool

	// Wheel gesture state.
	wheelActive bool
	wheelCarry  float64
	wheelRawPos float64
	lastWheelAt time.Time

	// Settle animation. The id token guards a superseded animation's
	// completion callback from corrupting state.
	anim   *physics.Momentum
	animID uint64

	lastTickAt      time.Time
	lastVisualIndex int
}

func NewColumn(cfg ColumnConfig, sink Sink, commit CommitFunc, logger *zap.Logger) *Column {
	cfg = cfg.normalize()
	cfg.Snap = cfg.Snap.Normalize()
	cfg.WheelSnap = cfg.WheelSnap.Normalize()
	cfg.Momentum = cfg.Momentum.Normalize()
	cfg.Spring = cfg.Spring.Normalize()
	if sink == nil {
		sink = func(Event) {}
	}
	if commit == nil {
		commit = func(string, string) bool { return true }
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Column{
		cfg:       cfg,
		sink:      sink,
		commit:    commit,
		logger:    logger,
		tracker:   physics.NewVelocityTracker(),
		snap:      physics.NewSnapPhysics(cfg.Snap),
		wheelSnap: physics.NewSnapPhysics(cfg.WheelSnap),
	}
	c.pos = -float64(cfg.SelectedIndex) * cfg.ItemHeight
	c.lastVisualIndex = cfg.SelectedIndex
	return c
}

func (c *Column) Key() string { return c.cfg.Key }
func (c *Column) Open() bool  { return c.open }
func (c *Column) SetOpen(open bool) {
	c.open = open
}

func (c *Column) Position() float64 { return c.pos }

// CenterIndex derives the currently centered option from the position.
func (c *Column) CenterIndex() int {
	return c.clampIndex(int(math.Round(-c.pos / c.cfg.ItemHeight)))
}

func (c *Column) Value() string { return c.valueAt(c.CenterIndex()) }

// OptionAt returns the option label at an index, or "" out of range.
func (c *Column) OptionAt(i int) string { return c.valueAt(i) }

// OptionCount returns the number of options in the column.
func (c *Column) OptionCount() int { return len(c.cfg.Options) }

// Frame computes the virtual rendering window for the current position.
func (c *Column) Frame() RenderFrame {
	ci := c.CenterIndex()
	w := Window(ci, c.cfg.Virtual.SlotCount, c.cfg.Virtual.Overscan, len(c.cfg.Options), c.cfg.ItemHeight)
	return RenderFrame{
		CenterIndex:  ci,
		StartIndex:   w.StartIndex,
		WindowLength: w.WindowLength,
		OffsetPixels: w.OffsetPixels,
		Position:     c.pos,
	}
}

// PointerDown begins a pointer gesture. Any in-flight settle is
// cancelled before its completion can commit a stale value. A pointer
// landing inside the wheel idle window (trackpads emit both sources)
// absorbs the wheel gesture: the drag takes over the position and the
// eventual settle, so exactly one settle and commit happen at release.
func (c *Column) PointerDown(y float64, kind PointerKind, now time.Time) {
	c.cancelAnimation()

	wheelAbsorbed := c.wheelActive
	if wheelAbsorbed {
		c.wheelActive = false
		c.wheelCarry = 0
	}

	c.dragging = true
	c.pointerKind = kind
	c.dragStartY = y
	c.lastY = y
	c.dragStartPos = c.pos
	c.totalMoved = 0
	c.boundaryFired = false
	c.wasOpenAtStart = c.open
	// A closed picker needs a deliberate drag before it tracks motion;
	// an open one tracks immediately.
	c.tracking = c.open

	c.tracker.Reset()
	c.tracker.AddSample(c.dragStartPos, now)
	c.snap.Reset()

	c.sink(Event{Kind: EventDragStart, Source: SourcePointer})
	if wheelAbsorbed {
		// End the wheel source after the pointer has registered, so a
		// lifecycle consumer keeps the session interacting throughout.
		c.sink(Event{Kind: EventDragEnd, Source: SourceWheel, HasMoved: true, Velocity: 0})
	}
}

func (c *Column) PointerMove(y float64, now time.Time) {
	if !c.dragging {
		return
	}
	c.totalMoved += math.Abs(y - c.lastY)
	c.lastY = y

	dy := y - c.dragStartY
	if !c.tracking {
		if math.Abs(dy) < c.cfg.OpenDragThreshold {
			return
		}
		c.tracking = true
		c.open = true
	}

	raw := c.dragStartPos + dy
	c.tracker.AddSample(raw, now)

	damped := c.applyOverscroll(raw)
	frame := physics.DragFrame{
		DeltaY:           damped,
		VelocityY:        c.tracker.Velocity(),
		TotalPixelsMoved: c.totalMoved,
	}
	res := c.snap.Calculate(frame, c.nearestSnap(damped), c.cfg.ItemHeight)
	c.setPosition(res.MappedTranslate)
}

// PointerUp ends a pointer gesture: a stationary tap on a closed picker
// steps the value directly, anything else settles, with momentum only
// when the picker was already open before this gesture began.
func (c *Column) PointerUp(now time.Time) {
	if !c.dragging {
		return
	}
	c.dragging = false

	velocity := c.tracker.Velocity()
	moved := c.totalMoved > c.cfg.TapThreshold
	c.sink(Event{Kind: EventDragEnd, Source: SourcePointer, HasMoved: moved, Velocity: velocity})

	if !moved && !c.wasOpenAtStart {
		c.open = true
		c.settleToIndex(c.CenterIndex()+c.tapSteps(), SourcePointer)
		return
	}

	c.open = true
	if moved && c.wasOpenAtStart {
		// Multi-gesture release keeps its measured velocity and may
		// coast; the very first open-and-drag gesture settles directly
		// for a precise first selection.
		c.settle(velocity, SourcePointer)
		return
	}
	c.settle(0, SourcePointer)
}

// tapSteps converts the tap position into an index delta: proportional
// to the offset from the column center for mouse and pen, a single step
// for touch.
func (c *Column) tapSteps() int {
	offset := c.lastY - c.cfg.Height/2
	if c.pointerKind == PointerTouch {
		if offset > 0 {
			return 1
		}
		if offset < 0 {
			return -1
		}
		return 0
	}
	return int(math.Round(offset / c.cfg.ItemHeight))
}

// Wheel feeds one wheel tick. The per-tick delta is capped relative to
// the item height and the remainder carried forward, so sub-step
// precision is never lost. Wheel gestures use the stickier snap
// profile and never produce momentum.
func (c *Column) Wheel(delta float64, now time.Time) {
	c.cancelAnimation()

	if !c.wheelActive {
		c.wheelActive = true
		c.wheelCarry = 0
		c.wheelRawPos = c.pos
		c.open = true
		c.wheelSnap.Reset()
		c.tracker.Reset()
		c.tracker.AddSample(c.wheelRawPos, now)
		c.sink(Event{Kind: EventDragStart, Source: SourceWheel})
	}
	c.lastWheelAt = now

	total := delta*c.cfg.WheelSensitivity + c.wheelCarry
	cap := c.cfg.WheelDeltaCap * c.cfg.ItemHeight
	applied := clampF(total, -cap, cap)
	c.wheelCarry = total - applied

	raw := c.wheelRawPos - applied
	min, max := c.bounds()
	if raw < min || raw > max {
		c.fireBoundary(raw)
		raw = clampF(raw, min, max)
	} else {
		c.boundaryFired = false
	}
	c.wheelRawPos = raw

	// Velocity bookkeeping continues even though wheel settles ignore
	// it; external consumers read it independently.
	c.tracker.AddSample(raw, now)

	frame := physics.DragFrame{DeltaY: raw, VelocityY: c.tracker.Velocity()}
	res := c.wheelSnap.Calculate(frame, c.nearestSnap(raw), c.cfg.ItemHeight)
	c.setPosition(res.MappedTranslate)
}

// KeyPress steps the index directly and synthesizes a full gesture so
// the lifecycle machine sees keyboard moves as completed gestures.
func (c *Column) KeyPress(k Key, now time.Time) {
	c.cancelAnimation()
	c.open = true

	target := c.CenterIndex()
	switch k {
	case KeyUp:
		target--
	case KeyDown:
		target++
	case KeyPageUp:
		target -= c.cfg.PageSize
	case KeyPageDown:
		target += c.cfg.PageSize
	case KeyHome:
		target = 0
	case KeyEnd:
		target = len(c.cfg.Options) - 1
	}

	c.sink(Event{Kind: EventDragStart, Source: SourceKeyboard})
	c.sink(Event{Kind: EventDragEnd, Source: SourceKeyboard, HasMoved: true})
	c.settleToIndex(target, SourceKeyboard)
}

// Tick advances the wheel idle timeout and any settle animation. The
// host drives it from its frame loop or a test clock.
func (c *Column) Tick(now time.Time) {
	// A wheel gesture never settles out from under a live drag; wheel
	// ticks arriving mid-drag wait for the pointer to lift.
	if c.wheelActive && !c.dragging && now.Sub(c.lastWheelAt) >= c.cfg.WheelIdleTimeout {
		c.wheelActive = false
		c.wheelCarry = 0
		// Wheel settles always start from zero velocity: wheel users
		// want a tactile stop, not a coast.
		c.sink(Event{Kind: EventDragEnd, Source: SourceWheel, HasMoved: true, Velocity: 0})
		c.settle(0, SourceWheel)
	}

	if c.anim != nil && !c.anim.Done() {
		dt := now.Sub(c.lastTickAt)
		if c.lastTickAt.IsZero() || dt < 0 {
			dt = 0
		}
		pos, done := c.anim.Tick(dt)
		c.setPosition(pos)
		if done {
			c.anim = nil
		}
	}
	c.lastTickAt = now
}

// Dragging reports whether a pointer gesture is in progress.
func (c *Column) Dragging() bool { return c.dragging }

// WheelActive reports whether a wheel gesture is awaiting its idle timeout.
func (c *Column) WheelActive() bool { return c.wheelActive }

// Settling reports whether a settle animation is in flight.
func (c *Column) Settling() bool { return c.anim != nil && !c.anim.Done() }

// TrackedVelocity exposes the live regression estimate in px/s.
func (c *Column) TrackedVelocity() float64 { return c.tracker.Velocity() }

// settle animates from the current position to the nearest snap point.
func (c *Column) settle(velocity float64, source Source) {
	hadMomentum := source == SourcePointer &&
		math.Abs(velocity) >= c.cfg.Momentum.SnapVelocityThreshold
	c.startAnimation(velocity, c.nearestSnapClamped, source, hadMomentum)
}

// settleToIndex animates to one specific index, bypassing momentum.
func (c *Column) settleToIndex(index int, source Source) {
	target := -float64(c.clampIndex(index)) * c.cfg.ItemHeight
	c.startAnimation(0, func(float64) float64 { return target }, source, false)
}

func (c *Column) startAnimation(velocity float64, snapFn func(float64) float64, source Source, hadMomentum bool) {
	min, max := c.bounds()

	// Store the guard id before the animation exists so a synchronous
	// completion of a superseded run can never slip through.
	c.animID++
	id := c.animID

	c.anim = physics.NewMomentum(physics.MomentumOptions{
		Position:   c.pos,
		Velocity:   velocity,
		Min:        min,
		Max:        max,
		SnapTarget: snapFn,
		Config:     c.cfg.Momentum,
		Spring:     c.cfg.Spring,
		OnComplete: func(final float64, hitBound bool) {
			if id != c.animID {
				return
			}
			c.finishSettle(final, hitBound, hadMomentum)
		},
	})
}

func (c *Column) cancelAnimation() {
	if c.anim != nil {
		c.anim.Stop()
		c.anim = nil
	}
	c.animID++
}

// finishSettle commits the final value: one settle event, one commit
// callback, never for intermediate visual changes.
func (c *Column) finishSettle(final float64, hitBound bool, hadMomentum bool) {
	c.pos = final
	index := c.CenterIndex()
	value := c.valueAt(index)
	c.lastVisualIndex = index

	c.sink(Event{
		Kind:        EventValueSettle,
		Value:       value,
		Index:       index,
		HadMomentum: hadMomentum,
		AtBoundary:  hitBound,
	})
	if !c.commit(c.cfg.Key, value) {
		c.logger.Debug("value commit rejected by host",
			zap.String("column", c.cfg.Key),
			zap.String("value", value))
	}
}

func (c *Column) setPosition(p float64) {
	c.pos = p
	ci := c.CenterIndex()
	if ci != c.lastVisualIndex {
		c.lastVisualIndex = ci
		c.sink(Event{Kind: EventValueVisual, Value: c.valueAt(ci), Index: ci})
	}
}

// applyOverscroll dampens drag beyond the list bounds with diminishing
// resistance rather than a hard wall, and fires one boundary event per
// excursion.
func (c *Column) applyOverscroll(raw float64) float64 {
	min, max := c.bounds()
	if raw >= min && raw <= max {
		c.boundaryFired = false
		return raw
	}

	c.fireBoundary(raw)

	var edge, distance float64
	if raw > max {
		edge, distance = max, raw-max
	} else {
		edge, distance = min, min-raw
	}
	damped := math.Pow(math.Min(distance, c.cfg.MaxOverscrollPx), c.cfg.OverscrollExponent)
	if raw > max {
		return edge + damped
	}
	return edge - damped
}

func (c *Column) fireBoundary(raw float64) {
	if c.boundaryFired {
		return
	}
	c.boundaryFired = true

	_, max := c.bounds()
	boundary := BoundaryEnd
	index := len(c.cfg.Options) - 1
	if raw > max {
		boundary = BoundaryStart
		index = 0
	}
	c.sink(Event{Kind: EventBoundaryHit, Boundary: boundary, Value: c.valueAt(index), Index: index})
}

// bounds returns the position range: the last option at the minimum,
// the first at zero.
func (c *Column) bounds() (float64, float64) {
	n := len(c.cfg.Options)
	if n == 0 {
		return 0, 0
	}
	return -float64(n-1) * c.cfg.ItemHeight, 0
}

func (c *Column) nearestSnap(pos float64) float64 {
	return math.Round(pos/c.cfg.ItemHeight) * c.cfg.ItemHeight
}

func (c *Column) nearestSnapClamped(pos float64) float64 {
	min, max := c.bounds()
	return clampF(c.nearestSnap(pos), min, max)
}

func (c *Column) clampIndex(i int) int {
	n := len(c.cfg.Options)
	if n == 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (c *Column) valueAt(i int) string {
	if i < 0 || i >= len(c.cfg.Options) {
		return ""
	}
	return c.cfg.Options[i]
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
