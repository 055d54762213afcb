package wheel

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/san-kum/whirl/internal/physics"
)

type eventLog struct {
	events []Event
}

func (l *eventLog) sink(ev Event) { l.events = append(l.events, ev) }

func (l *eventLog) ofKind(kind EventKind) []Event {
	out := make([]Event, 0)
	for _, ev := range l.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func testOptions(n int) []string {
	opts := make([]string, n)
	for i := range opts {
		opts[i] = fmt.Sprintf("item-%02d", i)
	}
	return opts
}

func testColumnConfig() ColumnConfig {
	return ColumnConfig{
		Key:           "test",
		Options:       testOptions(100),
		ItemHeight:    40,
		Height:        280,
		SelectedIndex: 10,
		Snap:          physics.SnapConfig{Enabled: false},
		WheelSnap:     physics.SnapConfig{Enabled: false},
	}
}

func newTestColumn(t *testing.T, cfg ColumnConfig) (*Column, *eventLog, *int) {
	t.Helper()
	log := &eventLog{}
	commits := 0
	col := NewColumn(cfg, log.sink, func(key, value string) bool {
		commits++
		return true
	}, nil)
	return col, log, &commits
}

// settleOut drives ticks until the settle animation completes.
func settleOut(t *testing.T, col *Column, now time.Time) time.Time {
	t.Helper()
	for i := 0; i < 3000; i++ {
		now = now.Add(16 * time.Millisecond)
		col.Tick(now)
		if !col.Settling() && !col.WheelActive() {
			return now
		}
	}
	t.Fatal("column did not settle")
	return now
}

func TestClosedPickerRequiresOpeningDrag(t *testing.T) {
	col, _, _ := newTestColumn(t, testColumnConfig())
	now := time.Unix(0, 0)

	startPos := col.Position()
	col.PointerDown(150, PointerTouch, now)
	col.PointerMove(153, now.Add(10*time.Millisecond))

	if col.Position() != startPos {
		t.Error("a closed picker must not track motion below the opening threshold")
	}

	col.PointerMove(165, now.Add(20*time.Millisecond))
	if col.Position() == startPos {
		t.Error("expected tracking once past the opening threshold")
	}
	if !col.Open() {
		t.Error("a deliberate drag must open the picker")
	}
}

func TestOpenPickerTracksImmediately(t *testing.T) {
	col, _, _ := newTestColumn(t, testColumnConfig())
	col.SetOpen(true)
	now := time.Unix(0, 0)

	startPos := col.Position()
	col.PointerDown(150, PointerTouch, now)
	col.PointerMove(148, now.Add(10*time.Millisecond))

	if col.Position() == startPos {
		t.Error("an open picker tracks every move")
	}
}

func TestTouchTapStepsOneIndex(t *testing.T) {
	col, log, commits := newTestColumn(t, testColumnConfig())
	now := time.Unix(0, 0)

	// Tap below center on a closed picker: one step forward, no momentum.
	col.PointerDown(180, PointerTouch, now)
	col.PointerUp(now.Add(50 * time.Millisecond))
	settleOut(t, col, now)

	if got := col.CenterIndex(); got != 11 {
		t.Errorf("expected index 11 after tap, got %d", got)
	}
	settles := log.ofKind(EventValueSettle)
	if len(settles) != 1 {
		t.Fatalf("expected one settle, got %d", len(settles))
	}
	if settles[0].HadMomentum {
		t.Error("taps never settle with momentum")
	}
	if *commits != 1 {
		t.Errorf("expected exactly one commit, got %d", *commits)
	}
}

func TestMouseTapStepsProportionally(t *testing.T) {
	col, _, _ := newTestColumn(t, testColumnConfig())
	now := time.Unix(0, 0)

	// 80px above center = two items back for a mouse.
	col.PointerDown(60, PointerMouse, now)
	col.PointerUp(now.Add(40 * time.Millisecond))
	settleOut(t, col, now)

	if got := col.CenterIndex(); got != 8 {
		t.Errorf("expected index 8 after proportional tap, got %d", got)
	}
}

func dragFlick(col *Column, now time.Time, pxPerStep float64, steps int) time.Time {
	col.PointerDown(200, PointerTouch, now)
	for i := 1; i <= steps; i++ {
		now = now.Add(10 * time.Millisecond)
		col.PointerMove(200+float64(i)*pxPerStep, now)
	}
	col.PointerUp(now)
	return now
}

func TestMultiGestureFlickGetsMomentum(t *testing.T) {
	col, log, _ := newTestColumn(t, testColumnConfig())
	col.SetOpen(true) // picker already open: this is a second gesture
	now := time.Unix(0, 0)

	now = dragFlick(col, now, -25, 8) // ~2500 px/s toward higher indexes
	settleOut(t, col, now)

	settles := log.ofKind(EventValueSettle)
	if len(settles) != 1 {
		t.Fatalf("expected one settle, got %d", len(settles))
	}
	if !settles[0].HadMomentum {
		t.Error("a flick on an already-open picker must coast")
	}
	if col.CenterIndex() <= 15 {
		t.Errorf("momentum should carry well past the drag distance, got index %d", col.CenterIndex())
	}
}

func TestSingleGestureDisablesMomentum(t *testing.T) {
	col, log, _ := newTestColumn(t, testColumnConfig())
	now := time.Unix(0, 0)

	now = dragFlick(col, now, -25, 8)
	settleOut(t, col, now)

	settles := log.ofKind(EventValueSettle)
	if len(settles) != 1 {
		t.Fatalf("expected one settle, got %d", len(settles))
	}
	if settles[0].HadMomentum {
		t.Error("an open-and-drag-in-one gesture settles without momentum")
	}
	// Position stays near where the finger left it.
	if col.CenterIndex() > 17 {
		t.Errorf("single gesture must not coast, got index %d", col.CenterIndex())
	}
}

func TestOverscrollIsDampedAndFiresOnce(t *testing.T) {
	cfg := testColumnConfig()
	cfg.SelectedIndex = 0
	col, log, _ := newTestColumn(t, cfg)
	col.SetOpen(true)
	now := time.Unix(0, 0)

	col.PointerDown(100, PointerTouch, now)
	// Drag down past the first item: raw excursion of 50px and 100px.
	col.PointerMove(150, now.Add(10*time.Millisecond))
	firstExcursion := col.Position()
	col.PointerMove(200, now.Add(20*time.Millisecond))
	secondExcursion := col.Position()

	if firstExcursion <= 0 {
		t.Fatal("expected overscroll past the start boundary")
	}
	if firstExcursion >= 50 {
		t.Errorf("overscroll must be damped, got %f for a 50px excursion", firstExcursion)
	}
	maxDamped := math.Pow(DefaultMaxOverscrollPx, DefaultOverscrollExponent)
	if secondExcursion > maxDamped+1e-9 {
		t.Errorf("overscroll cap exceeded: %f > %f", secondExcursion, maxDamped)
	}

	hits := log.ofKind(EventBoundaryHit)
	if len(hits) != 1 {
		t.Fatalf("expected one boundary hit per excursion, got %d", len(hits))
	}
	if hits[0].Boundary != BoundaryStart || hits[0].Index != 0 {
		t.Errorf("expected start boundary at index 0, got %+v", hits[0])
	}

	// Return in bounds and overscroll again: a second one-shot.
	col.PointerMove(80, now.Add(30*time.Millisecond))
	col.PointerMove(220, now.Add(40*time.Millisecond))
	if hits := log.ofKind(EventBoundaryHit); len(hits) != 2 {
		t.Errorf("expected a fresh boundary hit after re-entering bounds, got %d", len(hits))
	}
	col.PointerUp(now.Add(50 * time.Millisecond))
}

func TestWheelDeltaCapCarriesRemainder(t *testing.T) {
	col, _, _ := newTestColumn(t, testColumnConfig())
	now := time.Unix(0, 0)

	start := col.Position()
	col.Wheel(100, now) // cap is 0.8*40 = 32px
	if moved := start - col.Position(); math.Abs(moved-32) > 1e-9 {
		t.Errorf("expected capped 32px move, got %f", moved)
	}

	// The 68px remainder drains through subsequent ticks.
	col.Wheel(0, now.Add(10*time.Millisecond))
	if moved := start - col.Position(); math.Abs(moved-64) > 1e-9 {
		t.Errorf("expected carried remainder to apply, got %f", moved)
	}
}

func TestWheelIdleSettlesWithoutMomentum(t *testing.T) {
	col, log, commits := newTestColumn(t, testColumnConfig())
	now := time.Unix(0, 0)

	col.Wheel(30, now)
	col.Wheel(30, now.Add(20*time.Millisecond))
	if !col.WheelActive() {
		t.Fatal("expected an active wheel gesture")
	}

	// No wheel ticks for the idle timeout: the gesture ends by itself.
	now = settleOut(t, col, now.Add(20*time.Millisecond))

	ends := log.ofKind(EventDragEnd)
	if len(ends) != 1 || ends[0].Source != SourceWheel {
		t.Fatalf("expected one wheel drag end, got %+v", ends)
	}
	if ends[0].Velocity != 0 {
		t.Error("wheel settles must force velocity to zero")
	}
	settles := log.ofKind(EventValueSettle)
	if len(settles) != 1 || settles[0].HadMomentum {
		t.Fatalf("wheel gestures never coast, got %+v", settles)
	}
	if *commits != 1 {
		t.Errorf("expected one commit, got %d", *commits)
	}

	// The velocity tracker kept its bookkeeping even though the wheel
	// ignored it for momentum.
	if col.TrackedVelocity() == 0 {
		t.Log("tracker drained by sample age; acceptable")
	}
}

func TestPointerDownDuringWheelAbsorbsGesture(t *testing.T) {
	col, log, commits := newTestColumn(t, testColumnConfig())
	now := time.Unix(0, 0)

	col.Wheel(30, now)
	if !col.WheelActive() {
		t.Fatal("expected an active wheel gesture")
	}

	// A trackpad lands the pointer inside the wheel idle window.
	now = now.Add(50 * time.Millisecond)
	col.PointerDown(200, PointerTouch, now)
	if col.WheelActive() {
		t.Error("pointer down must absorb the pending wheel gesture")
	}

	// Drag well past the idle timeout; nothing may settle mid-drag.
	for i := 1; i <= 30; i++ {
		now = now.Add(16 * time.Millisecond)
		col.PointerMove(200-float64(i)*5, now)
		col.Tick(now)
	}
	if settles := log.ofKind(EventValueSettle); len(settles) != 0 {
		t.Fatalf("settle fired while the pointer was down: %d", len(settles))
	}
	if *commits != 0 {
		t.Fatalf("commit fired while the pointer was down: %d", *commits)
	}

	col.PointerUp(now)
	settleOut(t, col, now)

	if settles := log.ofKind(EventValueSettle); len(settles) != 1 {
		t.Errorf("expected exactly one settle after release, got %d", len(settles))
	}
	if *commits != 1 {
		t.Errorf("expected exactly one commit after release, got %d", *commits)
	}
	// The wheel source ended the moment the pointer took over, so a
	// lifecycle consumer sees the session interacting throughout.
	ends := log.ofKind(EventDragEnd)
	if len(ends) != 2 || ends[0].Source != SourceWheel || ends[1].Source != SourcePointer {
		t.Errorf("unexpected drag end sequence: %+v", ends)
	}
}

func TestWheelDuringDragDefersIdleSettle(t *testing.T) {
	col, log, commits := newTestColumn(t, testColumnConfig())
	col.SetOpen(true)
	now := time.Unix(0, 0)

	col.PointerDown(200, PointerTouch, now)
	now = now.Add(10 * time.Millisecond)
	col.PointerMove(190, now)
	col.Wheel(30, now)

	// The wheel idle window elapses while the pointer is still down.
	for i := 0; i < 20; i++ {
		now = now.Add(16 * time.Millisecond)
		col.Tick(now)
	}
	if len(log.ofKind(EventValueSettle)) != 0 || *commits != 0 {
		t.Fatal("wheel idle settled while the pointer was down")
	}

	col.PointerUp(now)
	settleOut(t, col, now)

	if *commits != 1 {
		t.Errorf("expected one commit once the overlap resolved, got %d", *commits)
	}
	if settles := log.ofKind(EventValueSettle); len(settles) != 1 {
		t.Errorf("expected one settle once the overlap resolved, got %d", len(settles))
	}
}

func TestKeyboardSynthesizesFullGesture(t *testing.T) {
	col, log, _ := newTestColumn(t, testColumnConfig())
	now := time.Unix(0, 0)

	col.KeyPress(KeyDown, now)
	settleOut(t, col, now)

	kinds := make([]EventKind, 0, len(log.events))
	for _, ev := range log.events {
		kinds = append(kinds, ev.Kind)
	}
	want := []EventKind{EventDragStart, EventDragEnd, EventValueVisual, EventValueSettle}
	// value:visual may fire during the settle animation; require the
	// start/end/settle skeleton in order.
	var skeleton []EventKind
	for _, k := range kinds {
		if k != EventValueVisual {
			skeleton = append(skeleton, k)
		}
	}
	if len(skeleton) != 3 || skeleton[0] != want[0] || skeleton[1] != want[1] || skeleton[2] != EventValueSettle {
		t.Fatalf("expected drag:start, drag:end, value:settle; got %v", kinds)
	}
	if col.CenterIndex() != 11 {
		t.Errorf("expected index 11 after KeyDown, got %d", col.CenterIndex())
	}
	if log.ofKind(EventValueSettle)[0].HadMomentum {
		t.Error("keyboard settles never have momentum")
	}
}

func TestKeyboardHomeEndClamp(t *testing.T) {
	col, _, _ := newTestColumn(t, testColumnConfig())
	now := time.Unix(0, 0)

	col.KeyPress(KeyEnd, now)
	now = settleOut(t, col, now)
	if col.CenterIndex() != 99 {
		t.Errorf("expected last index, got %d", col.CenterIndex())
	}

	col.KeyPress(KeyPageDown, now)
	now = settleOut(t, col, now)
	if col.CenterIndex() != 99 {
		t.Errorf("page past the end must clamp, got %d", col.CenterIndex())
	}

	col.KeyPress(KeyHome, now)
	settleOut(t, col, now)
	if col.CenterIndex() != 0 {
		t.Errorf("expected first index, got %d", col.CenterIndex())
	}
}

func TestNewGestureInvalidatesInFlightSettle(t *testing.T) {
	col, log, commits := newTestColumn(t, testColumnConfig())
	now := time.Unix(0, 0)

	col.KeyPress(KeyDown, now)
	// A few frames in, a new pointer gesture supersedes the settle.
	for i := 0; i < 3; i++ {
		now = now.Add(16 * time.Millisecond)
		col.Tick(now)
	}
	col.PointerDown(150, PointerTouch, now)
	col.PointerUp(now.Add(30 * time.Millisecond))
	settleOut(t, col, now)

	if *commits != 1 {
		t.Errorf("a superseded settle must not commit; expected 1 commit, got %d", *commits)
	}
	settles := log.ofKind(EventValueSettle)
	if len(settles) != 1 {
		t.Errorf("expected a single settle from the winning gesture, got %d", len(settles))
	}
}

func TestValueVisualFiresPerIndexCrossed(t *testing.T) {
	col, log, _ := newTestColumn(t, testColumnConfig())
	col.SetOpen(true)
	now := time.Unix(0, 0)

	col.PointerDown(200, PointerTouch, now)
	// Drag exactly two items up the list in small steps.
	for i := 1; i <= 8; i++ {
		now = now.Add(10 * time.Millisecond)
		col.PointerMove(200-float64(i)*10, now)
	}

	visuals := log.ofKind(EventValueVisual)
	if len(visuals) != 2 {
		t.Fatalf("expected 2 visual crossings for an 80px drag, got %d", len(visuals))
	}
	if visuals[0].Index != 11 || visuals[1].Index != 12 {
		t.Errorf("expected crossings at 11 then 12, got %+v", visuals)
	}
	col.PointerUp(now)
}

func TestConfigNormalizeClampsBadTuning(t *testing.T) {
	cfg := testColumnConfig()
	cfg.WheelSensitivity = math.Inf(1)
	cfg.WheelDeltaCap = -3
	cfg.ItemHeight = 0
	cfg.SelectedIndex = 5000

	col, _, _ := newTestColumn(t, cfg)
	if col.cfg.WheelSensitivity != DefaultWheelSensitivity {
		t.Errorf("sensitivity not clamped: %f", col.cfg.WheelSensitivity)
	}
	if col.cfg.WheelDeltaCap != DefaultWheelDeltaCap {
		t.Errorf("delta cap not clamped: %f", col.cfg.WheelDeltaCap)
	}
	if col.cfg.ItemHeight <= 0 {
		t.Errorf("item height not clamped: %f", col.cfg.ItemHeight)
	}
	if col.CenterIndex() != 99 {
		t.Errorf("selected index not clamped, got %d", col.CenterIndex())
	}
}
