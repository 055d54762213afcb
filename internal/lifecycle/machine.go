// Package lifecycle owns the open/close timing policy of a picker
// session. It consumes gesture start/end/settle signals and emits a
// single close decision with a reason.
package lifecycle

import (
	"time"

	"go.uber.org/zap"
)

// State is the session lifecycle: closed → interacting → settling →
// idle → closed.
type State int

const (
	StateClosed State = iota
	StateInteracting
	StateSettling
	StateIdle
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateInteracting:
		return "interacting"
	case StateSettling:
		return "settling"
	case StateIdle:
		return "idle"
	}
	return "unknown"
}

// InputSet is the set of concurrently active input sources. A trackpad
// can emit pointer and wheel at the same time, so this is a set, not a
// boolean; cardinality is bounded and known, so a bitmask suffices.
type InputSet uint8

const (
	InputPointer InputSet = 1 << iota
	InputWheel
)

func (s InputSet) Has(in InputSet) bool { return s&in != 0 }

func (s InputSet) Add(in InputSet) InputSet { return s | in }

func (s InputSet) Remove(in InputSet) InputSet { return s &^ in }

func (s InputSet) Empty() bool { return s == 0 }

type EventType int

const (
	EventPointerDown EventType = iota
	EventPointerUp
	EventWheelStart
	EventWheelIdle
	EventMomentumEnd
	EventResetIdle
	EventForceClose
	EventExternalClose

	// Internal timer firings, synthesized by Tick.
	eventWatchdogFired
	eventCloseTimerFired
)

type Event struct {
	Type       EventType
	AtBoundary bool
	Reason     string
}

// Timing is the four-duration close policy. Presets trade precision
// for patience: shortest for power users, longest for touch.
type Timing struct {
	SettleGracePeriod time.Duration
	WheelIdleTimeout  time.Duration
	IdleTimeout       time.Duration
	WatchdogTimeout   time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		SettleGracePeriod: 150 * time.Millisecond,
		WheelIdleTimeout:  800 * time.Millisecond,
		IdleTimeout:       4000 * time.Millisecond,
		WatchdogTimeout:   1000 * time.Millisecond,
	}
}

func (t Timing) Normalize() Timing {
	d := DefaultTiming()
	if t.SettleGracePeriod <= 0 {
		t.SettleGracePeriod = d.SettleGracePeriod
	}
	if t.WheelIdleTimeout <= 0 {
		t.WheelIdleTimeout = d.WheelIdleTimeout
	}
	if t.IdleTimeout <= 0 {
		t.IdleTimeout = d.IdleTimeout
	}
	if t.WatchdogTimeout <= 0 {
		t.WatchdogTimeout = d.WatchdogTimeout
	}
	return t
}

// Context is the per-session bookkeeping. InteractionCount only grows
// while the session is open and resets to zero on every entry to closed.
type Context struct {
	Active           InputSet
	InteractionCount int
	IsSingleGesture  bool
	OpenedViaWheel   bool
	AtBoundary       bool
}

// CloseInfo is handed to the close callback exactly once per decision.
type CloseInfo struct {
	Reason     string
	AtBoundary bool
}

const (
	ReasonGesture       = "gesture"
	ReasonIdle          = "idle"
	ReasonExternalClose = "external-close"
)

type effectKind int

const (
	effectNone effectKind = iota
	effectStartWatchdog
	effectStartCloseTimer
	effectCancelTimer
	effectNotifyClose
	effectLogAnomaly
)

// Effect is a side effect requested by the pure transition function;
// the Machine executes them in order.
type Effect struct {
	Kind  effectKind
	Delay time.Duration
	Close CloseInfo
	Note  string
}

// chooseCloseDelay picks the auto-close delay by priority: a boundary
// hit closes immediately; a single wheel gesture gets the wheel idle
// timeout; a single pointer gesture gets the short grace period; a
// multi-gesture browsing session gets the most patience.
func chooseCloseDelay(ctx Context, timing Timing) time.Duration {
	switch {
	case ctx.AtBoundary:
		return 0
	case ctx.OpenedViaWheel && ctx.IsSingleGesture:
		return timing.WheelIdleTimeout
	case ctx.IsSingleGesture:
		return timing.SettleGracePeriod
	default:
		return timing.IdleTimeout
	}
}

func closeReason(ctx Context) string {
	if ctx.IsSingleGesture {
		return ReasonGesture
	}
	return ReasonIdle
}

// beginInteraction counts a new gesture. Whether this session is a
// single deliberate gesture is decided by the count before increment.
func beginInteraction(ctx Context, source InputSet) Context {
	ctx.IsSingleGesture = ctx.InteractionCount == 0
	if ctx.InteractionCount == 0 {
		ctx.OpenedViaWheel = source == InputWheel
	}
	ctx.InteractionCount++
	ctx.Active = ctx.Active.Add(source)
	return ctx
}

// transition is the pure state-transition table:
// (state, event, context) → (state, context, effects).
func transition(s State, ev Event, ctx Context, timing Timing) (State, Context, []Effect) {
	switch ev.Type {
	case EventForceClose:
		if s == StateClosed {
			return s, ctx, nil
		}
		return StateClosed, Context{}, []Effect{{Kind: effectCancelTimer}}

	case EventExternalClose:
		if s == StateClosed {
			return s, ctx, nil
		}
		reason := ev.Reason
		if reason == "" {
			reason = ReasonExternalClose
		}
		return StateClosed, Context{}, []Effect{
			{Kind: effectCancelTimer},
			{Kind: effectNotifyClose, Close: CloseInfo{Reason: reason, AtBoundary: ctx.AtBoundary}},
		}
	}

	switch s {
	case StateClosed:
		switch ev.Type {
		case EventPointerDown:
			return StateInteracting, beginInteraction(Context{}, InputPointer), nil
		case EventWheelStart:
			return StateInteracting, beginInteraction(Context{}, InputWheel), nil
		}

	case StateInteracting:
		switch ev.Type {
		case EventPointerDown:
			ctx.Active = ctx.Active.Add(InputPointer)
			return s, ctx, nil
		case EventWheelStart:
			ctx.Active = ctx.Active.Add(InputWheel)
			return s, ctx, nil
		case EventPointerUp:
			ctx.Active = ctx.Active.Remove(InputPointer)
		case EventWheelIdle:
			ctx.Active = ctx.Active.Remove(InputWheel)
		default:
			return s, ctx, nil
		}
		// Settle only once the whole set has emptied: a trackpad can
		// still be wheeling after the pointer lifts.
		if !ctx.Active.Empty() {
			return s, ctx, nil
		}
		return StateSettling, ctx, []Effect{{Kind: effectStartWatchdog, Delay: timing.WatchdogTimeout}}

	case StateSettling:
		switch ev.Type {
		case EventMomentumEnd:
			ctx.AtBoundary = ev.AtBoundary
			return StateIdle, ctx, []Effect{
				{Kind: effectCancelTimer},
				{Kind: effectStartCloseTimer, Delay: chooseCloseDelay(ctx, timing)},
			}
		case eventWatchdogFired:
			// The vendor momentum-end callback never arrived; recover
			// locally and keep going.
			ctx.AtBoundary = false
			return StateIdle, ctx, []Effect{
				{Kind: effectLogAnomaly, Note: "momentum-end never fired; watchdog recovered"},
				{Kind: effectStartCloseTimer, Delay: chooseCloseDelay(ctx, timing)},
			}
		case EventPointerDown:
			return StateInteracting, beginInteraction(ctx, InputPointer), []Effect{{Kind: effectCancelTimer}}
		case EventWheelStart:
			return StateInteracting, beginInteraction(ctx, InputWheel), []Effect{{Kind: effectCancelTimer}}
		}

	case StateIdle:
		switch ev.Type {
		case eventCloseTimerFired:
			return StateClosed, Context{}, []Effect{
				{Kind: effectNotifyClose, Close: CloseInfo{Reason: closeReason(ctx), AtBoundary: ctx.AtBoundary}},
			}
		case EventResetIdle:
			return s, ctx, []Effect{{Kind: effectStartCloseTimer, Delay: chooseCloseDelay(ctx, timing)}}
		case EventPointerDown:
			return StateInteracting, beginInteraction(ctx, InputPointer), []Effect{{Kind: effectCancelTimer}}
		case EventWheelStart:
			return StateInteracting, beginInteraction(ctx, InputWheel), []Effect{{Kind: effectCancelTimer}}
		}
	}

	return s, ctx, nil
}

type timerKind int

const (
	timerNone timerKind = iota
	timerWatchdog
	timerClose
)

// Machine executes the transition table against wall time. The single
// timer slot is deadline based: single-shot, cancellable, and cleared
// before its event is applied, so a stale deadline can never fire after
// the owning session is torn down, even if the session was
// reinitialized within the same tick.
type Machine struct {
	state  State
	ctx    Context
	timing Timing

	closeFn func(CloseInfo)
	logger  *zap.Logger

	timer    timerKind
	deadline time.Time
}

func New(timing Timing, closeFn func(CloseInfo), logger *zap.Logger) *Machine {
	if closeFn == nil {
		closeFn = func(CloseInfo) {}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{
		state:   StateClosed,
		timing:  timing.Normalize(),
		closeFn: closeFn,
		logger:  logger,
	}
}

func (m *Machine) State() State     { return m.state }
func (m *Machine) Context() Context { return m.ctx }

// Handle applies one external event at the given time.
func (m *Machine) Handle(ev Event, now time.Time) {
	m.apply(ev, now)
}

// Tick fires a due timer, if any. Hosts call it from their frame loop
// or schedule a wakeup at NextDeadline.
func (m *Machine) Tick(now time.Time) {
	if m.timer == timerNone || now.Before(m.deadline) {
		return
	}
	kind := m.timer
	m.timer = timerNone

	switch kind {
	case timerWatchdog:
		m.apply(Event{Type: eventWatchdogFired}, now)
	case timerClose:
		m.apply(Event{Type: eventCloseTimerFired}, now)
	}
}

// NextDeadline reports when Tick next needs to run.
func (m *Machine) NextDeadline() (time.Time, bool) {
	if m.timer == timerNone {
		return time.Time{}, false
	}
	return m.deadline, true
}

func (m *Machine) apply(ev Event, now time.Time) {
	next, ctx, effects := transition(m.state, ev, m.ctx, m.timing)
	m.state = next
	m.ctx = ctx

	for _, eff := range effects {
		switch eff.Kind {
		case effectStartWatchdog:
			m.startTimer(timerWatchdog, eff.Delay, now)
		case effectStartCloseTimer:
			m.startTimer(timerClose, eff.Delay, now)
		case effectCancelTimer:
			m.cancelTimer()
		case effectNotifyClose:
			m.closeFn(eff.Close)
		case effectLogAnomaly:
			m.logger.Warn("lifecycle anomaly recovered", zap.String("note", eff.Note))
		}
	}
}

func (m *Machine) startTimer(kind timerKind, delay time.Duration, now time.Time) {
	m.timer = kind
	m.deadline = now.Add(delay)
}

func (m *Machine) cancelTimer() {
	m.timer = timerNone
}
