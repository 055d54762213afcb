package lifecycle_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/whirl/internal/lifecycle"
	"github.com/san-kum/whirl/internal/wheel"
)

var _ = Describe("Machine", func() {
	var (
		m      *lifecycle.Machine
		closes []lifecycle.CloseInfo
		now    time.Time
	)

	timing := lifecycle.Timing{
		SettleGracePeriod: 150 * time.Millisecond,
		WheelIdleTimeout:  800 * time.Millisecond,
		IdleTimeout:       4000 * time.Millisecond,
		WatchdogTimeout:   1000 * time.Millisecond,
	}

	handle := func(t lifecycle.EventType) {
		m.Handle(lifecycle.Event{Type: t}, now)
	}
	advance := func(d time.Duration) {
		// Step in 10ms ticks the way a frame loop would.
		end := now.Add(d)
		for now.Before(end) {
			now = now.Add(10 * time.Millisecond)
			m.Tick(now)
		}
	}
	settleGesture := func(atBoundary bool) {
		handle(lifecycle.EventPointerDown)
		now = now.Add(50 * time.Millisecond)
		handle(lifecycle.EventPointerUp)
		now = now.Add(20 * time.Millisecond)
		m.Handle(lifecycle.Event{Type: lifecycle.EventMomentumEnd, AtBoundary: atBoundary}, now)
	}

	BeforeEach(func() {
		closes = nil
		now = time.Unix(100, 0)
		m = lifecycle.New(timing, func(info lifecycle.CloseInfo) {
			closes = append(closes, info)
		}, nil)
	})

	It("walks closed → interacting → settling → idle → closed", func() {
		Expect(m.State()).To(Equal(lifecycle.StateClosed))

		handle(lifecycle.EventPointerDown)
		Expect(m.State()).To(Equal(lifecycle.StateInteracting))

		handle(lifecycle.EventPointerUp)
		Expect(m.State()).To(Equal(lifecycle.StateSettling))

		handle(lifecycle.EventMomentumEnd)
		Expect(m.State()).To(Equal(lifecycle.StateIdle))

		advance(200 * time.Millisecond)
		Expect(m.State()).To(Equal(lifecycle.StateClosed))
	})

	Describe("close delay policy", func() {
		It("closes a single pointer gesture after the grace period, reason gesture", func() {
			settleGesture(false)

			advance(140 * time.Millisecond)
			Expect(m.State()).To(Equal(lifecycle.StateIdle))
			Expect(closes).To(BeEmpty())

			advance(20 * time.Millisecond)
			Expect(m.State()).To(Equal(lifecycle.StateClosed))
			Expect(closes).To(HaveLen(1))
			Expect(closes[0].Reason).To(Equal(lifecycle.ReasonGesture))
			Expect(closes[0].AtBoundary).To(BeFalse())
		})

		It("gives a multi-gesture session the long idle timeout, reason idle", func() {
			settleGesture(false)
			advance(50 * time.Millisecond) // well inside the grace period

			settleGesture(false)
			Expect(m.Context().IsSingleGesture).To(BeFalse())

			advance(3900 * time.Millisecond)
			Expect(m.State()).To(Equal(lifecycle.StateIdle))

			advance(200 * time.Millisecond)
			Expect(closes).To(HaveLen(1))
			Expect(closes[0].Reason).To(Equal(lifecycle.ReasonIdle))
		})

		It("treats the next session as single-gesture after a natural close", func() {
			settleGesture(false)
			advance(200 * time.Millisecond)
			Expect(closes).To(HaveLen(1))

			settleGesture(false)
			Expect(m.Context().IsSingleGesture).To(BeTrue())
			advance(200 * time.Millisecond)
			Expect(closes).To(HaveLen(2))
			Expect(closes[1].Reason).To(Equal(lifecycle.ReasonGesture))
		})

		It("uses the wheel idle timeout for a single wheel gesture", func() {
			handle(lifecycle.EventWheelStart)
			now = now.Add(100 * time.Millisecond)
			handle(lifecycle.EventWheelIdle)
			handle(lifecycle.EventMomentumEnd)
			Expect(m.Context().OpenedViaWheel).To(BeTrue())

			advance(700 * time.Millisecond)
			Expect(m.State()).To(Equal(lifecycle.StateIdle))

			advance(150 * time.Millisecond)
			Expect(m.State()).To(Equal(lifecycle.StateClosed))
			Expect(closes).To(HaveLen(1))
		})

		It("closes immediately after settling on a boundary", func() {
			settleGesture(true)

			advance(10 * time.Millisecond)
			Expect(m.State()).To(Equal(lifecycle.StateClosed))
			Expect(closes).To(HaveLen(1))
			Expect(closes[0].AtBoundary).To(BeTrue())
		})
	})

	Describe("concurrent input sources", func() {
		It("stays interacting until every source has ended", func() {
			handle(lifecycle.EventPointerDown)
			handle(lifecycle.EventWheelStart)
			handle(lifecycle.EventPointerUp)
			Expect(m.State()).To(Equal(lifecycle.StateInteracting))

			handle(lifecycle.EventWheelIdle)
			Expect(m.State()).To(Equal(lifecycle.StateSettling))
		})

		It("counts the concurrent pair as one interaction", func() {
			handle(lifecycle.EventPointerDown)
			handle(lifecycle.EventWheelStart)
			Expect(m.Context().InteractionCount).To(Equal(1))
			Expect(m.Context().IsSingleGesture).To(BeTrue())
		})
	})

	Describe("settling watchdog", func() {
		It("recovers when momentum-end never fires", func() {
			handle(lifecycle.EventPointerDown)
			handle(lifecycle.EventPointerUp)
			Expect(m.State()).To(Equal(lifecycle.StateSettling))

			advance(990 * time.Millisecond)
			Expect(m.State()).To(Equal(lifecycle.StateSettling))

			advance(20 * time.Millisecond)
			Expect(m.State()).To(Equal(lifecycle.StateIdle))
			Expect(m.Context().AtBoundary).To(BeFalse())

			// The recovered session still auto-closes normally.
			advance(200 * time.Millisecond)
			Expect(m.State()).To(Equal(lifecycle.StateClosed))
			Expect(closes).To(HaveLen(1))
		})

		It("cancels the watchdog when a new gesture begins", func() {
			handle(lifecycle.EventPointerDown)
			handle(lifecycle.EventPointerUp)
			handle(lifecycle.EventPointerDown)
			Expect(m.State()).To(Equal(lifecycle.StateInteracting))

			advance(1500 * time.Millisecond)
			Expect(m.State()).To(Equal(lifecycle.StateInteracting))
		})
	})

	Describe("idle resets", func() {
		It("restarts the close timer on ResetIdle without changing state", func() {
			settleGesture(false)

			advance(100 * time.Millisecond)
			handle(lifecycle.EventResetIdle)
			Expect(m.State()).To(Equal(lifecycle.StateIdle))

			advance(100 * time.Millisecond)
			Expect(m.State()).To(Equal(lifecycle.StateIdle), "timer should have restarted")

			advance(100 * time.Millisecond)
			Expect(m.State()).To(Equal(lifecycle.StateClosed))
		})
	})

	Describe("forced closes", func() {
		It("ForceClose is immediate and silent", func() {
			settleGesture(false)
			handle(lifecycle.EventForceClose)

			Expect(m.State()).To(Equal(lifecycle.StateClosed))
			Expect(closes).To(BeEmpty())
			Expect(m.Context().InteractionCount).To(BeZero())

			advance(5000 * time.Millisecond)
			Expect(closes).To(BeEmpty(), "cancelled timers must never fire")
		})

		It("ExternalClose notifies with the supplied reason", func() {
			handle(lifecycle.EventPointerDown)
			m.Handle(lifecycle.Event{Type: lifecycle.EventExternalClose, Reason: "parent-unmount"}, now)

			Expect(m.State()).To(Equal(lifecycle.StateClosed))
			Expect(closes).To(HaveLen(1))
			Expect(closes[0].Reason).To(Equal("parent-unmount"))
		})

		It("ExternalClose defaults its reason", func() {
			handle(lifecycle.EventPointerDown)
			handle(lifecycle.EventExternalClose)

			Expect(closes).To(HaveLen(1))
			Expect(closes[0].Reason).To(Equal(lifecycle.ReasonExternalClose))
		})

		It("ignores closes while already closed", func() {
			handle(lifecycle.EventExternalClose)
			Expect(closes).To(BeEmpty())
		})
	})
})

var _ = Describe("FromGesture", func() {
	It("maps gesture events onto lifecycle events", func() {
		ev, ok := lifecycle.FromGesture(wheel.Event{Kind: wheel.EventDragStart, Source: wheel.SourcePointer})
		Expect(ok).To(BeTrue())
		Expect(ev.Type).To(Equal(lifecycle.EventPointerDown))

		ev, ok = lifecycle.FromGesture(wheel.Event{Kind: wheel.EventDragStart, Source: wheel.SourceWheel})
		Expect(ok).To(BeTrue())
		Expect(ev.Type).To(Equal(lifecycle.EventWheelStart))

		// Keyboard synthesizes a pointer gesture.
		ev, ok = lifecycle.FromGesture(wheel.Event{Kind: wheel.EventDragEnd, Source: wheel.SourceKeyboard})
		Expect(ok).To(BeTrue())
		Expect(ev.Type).To(Equal(lifecycle.EventPointerUp))

		ev, ok = lifecycle.FromGesture(wheel.Event{Kind: wheel.EventValueSettle, AtBoundary: true})
		Expect(ok).To(BeTrue())
		Expect(ev.Type).To(Equal(lifecycle.EventMomentumEnd))
		Expect(ev.AtBoundary).To(BeTrue())

		_, ok = lifecycle.FromGesture(wheel.Event{Kind: wheel.EventValueVisual})
		Expect(ok).To(BeFalse())
	})
})
