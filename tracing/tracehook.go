package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/vtester/clock"
	"github.com/sarchlab/vtester/hooking"
	"github.com/sarchlab/vtester/pin"
	"github.com/sarchlab/vtester/tester"
)

// CollectTrace lets the tracer collect trace from a tester and from the
// clocks of all its pins, including the pins added later.
func CollectTrace(t *tester.Tester, tracer Tracer) {
	for _, hook := range t.Hooks() {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"tester %s already has tracer %s",
				t.Name(), reflect.TypeOf(tracer)))
		}
	}

	h := &traceHook{
		t:      tracer,
		tester: t,
		pins:   make(map[*clock.Clock]string),
	}

	for _, p := range t.Pins() {
		h.pins[p.Clock] = p.Name()
	}

	t.AcceptHook(h)
	t.AcceptPinHook(h)
}

// A traceHook turns hook invocations into tracer events.
type traceHook struct {
	t      Tracer
	tester *tester.Tester
	pins   map[*clock.Clock]string
}

// Func calls the tracer interfaces when the hook is triggered
func (h *traceHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case clock.HookPosClockTransition:
		h.clockTransition(ctx)
	case tester.HookPosTimesetChange:
		h.timesetChange(ctx)
	case tester.HookPosCycle:
		h.cycle(ctx)
	case tester.HookPosPinAdded:
		p := ctx.Item.(*pin.Pin)
		h.pins[p.Clock] = p.Name()
	}
}

func (h *traceHook) clockTransition(ctx hooking.HookCtx) {
	c := ctx.Item.(*clock.Clock)
	tr := ctx.Detail.(clock.Transition)

	event := ClockEvent{
		Tester:     h.tester.Name(),
		Pin:        h.pins[c],
		Clock:      c.Name(),
		Cycle:      h.tester.CurrentCycle(),
		Op:         string(tr.Op),
		From:       tr.From.String(),
		To:         tr.To.String(),
		HalfPeriod: tr.HalfPeriod,
	}

	if tr.Op == clock.OpEnable || tr.Op == clock.OpUpdate {
		event.Timeset = tr.Timeset.Name
		event.TimesetPeriod = float64(tr.Timeset.Period)
	}

	h.t.ClockTransition(event)
}

func (h *traceHook) timesetChange(ctx hooking.HookCtx) {
	change := ctx.Detail.(tester.TimesetChange)

	event := TimesetEvent{
		Tester:        h.tester.Name(),
		Cycle:         h.tester.CurrentCycle(),
		Current:       change.Current.Name,
		CurrentPeriod: float64(change.Current.Period),
	}

	if change.HadPrevious {
		event.Previous = change.Previous.Name
		event.PreviousPeriod = float64(change.Previous.Period)
	}

	h.t.TimesetChange(event)
}

func (h *traceHook) cycle(ctx hooking.HookCtx) {
	advance := ctx.Detail.(tester.CycleAdvance)

	h.t.Cycle(CycleEvent{
		Tester: h.tester.Name(),
		From:   advance.From,
		Count:  advance.Count,
		Cycle:  ctx.Item.(uint64),
	})
}
