package active

import (
	"context"
	"time"

	"exerig/core"
)

// TimeEvent posts its signal to the owner after a number of ticks, once
// or periodically.
type TimeEvent struct {
	sig   Signal
	owner Poster
	timer core.Timer
}

// NewTimeEvent returns a disarmed time event
func NewTimeEvent(sig Signal, owner Poster) *TimeEvent {
	te := &TimeEvent{sig: sig, owner: owner}
	te.timer.Handler = te.fire
	return te
}

// Arm schedules the event timeout ticks from now, then every interval
// ticks if interval is nonzero. Arming a pending event restarts it.
func (te *TimeEvent) Arm(timeout, interval uint32) {
	if timeout == 0 {
		timeout = 1
	}
	now := core.GetTime()
	core.ScheduleTimerAt(&te.timer, now+timeout, interval)
	core.RecordTiming(core.EvtTimerArm, 0, now, timeout, interval)
}

// Disarm cancels a pending timeout and reports whether one was pending
func (te *TimeEvent) Disarm() bool {
	return core.CancelTimer(&te.timer)
}

// Armed reports whether a timeout is pending
func (te *TimeEvent) Armed() bool {
	return core.TimerPending(&te.timer)
}

func (te *TimeEvent) fire(t *core.Timer) uint8 {
	MustPost(te.owner, Event{Sig: te.sig})
	if t.Period == 0 {
		return core.SF_DONE
	}
	t.WakeTime += t.Period
	return core.SF_RESCHEDULE
}

// RunTicker advances the core clock once per period and dispatches due
// timers until ctx is done. Hosts use it in place of a hardware tick.
func RunTicker(ctx context.Context, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			core.Tick()
		}
	}
}
