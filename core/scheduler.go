package core

// Timer is one entry of the tick scheduler. Handlers run with the
// scheduler locked and must not call ScheduleTimer or CancelTimer; they
// return SF_RESCHEDULE after moving WakeTime to run again.
type Timer struct {
	WakeTime uint32
	Period   uint32 // Reschedule step for periodic handlers, set by ScheduleTimerAt
	Handler  func(*Timer) uint8
	Next     *Timer
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

var (
	timerList   *Timer
	currentTime uint32
)

// due reports whether wake is at or before now, tolerating counter wrap
func due(wake, now uint32) bool {
	return int32(wake-now) <= 0
}

// ScheduleTimer adds a timer to the schedule. A timer that is already
// pending is moved to its new WakeTime.
func ScheduleTimer(t *Timer) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	removeTimer(t)
	insertTimer(t)
}

// ScheduleTimerAt sets the wake time and period of t and (re)schedules it
// in one locked section. Use it for timers that may be pending while
// another goroutine dispatches.
func ScheduleTimerAt(t *Timer, wake, period uint32) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	removeTimer(t)
	t.WakeTime = wake
	t.Period = period
	insertTimer(t)
}

// CancelTimer removes a pending timer and reports whether it was pending
func CancelTimer(t *Timer) bool {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	return removeTimer(t)
}

// TimerPending reports whether t is in the schedule
func TimerPending(t *Timer) bool {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	for cur := timerList; cur != nil; cur = cur.Next {
		if cur == t {
			return true
		}
	}
	return false
}

// ResetTimers drops every pending timer and rewinds the clock
func ResetTimers() {
	state := disableInterrupts()
	timerList = nil
	currentTime = 0
	restoreInterrupts(state)
	SetTime(0)
}

// insertTimer inserts a timer in sorted order by WakeTime. Equal wake
// times keep insertion order.
func insertTimer(t *Timer) {
	if timerList == nil || int32(t.WakeTime-timerList.WakeTime) < 0 {
		t.Next = timerList
		timerList = t
		return
	}

	current := timerList
	for current.Next != nil && int32(current.Next.WakeTime-t.WakeTime) <= 0 {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

func removeTimer(t *Timer) bool {
	if timerList == t {
		timerList = t.Next
		t.Next = nil
		return true
	}
	for cur := timerList; cur != nil; cur = cur.Next {
		if cur.Next == t {
			cur.Next = t.Next
			t.Next = nil
			return true
		}
	}
	return false
}

// TimerDispatch processes due timers
func TimerDispatch() {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	for timerList != nil && due(timerList.WakeTime, currentTime) {
		timer := timerList
		timerList = timer.Next
		timer.Next = nil

		if timer.Handler(timer) == SF_RESCHEDULE {
			insertTimer(timer)
		}
	}
}
