//go:build tinygo

package core

import "runtime/interrupt"

// disableInterrupts masks interrupts so the timer list can be edited from
// the main loop while the tick handler is idle.
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}
