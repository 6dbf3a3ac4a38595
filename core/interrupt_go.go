//go:build !tinygo

package core

import "sync"

// State is the saved mask returned by disableInterrupts
type State uintptr

// schedMu stands in for the interrupt mask on the host, where timers are
// armed from active object goroutines while the ticker dispatches them.
var schedMu sync.Mutex

func disableInterrupts() State {
	schedMu.Lock()
	return 0
}

func restoreInterrupts(state State) {
	schedMu.Unlock()
}
