//go:build !tinygo

package core

import "sync/atomic"

// The host clock is advanced from a ticker goroutine while the active
// objects read it, so it needs the same atomic access as the MCU build.
var systemTicks atomic.Uint32

func getSystemTicks() uint32 {
	return systemTicks.Load()
}

func setSystemTicks(ticks uint32) {
	systemTicks.Store(ticks)
}
