//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"exerig/core"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWL = timerBase + 0x0C // Raw timer low word
)

var (
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))

	lastTickUS uint32
)

// GetHardwareTime reads the low 32 bits of the 1 MHz hardware timer
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}

// InitClock aligns the scheduler clock with the hardware timer
func InitClock() {
	core.TimerInit()
	lastTickUS = GetHardwareTime()
}

// UpdateSystemTime advances the scheduler by the whole milliseconds that
// have passed, running due timers after each tick. Called from the main
// loop.
func UpdateSystemTime() {
	const usPerTick = 1000000 / core.TickHz
	now := GetHardwareTime()
	for now-lastTickUS >= usPerTick {
		lastTickUS += usPerTick
		core.Tick()
	}
}
