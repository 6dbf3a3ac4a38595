package core

// TickHz is the rate of the scheduler clock. One tick is one millisecond,
// which is the resolution of every time event in the rig.
const TickHz = 1000

var bootTime uint32

// GetTime returns the current scheduler time in ticks
func GetTime() uint32 {
	return getSystemTicks()
}

// SetTime sets the scheduler time (hardware clock sync and tests)
func SetTime(ticks uint32) {
	setSystemTicks(ticks)
}

// Tick advances the clock by one tick and runs the timers that became due.
func Tick() {
	setSystemTicks(getSystemTicks() + 1)
	ProcessTimers()
}

// Uptime returns the ticks elapsed since TimerInit
func Uptime() uint32 {
	return GetTime() - bootTime
}

// TicksFromMS converts milliseconds to ticks
func TicksFromMS(ms uint32) uint32 {
	return ms * TickHz / 1000
}

// PulseTicks returns the ticks needed to emit steps pulses at freqHz,
// rounded up so the caller never re-enters before the last pulse.
func PulseTicks(steps, freqHz uint32) uint32 {
	if freqHz == 0 || steps == 0 {
		return 0
	}
	return (steps*TickHz + freqHz - 1) / freqHz
}

// TimerInit records the boot time
func TimerInit() {
	bootTime = GetTime()
}

// ProcessTimers processes scheduled timers
func ProcessTimers() {
	currentTime = GetTime()
	TimerDispatch()
}
