package core

import "sync"

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TimingEvent captures one controller event for post-mortem analysis
type TimingEvent struct {
	EventType uint8  // Event type code
	OID       uint8  // Axis or object id
	Clock     uint32 // Scheduler ticks at event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtTransition  = 1 // State change: v1 from, v2 to
	EvtPulse       = 2 // Move issued: v1 steps, v2 frequency
	EvtEncoderRead = 3 // Encoder poll: v1 raw, v2 turns
	EvtTimerArm    = 4 // Time event armed: v1 timeout, v2 interval
	EvtFault       = 5 // Fault posted: v1 reason
	EvtQueueFull   = 6 // Post refused: v1 signal
)

const (
	TimingRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (set by platform code)
	debugPrintln DebugWriter = func(s string) {}

	// debugEnabled controls whether DebugPrintln produces output
	debugEnabled bool = false

	timingMu       sync.Mutex
	timingRing     [TimingRingSize]TimingEvent
	timingRingHead uint8
	timingEnabled  bool = true

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// InitAsyncDebug starts the async debug output goroutine.
// Call this from main() after SetDebugWriter.
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer.
// Blocks while the writer runs; use DebugAsync from time-critical paths.
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message for async output and drops it when
// the channel is full. Falls back to DebugPrintln before InitAsyncDebug.
func DebugAsync(msg string) {
	if !debugEnabled {
		return
	}
	if debugChan == nil {
		DebugPrintln(msg)
		return
	}
	select {
	case debugChan <- msg:
	default:
	}
}

// RecordTiming captures an event in the ring buffer
func RecordTiming(eventType, oid uint8, clock, value1, value2 uint32) {
	if !timingEnabled {
		return
	}
	timingMu.Lock()
	idx := timingRingHead
	timingRing[idx] = TimingEvent{
		EventType: eventType,
		OID:       oid,
		Clock:     clock,
		Value1:    value1,
		Value2:    value2,
	}
	timingRingHead = (idx + 1) % TimingRingSize
	timingMu.Unlock()
}

// TimingEvents returns the ring contents from oldest to newest
func TimingEvents() []TimingEvent {
	timingMu.Lock()
	defer timingMu.Unlock()

	var out []TimingEvent
	start := timingRingHead
	for i := uint8(0); i < TimingRingSize; i++ {
		evt := timingRing[(start+i)%TimingRingSize]
		if evt.EventType == 0 {
			continue
		}
		out = append(out, evt)
	}
	return out
}

// DumpTimingRing writes the ring buffer through the debug writer
// regardless of the enable flag. Called when a fault is raised.
func DumpTimingRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TIMING] === Timing Ring Dump ===")
	for _, evt := range TimingEvents() {
		var name string
		switch evt.EventType {
		case EvtTransition:
			name = "TRANSITION"
		case EvtPulse:
			name = "PULSE"
		case EvtEncoderRead:
			name = "ENCODER"
		case EvtTimerArm:
			name = "TIMER_ARM"
		case EvtFault:
			name = "FAULT!"
		case EvtQueueFull:
			name = "QUEUE_FULL!"
		default:
			name = "UNKNOWN"
		}

		debugPrintln("[TIMING] " + name +
			" oid=" + Itoa(int(evt.OID)) +
			" clock=" + Utoa(evt.Clock) +
			" v1=" + Utoa(evt.Value1) +
			" v2=" + Utoa(evt.Value2))
	}
	debugPrintln("[TIMING] === End Dump ===")
}

// ClearTimingRing clears the timing buffer
func ClearTimingRing() {
	timingMu.Lock()
	for i := range timingRing {
		timingRing[i] = TimingEvent{}
	}
	timingRingHead = 0
	timingMu.Unlock()
}
