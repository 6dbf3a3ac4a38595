package core

// Scheduler-driven step generation on plain GPIO pins. Each pulse is one
// timer event, so the step rate is limited to TickHz.

const (
	// Queue size for pending moves
	SoftStepperQueueSize = 4
)

// SoftStepperMove is one queued Move call
type SoftStepperMove struct {
	Interval uint32 // Ticks between pulses
	Count    uint32 // Pulses left
	Dir      bool   // Direction pin level
}

// SoftStepperConfig holds the pins of one driver
type SoftStepperConfig struct {
	StepPin      GPIOPin
	DirPin       GPIOPin
	EnablePin    GPIOPin
	InvertEnable bool // Enable input is active low
}

// SoftStepper implements StepGenerator by toggling GPIO pins from the tick
// scheduler. Moves issued while pulses are still going out are queued.
type SoftStepper struct {
	cfg  SoftStepperConfig
	gpio GPIODriver

	Queue     [SoftStepperQueueSize]SoftStepperMove
	QueueHead uint8
	QueueTail uint8

	StepTimer Timer
	current   SoftStepperMove
	position  int64
	enabled   bool
}

// NewSoftStepper configures the pins and returns a disabled stepper
func NewSoftStepper(gpio GPIODriver, cfg SoftStepperConfig) (*SoftStepper, error) {
	for _, pin := range []GPIOPin{cfg.StepPin, cfg.DirPin, cfg.EnablePin} {
		if err := gpio.ConfigureOutput(pin); err != nil {
			return nil, err
		}
	}
	s := &SoftStepper{cfg: cfg, gpio: gpio}
	s.StepTimer.Handler = s.stepEventHandler
	s.gpio.SetPin(cfg.StepPin, false)
	s.Disable()
	return s, nil
}

// Name returns backend implementation name
func (s *SoftStepper) Name() string {
	return "gpio-soft"
}

// Enable drives the enable pin to its active level
func (s *SoftStepper) Enable() {
	s.gpio.SetPin(s.cfg.EnablePin, !s.cfg.InvertEnable)
	s.enabled = true
}

// Disable drives the enable pin to its inactive level
func (s *SoftStepper) Disable() {
	s.gpio.SetPin(s.cfg.EnablePin, s.cfg.InvertEnable)
	s.enabled = false
}

// Enabled reports whether holding torque is applied
func (s *SoftStepper) Enabled() bool {
	return s.enabled
}

// Move queues steps pulses at freqHz
func (s *SoftStepper) Move(dir bool, freqHz uint32, steps uint32) {
	if steps == 0 || freqHz == 0 {
		return
	}
	interval := uint32(TickHz) / freqHz
	if interval == 0 {
		interval = 1
	}

	s.Enable()

	state := disableInterrupts()
	defer restoreInterrupts(state)

	nextTail := (s.QueueTail + 1) % SoftStepperQueueSize
	if nextTail == s.QueueHead {
		DebugPrintln("[STEP] move queue overflow, dropped " + Utoa(steps) + " steps")
		return
	}
	s.Queue[s.QueueTail] = SoftStepperMove{Interval: interval, Count: steps, Dir: dir}
	s.QueueTail = nextTail

	if s.current.Count == 0 {
		s.loadNextMove(currentTimeOrClock())
	}
}

// currentTimeOrClock picks the later of the dispatch time and the clock so
// a move issued between ticks starts from now.
func currentTimeOrClock() uint32 {
	now := GetTime()
	if int32(currentTime-now) > 0 {
		return currentTime
	}
	return now
}

// loadNextMove starts the next queued move. Called with the scheduler locked.
func (s *SoftStepper) loadNextMove(from uint32) {
	if s.QueueHead == s.QueueTail {
		s.current.Count = 0
		return
	}
	s.current = s.Queue[s.QueueHead]
	s.QueueHead = (s.QueueHead + 1) % SoftStepperQueueSize
	s.gpio.SetPin(s.cfg.DirPin, s.current.Dir)

	s.StepTimer.WakeTime = from + s.current.Interval
	removeTimer(&s.StepTimer)
	insertTimer(&s.StepTimer)
}

// stepEventHandler emits one pulse per timer event
func (s *SoftStepper) stepEventHandler(t *Timer) uint8 {
	// Step HIGH
	s.gpio.SetPin(s.cfg.StepPin, true)
	// Step LOW
	s.gpio.SetPin(s.cfg.StepPin, false)

	if s.current.Dir {
		s.position++
	} else {
		s.position--
	}
	s.current.Count--

	if s.current.Count > 0 {
		t.WakeTime += s.current.Interval
		return SF_RESCHEDULE
	}

	if s.QueueHead == s.QueueTail {
		return SF_DONE
	}
	s.current = s.Queue[s.QueueHead]
	s.QueueHead = (s.QueueHead + 1) % SoftStepperQueueSize
	s.gpio.SetPin(s.cfg.DirPin, s.current.Dir)
	t.WakeTime += s.current.Interval
	return SF_RESCHEDULE
}

// Position returns the signed count of pulses emitted, positive for a
// high direction pin
func (s *SoftStepper) Position() int64 {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return s.position
}

// IsActive returns true while pulses are pending
func (s *SoftStepper) IsActive() bool {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return s.current.Count > 0 || s.QueueHead != s.QueueTail
}

// Stop drops the queue and any pulses not yet emitted
func (s *SoftStepper) Stop() {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	s.current.Count = 0
	s.QueueHead = 0
	s.QueueTail = 0
	removeTimer(&s.StepTimer)
}
