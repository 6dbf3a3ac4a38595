package core

import "testing"

type mockGPIO struct {
	levels  map[GPIOPin]bool
	rising  map[GPIOPin]int
	outputs map[GPIOPin]bool
	pulls   map[GPIOPin]string
}

func newMockGPIO() *mockGPIO {
	return &mockGPIO{
		levels:  make(map[GPIOPin]bool),
		rising:  make(map[GPIOPin]int),
		outputs: make(map[GPIOPin]bool),
		pulls:   make(map[GPIOPin]string),
	}
}

func (m *mockGPIO) ConfigureOutput(pin GPIOPin) error {
	m.outputs[pin] = true
	return nil
}

func (m *mockGPIO) ConfigureInputPullUp(pin GPIOPin) error {
	m.pulls[pin] = "up"
	return nil
}

func (m *mockGPIO) ConfigureInputPullDown(pin GPIOPin) error {
	m.pulls[pin] = "down"
	return nil
}

func (m *mockGPIO) SetPin(pin GPIOPin, value bool) error {
	if value && !m.levels[pin] {
		m.rising[pin]++
	}
	m.levels[pin] = value
	return nil
}

func (m *mockGPIO) ReadPin(pin GPIOPin) bool {
	return m.levels[pin]
}

func testStepperConfig() SoftStepperConfig {
	return SoftStepperConfig{StepPin: 2, DirPin: 3, EnablePin: 4, InvertEnable: true}
}

func TestSoftStepperEnable(t *testing.T) {
	ResetTimers()
	gpio := newMockGPIO()
	s, err := NewSoftStepper(gpio, testStepperConfig())
	if err != nil {
		t.Fatalf("NewSoftStepper failed: %v", err)
	}

	// Active-low enable: disabled drives the pin high
	if !gpio.levels[4] || s.Enabled() {
		t.Error("Expected stepper disabled with enable pin high after construction")
	}
	s.Enable()
	if gpio.levels[4] || !s.Enabled() {
		t.Error("Expected enable pin low after Enable")
	}
	s.Disable()
	if !gpio.levels[4] {
		t.Error("Expected enable pin high after Disable")
	}
}

func TestSoftStepperMove(t *testing.T) {
	ResetTimers()
	gpio := newMockGPIO()
	s, err := NewSoftStepper(gpio, testStepperConfig())
	if err != nil {
		t.Fatalf("NewSoftStepper failed: %v", err)
	}

	s.Move(true, 250, 10)
	if !s.Enabled() {
		t.Error("Move did not enable the driver")
	}
	if !gpio.levels[3] {
		t.Error("Expected direction pin high")
	}

	for i := uint32(0); i < PulseTicks(10, 250)-1; i++ {
		Tick()
	}
	if gpio.rising[2] != 9 {
		t.Errorf("Expected 9 pulses before the last tick, got %d", gpio.rising[2])
	}
	Tick()
	if gpio.rising[2] != 10 {
		t.Errorf("Expected 10 pulses, got %d", gpio.rising[2])
	}
	if s.IsActive() {
		t.Error("Stepper still active after all pulses")
	}
	if s.Position() != 10 {
		t.Errorf("Expected position 10, got %d", s.Position())
	}
}

func TestSoftStepperQueuedMoves(t *testing.T) {
	ResetTimers()
	gpio := newMockGPIO()
	s, _ := NewSoftStepper(gpio, testStepperConfig())

	s.Move(true, 500, 4)
	s.Move(false, 500, 6)

	for i := 0; i < 100; i++ {
		Tick()
	}
	if gpio.rising[2] != 10 {
		t.Errorf("Expected 10 pulses, got %d", gpio.rising[2])
	}
	if s.Position() != -2 {
		t.Errorf("Expected position -2, got %d", s.Position())
	}
}

func TestSoftStepperStop(t *testing.T) {
	ResetTimers()
	gpio := newMockGPIO()
	s, _ := NewSoftStepper(gpio, testStepperConfig())

	s.Move(true, 100, 50)
	for i := 0; i < 35; i++ {
		Tick()
	}
	s.Stop()
	for i := 0; i < 1000; i++ {
		Tick()
	}
	if gpio.rising[2] != 3 {
		t.Errorf("Expected 3 pulses before Stop, got %d", gpio.rising[2])
	}
}

func TestEndstopDebounce(t *testing.T) {
	gpio := newMockGPIO()
	e, err := NewEndstop(gpio, 8, true, 2)
	if err != nil {
		t.Fatalf("NewEndstop failed: %v", err)
	}
	if gpio.pulls[8] != "down" {
		t.Errorf("Expected pull-down on active-high endstop, got %q", gpio.pulls[8])
	}

	if e.Pressed() {
		t.Error("Open switch reported pressed")
	}
	gpio.levels[8] = true
	if e.Pressed() {
		t.Error("Pressed after a single sample")
	}
	if !e.Pressed() {
		t.Error("Not pressed after two samples")
	}
	gpio.levels[8] = false
	if e.Pressed() {
		t.Error("Still pressed after release")
	}
}

func TestFormatTenths(t *testing.T) {
	tests := map[int32]string{
		0:    "0.0",
		450:  "45.0",
		-150: "-15.0",
		-5:   "-0.5",
		1234: "123.4",
	}
	for in, expected := range tests {
		if got := FormatTenths(in); got != expected {
			t.Errorf("FormatTenths(%d): expected %q, got %q", in, expected, got)
		}
	}
	if Itoa(-42) != "-42" || Utoa(4096) != "4096" {
		t.Errorf("Expected -42 and 4096, got %s and %s", Itoa(-42), Utoa(4096))
	}
}
