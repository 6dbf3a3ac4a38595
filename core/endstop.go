package core

// Endstop is a mechanical limit switch on a GPIO input. Pressed only
// reports true after SampleCount consecutive reads at the trigger level,
// which filters switch bounce across successive polls.
type Endstop struct {
	Pin          GPIOPin
	ActiveHigh   bool  // Pin level when the switch is closed
	SampleCount  uint8 // Consecutive samples required
	triggerCount uint8
	gpio         GPIODriver
}

// NewEndstop configures pin as an input. Active-high switches get a
// pull-down so an open switch reads low, active-low ones a pull-up.
func NewEndstop(gpio GPIODriver, pin GPIOPin, activeHigh bool, sampleCount uint8) (*Endstop, error) {
	var err error
	if activeHigh {
		err = gpio.ConfigureInputPullDown(pin)
	} else {
		err = gpio.ConfigureInputPullUp(pin)
	}
	if err != nil {
		return nil, err
	}
	if sampleCount == 0 {
		sampleCount = 1
	}
	return &Endstop{
		Pin:         pin,
		ActiveHigh:  activeHigh,
		SampleCount: sampleCount,
		gpio:        gpio,
	}, nil
}

// Pressed samples the pin once and reports the debounced state
func (e *Endstop) Pressed() bool {
	if e.gpio.ReadPin(e.Pin) == e.ActiveHigh {
		if e.triggerCount < e.SampleCount {
			e.triggerCount++
		}
	} else {
		e.triggerCount = 0
	}
	return e.triggerCount >= e.SampleCount
}
