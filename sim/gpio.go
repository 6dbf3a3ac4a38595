package sim

import (
	"errors"

	"exerig/core"
)

// ErrUnknownPin is returned for pins the rig has no wiring for
var ErrUnknownPin = errors.New("sim: pin not wired")

func (r *Rig) configure(pin core.GPIOPin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pins[pin]; !ok {
		return ErrUnknownPin
	}
	return nil
}

// ConfigureOutput implements core.GPIODriver
func (r *Rig) ConfigureOutput(pin core.GPIOPin) error {
	return r.configure(pin)
}

// ConfigureInputPullUp implements core.GPIODriver
func (r *Rig) ConfigureInputPullUp(pin core.GPIOPin) error {
	return r.configure(pin)
}

// ConfigureInputPullDown implements core.GPIODriver
func (r *Rig) ConfigureInputPullDown(pin core.GPIOPin) error {
	return r.configure(pin)
}

// SetPin implements core.GPIODriver. A rising edge on a step pin moves an
// enabled shaft one step in the direction set by its dir pin.
func (r *Rig) SetPin(pin core.GPIOPin, value bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	use, ok := r.pins[pin]
	if !ok {
		return ErrUnknownPin
	}
	prev := r.levels[pin]
	r.levels[pin] = value

	s := &r.shafts[use.axis]
	switch use.role {
	case roleStep:
		if value && !prev && s.enabled {
			s.pulses++
			if s.dirLevel == s.axis.PositiveDirLevel {
				s.position++
			} else {
				s.position--
			}
		}
	case roleDir:
		s.dirLevel = value
	case roleEnable:
		s.enabled = value != r.cfg.InvertEnable
	}
	return nil
}

// ReadPin implements core.GPIODriver. End-stop pins follow the shaft.
func (r *Rig) ReadPin(pin core.GPIOPin) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	use, ok := r.pins[pin]
	if !ok {
		return false
	}
	if use.role == roleEndStop {
		return r.pressed(use.axis) == r.cfg.EndStopActiveHigh
	}
	return r.levels[pin]
}
