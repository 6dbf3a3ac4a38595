// Package sim is a software model of the rig: shafts that follow the step
// pins, end-stop switches and AS5600 registers that report the shaft
// angle. It implements the GPIO and I2C interfaces the firmware drives, so
// the real controller stack runs on top of it.
package sim

import (
	"errors"
	"math"
	"sync"

	"exerig/config"
	"exerig/core"
	"exerig/encoder"
	"exerig/motor"
)

var (
	ErrNotSelected = errors.New("sim: no I2C channel selected")
	ErrBusBusy     = errors.New("sim: I2C pins already routed to another channel")
	ErrNack        = errors.New("sim: no device at address")
	ErrInjected    = errors.New("sim: injected bus error")
)

// AS5600 registers the model keeps current
const (
	regStatus   = 0x0B
	regRawAngle = 0x0C
	regAngle    = 0x0E
	statusMD    = 0x20 // Magnet detected
)

type pinRole uint8

const (
	roleStep pinRole = iota + 1
	roleDir
	roleEnable
	roleEndStop
)

type pinUse struct {
	axis motor.AxisID
	role pinRole
}

// ShaftSetup places one simulated axis
type ShaftSetup struct {
	EndStopAt int32  // Motor step position where the switch closes
	RawOffset uint16 // Encoder reading at position 0
}

type shaft struct {
	setup    ShaftSetup
	axis     motor.AxisConfig
	position int32
	dirLevel bool
	enabled  bool
	pulses   uint32
}

// Rig is the simulated hardware of both axes
type Rig struct {
	mu       sync.Mutex
	cfg      *config.RigConfig
	shafts   [motor.NumAxes]shaft
	pins     map[core.GPIOPin]pinUse
	levels   map[core.GPIOPin]bool
	selected int
	regs     [motor.NumAxes][256]byte
	regPtr   [motor.NumAxes]uint8
	fail     [motor.NumAxes]int

	Steppers [motor.NumAxes]*core.SoftStepper
	EndStops [motor.NumAxes]*core.Endstop
	Sensor   *encoder.Sensor
}

// NewRig builds the model and the firmware drivers that sit on it
func NewRig(cfg *config.RigConfig, setups [motor.NumAxes]ShaftSetup) (*Rig, error) {
	r := &Rig{
		cfg:      cfg,
		pins:     make(map[core.GPIOPin]pinUse),
		levels:   make(map[core.GPIOPin]bool),
		selected: -1,
	}
	for i := range r.shafts {
		ax := motor.AxisID(i)
		p := cfg.Pins[i]
		r.shafts[i] = shaft{setup: setups[i], axis: cfg.Motor.Axes[i]}
		r.pins[p.Step] = pinUse{ax, roleStep}
		r.pins[p.Dir] = pinUse{ax, roleDir}
		r.pins[p.Enable] = pinUse{ax, roleEnable}
		r.pins[p.EndStop] = pinUse{ax, roleEndStop}
	}

	for i := range r.shafts {
		p := cfg.Pins[i]
		s, err := core.NewSoftStepper(r, core.SoftStepperConfig{
			StepPin:      p.Step,
			DirPin:       p.Dir,
			EnablePin:    p.Enable,
			InvertEnable: cfg.InvertEnable,
		})
		if err != nil {
			return nil, err
		}
		r.Steppers[i] = s
		e, err := core.NewEndstop(r, p.EndStop, cfg.EndStopActiveHigh, cfg.EndStopSamples)
		if err != nil {
			return nil, err
		}
		r.EndStops[i] = e
	}
	r.Sensor = encoder.New(r)
	return r, nil
}

// Hardware returns the drivers in the shape the controller takes
func (r *Rig) Hardware() motor.Hardware {
	var hw motor.Hardware
	for i := range r.shafts {
		hw.Steppers[i] = r.Steppers[i]
		hw.EndStops[i] = r.EndStops[i]
	}
	hw.Sensor = r.Sensor
	return hw
}

// Position returns the motor step position of an axis
func (r *Rig) Position(ax motor.AxisID) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shafts[ax].position
}

// SetPosition moves a shaft without stepping, as if placed by hand
// before power-up.
func (r *Rig) SetPosition(ax motor.AxisID, pos int32) {
	r.mu.Lock()
	r.shafts[ax].position = pos
	r.mu.Unlock()
}

// Pulses returns the step pulses an axis has received while enabled
func (r *Rig) Pulses(ax motor.AxisID) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shafts[ax].pulses
}

// Enabled reports whether holding torque is applied
func (r *Rig) Enabled(ax motor.AxisID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shafts[ax].enabled
}

// Rotate turns a shaft by hand. It refuses while holding torque is on.
func (r *Rig) Rotate(ax motor.AxisID, steps int32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.shafts[ax].enabled {
		return false
	}
	r.shafts[ax].position += steps
	return true
}

// Raw returns what the encoder of an axis reads now
func (r *Rig) Raw(ax motor.AxisID) uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.raw(ax)
}

func (r *Rig) raw(ax motor.AxisID) uint16 {
	s := &r.shafts[ax]
	counts := math.Round(float64(s.position) * motor.EncoderCounts / float64(s.axis.StepsPerRev))
	v := int64(s.setup.RawOffset) + int64(s.axis.EncoderSign)*int64(counts)
	v %= motor.EncoderCounts
	if v < 0 {
		v += motor.EncoderCounts
	}
	return uint16(v)
}

// FailReads makes the next n encoder transactions of an axis fail
func (r *Rig) FailReads(ax motor.AxisID, n int) {
	r.mu.Lock()
	r.fail[ax] = n
	r.mu.Unlock()
}

func (r *Rig) pressed(ax motor.AxisID) bool {
	s := &r.shafts[ax]
	if s.axis.HomeDirection == motor.Positive {
		return s.position >= s.setup.EndStopAt
	}
	return s.position <= s.setup.EndStopAt
}
