package motor

import (
	"errors"

	"exerig/core"
)

// AxisID selects one of the two axes. Axis1 is the base rotation and
// Axis2 the ring; they are printed 1-based.
type AxisID uint8

const (
	Axis1 AxisID = iota
	Axis2
	NumAxes = 2
)

func (a AxisID) String() string {
	switch a {
	case Axis1:
		return "1"
	case Axis2:
		return "2"
	}
	return "?"
}

// Valid reports whether a names a configured axis
func (a AxisID) Valid() bool {
	return a < NumAxes
}

// Direction is a logical rotation sense, mapped to a pin level per axis
type Direction int8

const (
	Negative Direction = -1
	Positive Direction = 1
)

func (d Direction) String() string {
	if d == Positive {
		return "+"
	}
	return "-"
}

// MinPulseHz is the slowest step rate the PIO clock divider reaches at
// 125 MHz with a 64-cycle pulse loop.
const MinPulseHz = 30

// Pulse is the frequency and chunk size used by one kind of sequence
type Pulse struct {
	FreqHz uint32 `json:"freq_hz"`
	Chunk  uint32 `json:"chunk"`
}

// AxisConfig is fixed for the life of the controller
type AxisConfig struct {
	Name              string    `json:"name"`
	StepsPerRev       uint32    `json:"steps_per_rev"`
	GearRatio         float64   `json:"gear_ratio"`
	PositiveDirLevel  bool      `json:"positive_dir_level"` // Dir pin level for positive rotation
	EncoderSign       int8      `json:"encoder_sign"`       // +1 if raw counts grow with positive rotation
	Calibration       Pulse     `json:"calibration"`
	Centering         Pulse     `json:"centering"`
	Movement          Pulse     `json:"movement"`
	HomeToCenterSteps uint32    `json:"home_to_center_steps"`
	HomeDirection     Direction `json:"home_direction"`
	MinTenths         int32     `json:"min_tenths"`
	MaxTenths         int32     `json:"max_tenths"`
	MaxHomingPulses   uint32    `json:"max_homing_pulses"`
}

// Timing holds the waits shared by both axes, in milliseconds
type Timing struct {
	SettleMS      uint32 `json:"settle_ms"`       // Pause after the last centering pulse
	FreePollMS    uint32 `json:"free_poll_ms"`    // Encoder poll period in free-run
	PulseMarginMS uint32 `json:"pulse_margin_ms"` // Added to every pulse duration
}

// Config is the complete controller configuration
type Config struct {
	Axes   [NumAxes]AxisConfig `json:"axes"`
	Timing Timing              `json:"timing"`
}

// DefaultTiming is the settle, poll and margin the rig was tuned with
func DefaultTiming() Timing {
	return Timing{SettleMS: 100, FreePollMS: 10, PulseMarginMS: 2}
}

// Validate checks one axis
func (c *AxisConfig) Validate() error {
	prefix := "axis " + c.Name + ": "
	switch {
	case c.StepsPerRev == 0:
		return errors.New(prefix + "steps_per_rev must be positive")
	case c.GearRatio <= 0:
		return errors.New(prefix + "gear_ratio must be positive")
	case c.EncoderSign != 1 && c.EncoderSign != -1:
		return errors.New(prefix + "encoder_sign must be 1 or -1")
	case c.HomeDirection != Positive && c.HomeDirection != Negative:
		return errors.New(prefix + "home_direction must be 1 or -1")
	case c.MinTenths >= c.MaxTenths:
		return errors.New(prefix + "min_tenths must be below max_tenths")
	case c.MaxHomingPulses == 0:
		return errors.New(prefix + "max_homing_pulses must be positive")
	}
	for _, p := range []struct {
		name string
		p    Pulse
	}{{"calibration", c.Calibration}, {"centering", c.Centering}, {"movement", c.Movement}} {
		if p.p.FreqHz == 0 || p.p.Chunk == 0 {
			return errors.New(prefix + p.name + " pulse needs a frequency and chunk size")
		}
		if p.p.FreqHz < MinPulseHz {
			return errors.New(prefix + p.name + " pulse below " + core.Utoa(MinPulseHz) + " Hz")
		}
	}
	return nil
}

// Validate checks every axis and the timing
func (c *Config) Validate() error {
	for i := range c.Axes {
		if err := c.Axes[i].Validate(); err != nil {
			return err
		}
	}
	if c.Timing.FreePollMS == 0 {
		return errors.New("timing: free_poll_ms must be positive")
	}
	return nil
}
