// Package config holds the rig wiring and the controller constants, with
// a JSON loader for overriding them on the host.
package config

import (
	"encoding/json"
	"errors"
	"os"

	"exerig/core"
	"exerig/motor"
)

// AxisPins is the wiring of one axis
type AxisPins struct {
	Step    core.GPIOPin `json:"step"`
	Dir     core.GPIOPin `json:"dir"`
	Enable  core.GPIOPin `json:"enable"`
	EndStop core.GPIOPin `json:"endstop"`
	SDA     core.GPIOPin `json:"sda"` // Encoder pin pair on the shared I2C controller
	SCL     core.GPIOPin `json:"scl"`
}

// RigConfig is everything needed to bring up the rig
type RigConfig struct {
	Motor             motor.Config              `json:"motor"`
	Pins              [motor.NumAxes]AxisPins   `json:"pins"`
	InvertEnable      bool                      `json:"invert_enable"`       // Driver enable input is active low
	EndStopActiveHigh bool                      `json:"endstop_active_high"` // Switches pull the pin high when closed
	EndStopSamples    uint8                     `json:"endstop_samples"`
	I2CFrequency      uint32                    `json:"i2c_frequency"`
	EncoderAddress    core.I2CAddress           `json:"encoder_address"`
	MotorQueueLen     int                       `json:"motor_queue_len"`
	UIQueueLen        int                       `json:"ui_queue_len"`
}

// LoadConfig parses JSON over the default rig configuration, so a file
// only needs the values it changes.
func LoadConfig(jsonData []byte) (*RigConfig, error) {
	config := DefaultRigConfig()

	err := json.Unmarshal(jsonData, config)
	if err != nil {
		return nil, err
	}

	applyDefaults(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFile reads and parses a JSON configuration file
func LoadFile(path string) (*RigConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadConfig(data)
}

// applyDefaults fills in values left at zero
func applyDefaults(config *RigConfig) {
	if config.EndStopSamples == 0 {
		config.EndStopSamples = 1
	}
	if config.I2CFrequency == 0 {
		config.I2CFrequency = 1000000
	}
	if config.EncoderAddress == 0 {
		config.EncoderAddress = 0x36
	}
	if config.MotorQueueLen == 0 {
		config.MotorQueueLen = 16
	}
	if config.UIQueueLen == 0 {
		config.UIQueueLen = 16
	}

	t := &config.Motor.Timing
	def := motor.DefaultTiming()
	if t.SettleMS == 0 {
		t.SettleMS = def.SettleMS
	}
	if t.FreePollMS == 0 {
		t.FreePollMS = def.FreePollMS
	}

	for i := range config.Motor.Axes {
		axis := &config.Motor.Axes[i]
		if axis.HomeDirection == 0 {
			axis.HomeDirection = motor.Negative
		}
		if axis.MaxHomingPulses == 0 {
			axis.MaxHomingPulses = maxHomingPulses(axis)
		}
	}
}

// maxHomingPulses allows one and a half output turns of calibration
// pulses before homing gives up.
func maxHomingPulses(axis *motor.AxisConfig) uint32 {
	if axis.Calibration.Chunk == 0 {
		return 0
	}
	steps := float64(axis.StepsPerRev) * axis.GearRatio * 1.5
	return uint32(steps)/axis.Calibration.Chunk + 1
}

// Validate checks the controller constants and the pin assignment
func (c *RigConfig) Validate() error {
	if err := c.Motor.Validate(); err != nil {
		return err
	}
	used := make(map[core.GPIOPin]string)
	claim := func(pin core.GPIOPin, name string) error {
		if prev, ok := used[pin]; ok {
			return errors.New("pin " + core.Utoa(uint32(pin)) + " used by both " + prev + " and " + name)
		}
		used[pin] = name
		return nil
	}
	for i, p := range c.Pins {
		axis := "axis " + motor.AxisID(i).String()
		for _, pin := range []struct {
			pin  core.GPIOPin
			name string
		}{
			{p.Step, axis + " step"},
			{p.Dir, axis + " dir"},
			{p.Enable, axis + " enable"},
			{p.EndStop, axis + " endstop"},
			{p.SDA, axis + " sda"},
			{p.SCL, axis + " scl"},
		} {
			if err := claim(pin.pin, pin.name); err != nil {
				return err
			}
		}
	}
	return nil
}

// DefaultRigConfig returns the wiring and constants of the built rig:
// axis 1 is the base (3:1 belt), axis 2 the ring (direct drive).
func DefaultRigConfig() *RigConfig {
	config := &RigConfig{
		Motor: motor.Config{
			Axes: [motor.NumAxes]motor.AxisConfig{
				{
					Name:              "base",
					StepsPerRev:       400,
					GearRatio:         3,
					PositiveDirLevel:  true,
					EncoderSign:       -1,
					Calibration:       motor.Pulse{FreqHz: 250, Chunk: 1},
					Centering:         motor.Pulse{FreqHz: 50, Chunk: 2},
					Movement:          motor.Pulse{FreqHz: 50, Chunk: 2},
					HomeToCenterSteps: 290,
					HomeDirection:     motor.Negative,
					MinTenths:         -900,
					MaxTenths:         1100,
				},
				{
					Name:              "ring",
					StepsPerRev:       400,
					GearRatio:         1,
					PositiveDirLevel:  false,
					EncoderSign:       1,
					Calibration:       motor.Pulse{FreqHz: 250, Chunk: 1},
					Centering:         motor.Pulse{FreqHz: 50, Chunk: 2},
					Movement:          motor.Pulse{FreqHz: 50, Chunk: 2},
					HomeToCenterSteps: 114,
					HomeDirection:     motor.Negative,
					MinTenths:         -900,
					MaxTenths:         900,
				},
			},
			Timing: motor.DefaultTiming(),
		},
		Pins: [motor.NumAxes]AxisPins{
			{Step: 2, Dir: 3, Enable: 4, EndStop: 8, SDA: 10, SCL: 11},
			{Step: 5, Dir: 6, Enable: 7, EndStop: 9, SDA: 14, SCL: 15},
		},
		InvertEnable:      true,
		EndStopActiveHigh: true,
	}
	applyDefaults(config)
	return config
}
