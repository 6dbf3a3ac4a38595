package config

import (
	"strings"
	"testing"

	"exerig/motor"
)

func TestDefaultRigConfig(t *testing.T) {
	cfg := DefaultRigConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}

	base := cfg.Motor.Axes[motor.Axis1]
	if base.GearRatio != 3 || base.StepsPerRev != 400 || base.HomeToCenterSteps != 290 {
		t.Errorf("Unexpected base axis constants: %+v", base)
	}
	ring := cfg.Motor.Axes[motor.Axis2]
	if ring.HomeToCenterSteps != 114 || ring.MaxTenths != 900 {
		t.Errorf("Unexpected ring axis constants: %+v", ring)
	}
	if cfg.EncoderAddress != 0x36 {
		t.Errorf("Expected encoder address 0x36, got 0x%x", cfg.EncoderAddress)
	}
	if cfg.I2CFrequency != 1000000 {
		t.Errorf("Expected 1 MHz I2C, got %d", cfg.I2CFrequency)
	}
	// 1.5 turns of 1200 steps at one step per pulse
	if base.MaxHomingPulses != 1801 {
		t.Errorf("Expected 1801 homing pulses for the base, got %d", base.MaxHomingPulses)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	data := []byte(`{
		"motor": {
			"axes": [
				{"name": "base", "gear_ratio": 5, "max_homing_pulses": 50},
				{"name": "ring", "home_to_center_steps": 120}
			],
			"timing": {"settle_ms": 250}
		},
		"motor_queue_len": 32
	}`)

	cfg, err := LoadConfig(data)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Motor.Axes[0].GearRatio != 5 {
		t.Errorf("Expected gear ratio 5, got %v", cfg.Motor.Axes[0].GearRatio)
	}
	if cfg.Motor.Axes[0].StepsPerRev != 400 {
		t.Errorf("Expected untouched steps_per_rev 400, got %d", cfg.Motor.Axes[0].StepsPerRev)
	}
	if cfg.Motor.Axes[0].MaxHomingPulses != 50 {
		t.Errorf("Expected max_homing_pulses 50, got %d", cfg.Motor.Axes[0].MaxHomingPulses)
	}
	if cfg.Motor.Axes[1].HomeToCenterSteps != 120 {
		t.Errorf("Expected home_to_center_steps 120, got %d", cfg.Motor.Axes[1].HomeToCenterSteps)
	}
	if cfg.Motor.Timing.SettleMS != 250 || cfg.Motor.Timing.FreePollMS != 10 {
		t.Errorf("Unexpected timing %+v", cfg.Motor.Timing)
	}
	if cfg.MotorQueueLen != 32 || cfg.UIQueueLen != 16 {
		t.Errorf("Expected queue lengths 32/16, got %d/%d", cfg.MotorQueueLen, cfg.UIQueueLen)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"syntax", `{"motor":`, "unexpected end"},
		{"gear", `{"motor":{"axes":[{"name":"base","gear_ratio":-1}]}}`, "gear_ratio"},
		{"range", `{"motor":{"axes":[{"name":"base","min_tenths":100,"max_tenths":100}]}}`, "min_tenths"},
		{"sign", `{"motor":{"axes":[{"name":"base","encoder_sign":2}]}}`, "encoder_sign"},
		{"chunk", `{"motor":{"axes":[{},{"name":"ring","movement":{"freq_hz":50,"chunk":0}}]}}`, "movement"},
		{"pins", `{"pins":[{"step":2,"dir":2}]}`, "pin 2"},
	}
	for _, tt := range tests {
		_, err := LoadConfig([]byte(tt.json))
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: expected error containing %q, got %v", tt.name, tt.want, err)
		}
	}
}
