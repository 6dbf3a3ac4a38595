package motor

import (
	"math"
	"testing"
)

func baseAxis() AxisConfig {
	return AxisConfig{
		Name:              "base",
		StepsPerRev:       400,
		GearRatio:         3,
		PositiveDirLevel:  true,
		EncoderSign:       1,
		Calibration:       Pulse{FreqHz: 250, Chunk: 1},
		Centering:         Pulse{FreqHz: 250, Chunk: 10},
		Movement:          Pulse{FreqHz: 250, Chunk: 10},
		HomeToCenterSteps: 290,
		HomeDirection:     Negative,
		MinTenths:         -900,
		MaxTenths:         1100,
		MaxHomingPulses:   20,
	}
}

func ringAxis() AxisConfig {
	a := baseAxis()
	a.Name = "ring"
	a.GearRatio = 1
	a.PositiveDirLevel = false
	a.HomeToCenterSteps = 114
	a.MaxTenths = 900
	return a
}

func TestStepsForTenths(t *testing.T) {
	cfg := baseAxis()
	tests := []struct {
		tenths   float64
		expected int32
	}{
		{450, 150},
		{-450, -150},
		{0, 0},
		{1, 0},   // 0.333 steps
		{2, 1},   // 0.667 steps
		{150, 50},
		{3600, 1200},
	}
	for _, tt := range tests {
		if got := cfg.StepsForTenths(tt.tenths); got != tt.expected {
			t.Errorf("StepsForTenths(%v): expected %d, got %d", tt.tenths, tt.expected, got)
		}
	}
}

func TestStepsToward(t *testing.T) {
	cfg := baseAxis()
	steps, dir := cfg.StepsToward(450)
	if steps != 150 || dir != Positive {
		t.Errorf("Expected 150 steps positive, got %d %s", steps, dir)
	}
	steps, dir = cfg.StepsToward(-150)
	if steps != 50 || dir != Negative {
		t.Errorf("Expected 50 steps negative, got %d %s", steps, dir)
	}
}

func TestAngleStepRoundTrip(t *testing.T) {
	for _, cfg := range []AxisConfig{baseAxis(), ringAxis()} {
		resolution := cfg.TenthsPerStep()
		for tenths := -900; tenths <= 1100; tenths += 7 {
			steps := cfg.StepsForTenths(float64(tenths))
			back := cfg.TenthsForSteps(steps)
			if math.Abs(back-float64(tenths)) > resolution {
				t.Errorf("%s: %d tenths -> %d steps -> %.3f tenths, beyond one step (%.3f)",
					cfg.Name, tenths, steps, back, resolution)
			}
		}
	}
}

func TestDirLevel(t *testing.T) {
	base, ring := baseAxis(), ringAxis()
	if !base.DirLevel(Positive) || base.DirLevel(Negative) {
		t.Error("Base axis: expected positive direction on a high pin")
	}
	if ring.DirLevel(Positive) || !ring.DirLevel(Negative) {
		t.Error("Ring axis: expected positive direction on a low pin")
	}
}

func TestNextChunkSequence(t *testing.T) {
	for _, c := range []uint32{1, 2, 3, 10, 64} {
		for _, n := range []uint32{0, 1, 9, 10, 11, 100, 110, 114, 1500, 1501} {
			var pulses []uint32
			remaining := n
			for {
				pulse, rest, last := NextChunk(remaining, c)
				if pulse > 0 {
					pulses = append(pulses, pulse)
				}
				if rest > remaining {
					t.Fatalf("n=%d c=%d: remainder grew from %d to %d", n, c, remaining, rest)
				}
				remaining = rest
				if last {
					break
				}
			}

			expected := int((n + c - 1) / c)
			if len(pulses) != expected {
				t.Errorf("n=%d c=%d: expected %d pulses, got %d", n, c, expected, len(pulses))
			}
			var sum uint32
			for i, p := range pulses {
				sum += p
				if i < len(pulses)-1 && p != c {
					t.Errorf("n=%d c=%d: pulse %d is %d, only the last may differ from the chunk", n, c, i, p)
				}
				if p > c {
					t.Errorf("n=%d c=%d: pulse %d of %d exceeds the chunk", n, c, i, p)
				}
			}
			if sum != n {
				t.Errorf("n=%d c=%d: pulses sum to %d", n, c, sum)
			}
		}
	}
}

func TestConfigValidate(t *testing.T) {
	good := Config{Axes: [NumAxes]AxisConfig{baseAxis(), ringAxis()}, Timing: DefaultTiming()}
	if err := good.Validate(); err != nil {
		t.Fatalf("Valid config rejected: %v", err)
	}

	mutations := map[string]func(c *Config){
		"steps":   func(c *Config) { c.Axes[0].StepsPerRev = 0 },
		"ratio":   func(c *Config) { c.Axes[1].GearRatio = 0 },
		"sign":    func(c *Config) { c.Axes[0].EncoderSign = 0 },
		"home":    func(c *Config) { c.Axes[0].HomeDirection = 0 },
		"range":   func(c *Config) { c.Axes[1].MinTenths = 900 },
		"cap":     func(c *Config) { c.Axes[0].MaxHomingPulses = 0 },
		"chunk":   func(c *Config) { c.Axes[0].Centering.Chunk = 0 },
		"freq":    func(c *Config) { c.Axes[1].Movement.FreqHz = 0 },
		"slow":    func(c *Config) { c.Axes[0].Calibration.FreqHz = MinPulseHz - 1 },
		"polling": func(c *Config) { c.Timing.FreePollMS = 0 },
	}
	floor := good
	floor.Axes[1].Centering.FreqHz = MinPulseHz
	if err := floor.Validate(); err != nil {
		t.Errorf("Pulse at the divider floor rejected: %v", err)
	}

	for name, mutate := range mutations {
		c := good
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}
