package motor

import "math"

// Tenths of a degree in one turn of the output
const tenthsPerTurn = 3600

// StepsForTenths converts an output angle to motor steps:
// round(tenths * gearRatio * stepsPerRev / 3600). The sign follows tenths.
func (c *AxisConfig) StepsForTenths(tenths float64) int32 {
	return int32(math.Round(tenths * c.GearRatio * float64(c.StepsPerRev) / tenthsPerTurn))
}

// TenthsPerStep is the output angle covered by one motor step
func (c *AxisConfig) TenthsPerStep() float64 {
	return tenthsPerTurn / (c.GearRatio * float64(c.StepsPerRev))
}

// TenthsForSteps converts motor steps to an output angle
func (c *AxisConfig) TenthsForSteps(steps int32) float64 {
	return float64(steps) * c.TenthsPerStep()
}

// DirLevel maps a logical direction to the direction pin level
func (c *AxisConfig) DirLevel(d Direction) bool {
	if d == Positive {
		return c.PositiveDirLevel
	}
	return !c.PositiveDirLevel
}

// StepsToward returns the unsigned step count and direction that cover
// deltaTenths.
func (c *AxisConfig) StepsToward(deltaTenths float64) (uint32, Direction) {
	steps := c.StepsForTenths(deltaTenths)
	if steps < 0 {
		return uint32(-steps), Negative
	}
	return uint32(steps), Positive
}

// NextChunk takes the next pulse off remaining. While at least one full
// chunk remains the pulse is a full chunk; otherwise the pulse is the
// remainder (possibly zero) and last is set.
func NextChunk(remaining, chunk uint32) (pulse, rest uint32, last bool) {
	if remaining < chunk {
		return remaining, 0, true
	}
	return chunk, remaining - chunk, false
}
