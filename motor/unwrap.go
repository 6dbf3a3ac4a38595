package motor

import "math"

// AS5600 geometry and the bands used to spot a wrap between two polls
const (
	EncoderCounts = 4096
	EncoderMask   = EncoderCounts - 1

	wrapLow  = 500
	wrapHigh = 3595
)

// Unwrapper turns successive 12-bit encoder readings into a continuous
// multi-turn output angle. It assumes the shaft turns less than about
// 0.88 of a revolution between polls.
type Unwrapper struct {
	Sign      int8 // +1 if raw counts grow with positive rotation
	GearRatio float64

	zero  uint16
	last  uint16
	wraps int32
}

// NewUnwrapper returns an unwrapper zeroed at raw 0
func NewUnwrapper(sign int8, gearRatio float64) Unwrapper {
	return Unwrapper{Sign: sign, GearRatio: gearRatio}
}

// Reset makes raw the origin and clears the turn count
func (u *Unwrapper) Reset(raw uint16) {
	raw &= EncoderMask
	u.zero = raw
	u.last = raw
	u.wraps = 0
}

// Update feeds the next reading and returns the unwrapped angle in tenths
func (u *Unwrapper) Update(raw uint16) int32 {
	raw &= EncoderMask
	switch {
	case u.last > wrapHigh && raw < wrapLow:
		u.wraps++
	case u.last < wrapLow && raw > wrapHigh:
		u.wraps--
	}
	u.last = raw
	return u.Tenths()
}

// Resync accepts raw after a period without polls and picks the turn
// count that puts the angle closest to expectedTenths.
func (u *Unwrapper) Resync(raw uint16, expectedTenths float64) int32 {
	raw &= EncoderMask
	expected := expectedTenths * EncoderCounts * u.GearRatio / tenthsPerTurn
	u.wraps = int32(math.Round((float64(u.Sign)*expected - float64(raw) + float64(u.zero)) / EncoderCounts))
	u.last = raw
	return u.Tenths()
}

// Turns is the signed turn count in the positive rotation sense
func (u *Unwrapper) Turns() int32 {
	return int32(u.Sign) * u.wraps
}

// Zero returns the raw origin
func (u *Unwrapper) Zero() uint16 {
	return u.zero
}

// Last returns the latest raw reading
func (u *Unwrapper) Last() uint16 {
	return u.last
}

// Counts is the signed encoder distance from the origin
func (u *Unwrapper) Counts() int32 {
	return int32(u.Sign) * (u.wraps*EncoderCounts + int32(u.last) - int32(u.zero))
}

// Tenths is 3600 * counts / (4096 * gearRatio), rounded
func (u *Unwrapper) Tenths() int32 {
	return int32(math.Round(float64(u.Counts()) * tenthsPerTurn / (EncoderCounts * u.GearRatio)))
}
