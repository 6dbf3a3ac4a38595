// Package encoder reads the two AS5600 magnetic encoders. Both sit at the
// same address on one I2C controller whose pins are switched per axis.
package encoder

import (
	"errors"
	"fmt"
	"sync"

	"tinygo.org/x/drivers/as560x"

	"exerig/core"
	"exerig/motor"
)

// ErrBadAxis is returned for an axis id outside the rig
var ErrBadAxis = errors.New("encoder: no such axis")

// Sensor implements motor.AngleSensor. Reads are serialized, since
// selecting a channel reconfigures pins shared by both axes.
type Sensor struct {
	mu         sync.Mutex
	mux        core.I2CMux
	dev        as560x.AS5600Device
	configured [motor.NumAxes]bool
}

// New returns a sensor on mux; axis n is read on channel n
func New(mux core.I2CMux) *Sensor {
	return &Sensor{
		mux: mux,
		dev: as560x.NewAS5600(mux),
	}
}

// Read selects the axis channel, reads the 12-bit raw angle and releases
// the channel again.
func (s *Sensor) Read(axis motor.AxisID) (uint16, error) {
	if !axis.Valid() {
		return 0, ErrBadAxis
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := core.I2CChannel(axis)
	if err := s.mux.Select(ch); err != nil {
		return 0, err
	}
	raw, err := s.readSelected(axis)
	if rerr := s.mux.Release(ch); err == nil {
		err = rerr
	}
	if err != nil {
		return 0, err
	}
	return raw, nil
}

func (s *Sensor) readSelected(axis motor.AxisID) (uint16, error) {
	if !s.configured[axis] {
		if err := s.dev.Configure(as560x.Config{}); err != nil {
			return 0, fmt.Errorf("encoder: configure axis %s: %w", axis, err)
		}
		s.configured[axis] = true
	}
	raw, _, err := s.dev.RawAngle(as560x.ANGLE_NATIVE)
	if err != nil {
		return 0, err
	}
	return raw & motor.EncoderMask, nil
}
