package motor

import "errors"

var (
	// ErrOutOfRange rejects a MoveTo target outside the axis range
	ErrOutOfRange = errors.New("target outside axis range")

	// ErrHomingTimeout reports an end-stop that was never reached
	ErrHomingTimeout = errors.New("end-stop not reached")
)

// SensorError wraps a failed encoder read
type SensorError struct {
	Axis AxisID
	Err  error
}

func (e *SensorError) Error() string {
	return "encoder " + e.Axis.String() + ": " + e.Err.Error()
}

func (e *SensorError) Unwrap() error {
	return e.Err
}
