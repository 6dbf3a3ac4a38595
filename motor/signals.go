package motor

import (
	"exerig/active"
	"exerig/core"
)

// Commands accepted by the controller
const (
	StartCalibrationSig active.Signal = active.UserSig + iota
	FreeAxisSig
	RequestAngleSig
	BlockAxisSig
	MoveToSig
	RequestStatusSig

	// Posted to the UI
	CalibrationAckSig
	AngleReplySig
	MoveAckSig
	FaultSig
	StatusReplySig
)

var signalNames = map[active.Signal]string{
	StartCalibrationSig: "start-calibration",
	FreeAxisSig:         "free-axis",
	RequestAngleSig:     "request-angle",
	BlockAxisSig:        "block-axis",
	MoveToSig:           "move-to",
	RequestStatusSig:    "request-status",
	CalibrationAckSig:   "calibration-ack",
	AngleReplySig:       "angle-reply",
	MoveAckSig:          "move-ack",
	FaultSig:            "fault",
	StatusReplySig:      "status-reply",
	active.InitSig:      "init",
	active.TimeoutSig:   "timeout",
}

// SignalName returns a printable name for sig
func SignalName(sig active.Signal) string {
	if n, ok := signalNames[sig]; ok {
		return n
	}
	return "signal-" + core.Itoa(int(sig))
}

// AxisPayload carries the axis of FreeAxis, RequestAngle, BlockAxis and
// MoveAck.
type AxisPayload struct {
	Axis AxisID
}

// MovePayload carries a MoveTo target
type MovePayload struct {
	Axis   AxisID
	Tenths int32
}

// AnglePayload carries an AngleReply
type AnglePayload struct {
	Axis   AxisID
	Tenths int32
}

// FaultReason classifies a fault
type FaultReason uint8

const (
	FaultSensor FaultReason = iota + 1
	FaultHomingTimeout
	FaultOutOfRange
)

func (r FaultReason) String() string {
	switch r {
	case FaultSensor:
		return "sensor"
	case FaultHomingTimeout:
		return "homing_timeout"
	case FaultOutOfRange:
		return "out_of_range"
	}
	return "unknown"
}

// FaultPayload carries a Fault
type FaultPayload struct {
	Axis   AxisID
	Reason FaultReason
	Err    error
}

// AxisSnapshot is the runtime state of one axis
type AxisSnapshot struct {
	EncoderAngleTenths int32
	EncoderTurns       int32
	EncoderLastRead    uint16
	EncoderZero        uint16
	PositionTenths     float64
	GoalTenths         int32
	HomingPulses       uint32
}

// StatusPayload carries a StatusReply
type StatusPayload struct {
	State State
	Axes  [NumAxes]AxisSnapshot
}
