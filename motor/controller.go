// Package motor is the two-axis motor controller: homing against the
// end-stops, centering to the zero reference, chunked point-to-point
// moves and free-run angle tracking from the absolute encoders.
package motor

import (
	"errors"

	"exerig/active"
	"exerig/core"
)

// EndStop reports the mechanical limit switch of one axis
type EndStop interface {
	Pressed() bool
}

// AngleSensor reads the raw 12-bit encoder angle of an axis
type AngleSensor interface {
	Read(axis AxisID) (uint16, error)
}

// Timer is the controller's time event
type Timer interface {
	Arm(timeout, interval uint32)
	Disarm() bool
}

// Hardware is everything the controller drives
type Hardware struct {
	Steppers [NumAxes]core.StepGenerator
	EndStops [NumAxes]EndStop
	Sensor   AngleSensor
}

type axisState struct {
	unwrap             Unwrapper
	encoderAngleTenths int32
	// Integrated from commanded steps, never checked against the encoder
	currentPositionTenths float64
	goalPositionTenths    int32
	homingPulses          uint32
}

// Controller is the motor active object's dispatch target. All methods
// except the constructor and SetTimer run on the object's worker.
type Controller struct {
	cfg     Config
	hw      Hardware
	ui      active.Poster
	timer   Timer
	axes    [NumAxes]axisState
	state   State
	refused int

	pastState      Mode
	centeringSteps uint32
	centeringDir   Direction
	movementSteps  uint32
	movementDir    Direction
	calibrating    bool

	// OnTransition, when set, sees every state change
	OnTransition func(from, to State)
}

type stateHandler func(c *Controller, e active.Event)

var stateHandlers = [...]stateHandler{
	ModeHoming:    (*Controller).homing,
	ModeCentering: (*Controller).centering,
	ModeWaiting:   (*Controller).waiting,
	ModeMoving:    (*Controller).moving,
	ModeFree:      (*Controller).free,
	ModeFault:     (*Controller).faulted,
}

// NewController validates cfg and returns a controller in Homing(1) with
// both steppers disabled. Call SetTimer before dispatching.
func NewController(cfg Config, hw Hardware, ui active.Poster) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for i := 0; i < NumAxes; i++ {
		if hw.Steppers[i] == nil || hw.EndStops[i] == nil {
			return nil, errors.New("motor: axis " + AxisID(i).String() + " hardware missing")
		}
	}
	if hw.Sensor == nil {
		return nil, errors.New("motor: angle sensor missing")
	}
	if ui == nil {
		return nil, errors.New("motor: ui poster missing")
	}

	c := &Controller{
		cfg:   cfg,
		hw:    hw,
		ui:    ui,
		state: State{Mode: ModeHoming, Axis: Axis1},
	}
	for i := range c.axes {
		ac := &cfg.Axes[i]
		c.axes[i].unwrap = NewUnwrapper(ac.EncoderSign, ac.GearRatio)
		hw.Steppers[i].Disable()
	}
	return c, nil
}

// SetTimer installs the time event that posts TimeoutSig back to the
// controller's queue.
func (c *Controller) SetTimer(t Timer) {
	c.timer = t
}

// NewActive wraps c in an active object with its own time event
func NewActive(c *Controller, queueLen int) *active.Active {
	ao := active.New("motors", queueLen, c)
	c.SetTimer(active.NewTimeEvent(active.TimeoutSig, ao))
	return ao
}

// Dispatch handles one event to completion
func (c *Controller) Dispatch(e active.Event) {
	switch e.Sig {
	case active.InitSig:
		core.DebugPrintln("[MOTOR] ready, " + c.state.String())
		return
	case RequestStatusSig:
		c.post(StatusReplySig, c.Status())
		return
	}
	stateHandlers[c.state.Mode](c, e)
}

// State returns the current state
func (c *Controller) State() State {
	return c.state
}

// Status returns the state and a snapshot of both axes
func (c *Controller) Status() StatusPayload {
	s := StatusPayload{State: c.state}
	for i := range c.axes {
		a := &c.axes[i]
		s.Axes[i] = AxisSnapshot{
			EncoderAngleTenths: a.encoderAngleTenths,
			EncoderTurns:       a.unwrap.Turns(),
			EncoderLastRead:    a.unwrap.Last(),
			EncoderZero:        a.unwrap.Zero(),
			PositionTenths:     a.currentPositionTenths,
			GoalTenths:         a.goalPositionTenths,
			HomingPulses:       a.homingPulses,
		}
	}
	return s
}

// Centering returns the centering steps left and their direction
func (c *Controller) Centering() (uint32, Direction) {
	return c.centeringSteps, c.centeringDir
}

// Movement returns the movement steps left and their direction
func (c *Controller) Movement() (uint32, Direction) {
	return c.movementSteps, c.movementDir
}

// Refused counts transitions rejected by the transition table
func (c *Controller) Refused() int {
	return c.refused
}

func (c *Controller) homing(e active.Event) {
	switch e.Sig {
	case StartCalibrationSig:
		if c.calibrating {
			return
		}
		c.calibrating = true
		c.axes[c.state.Axis].homingPulses = 0
		c.homeStep()
	case active.TimeoutSig:
		if c.calibrating {
			c.homeStep()
		}
	default:
		c.ignore(e)
	}
}

// homeStep checks the end-stop and either starts centering or issues one
// more calibration pulse toward it.
func (c *Controller) homeStep() {
	ax := c.state.Axis
	cfg := &c.cfg.Axes[ax]
	st := &c.axes[ax]

	if c.hw.EndStops[ax].Pressed() {
		core.DebugAsync("[MOTOR] axis " + ax.String() + " end-stop after " + core.Utoa(st.homingPulses) + " pulses")
		c.pastState = ModeHoming
		c.centeringSteps = cfg.HomeToCenterSteps
		c.centeringDir = -cfg.HomeDirection
		c.transition(State{Mode: ModeCentering, Axis: ax, Phase: CenterPending})
		c.armVoid()
		return
	}

	if st.homingPulses >= cfg.MaxHomingPulses {
		c.fault(ax, FaultHomingTimeout, ErrHomingTimeout)
		return
	}
	st.homingPulses++
	c.pulse(ax, cfg.HomeDirection, cfg.Calibration.FreqHz, cfg.Calibration.Chunk)
	c.timer.Arm(c.pulseWait(cfg.Calibration.FreqHz, cfg.Calibration.Chunk), 0)
}

func (c *Controller) centering(e active.Event) {
	if e.Sig != active.TimeoutSig {
		c.ignore(e)
		return
	}
	ax := c.state.Axis
	cfg := &c.cfg.Axes[ax]
	st := &c.axes[ax]

	if c.state.Phase == CenterPending {
		pulse, rest, last := NextChunk(c.centeringSteps, cfg.Centering.Chunk)
		c.centeringSteps = rest
		if pulse > 0 {
			c.pulse(ax, c.centeringDir, cfg.Centering.FreqHz, pulse)
		}
		wait := c.pulseWait(cfg.Centering.FreqHz, pulse)
		if last {
			c.transition(State{Mode: ModeCentering, Axis: ax, Phase: CenterDone})
			wait += core.TicksFromMS(c.cfg.Timing.SettleMS)
		}
		c.timer.Arm(wait, 0)
		return
	}

	st.currentPositionTenths = 0
	st.goalPositionTenths = 0

	if c.pastState != ModeHoming {
		// Back at the zero the session was captured at
		st.encoderAngleTenths = 0
		c.transition(State{Mode: ModeWaiting})
		return
	}

	raw, err := c.read(ax)
	if err != nil {
		c.fault(ax, FaultSensor, err)
		return
	}
	st.unwrap.Reset(raw)
	st.encoderAngleTenths = 0

	if ax == Axis1 {
		c.axes[Axis2].homingPulses = 0
		c.transition(State{Mode: ModeHoming, Axis: Axis2})
		c.armVoid()
		return
	}
	c.calibrating = false
	c.transition(State{Mode: ModeWaiting})
	c.post(CalibrationAckSig, nil)
}

func (c *Controller) waiting(e active.Event) {
	switch e.Sig {
	case MoveToSig:
		p, ok := e.Data.(MovePayload)
		if !ok || !p.Axis.Valid() {
			c.ignore(e)
			return
		}
		cfg := &c.cfg.Axes[p.Axis]
		if p.Tenths < cfg.MinTenths || p.Tenths > cfg.MaxTenths {
			c.reportFault(p.Axis, FaultOutOfRange, ErrOutOfRange)
			return
		}
		st := &c.axes[p.Axis]
		st.goalPositionTenths = p.Tenths
		c.movementSteps, c.movementDir = cfg.StepsToward(float64(p.Tenths) - st.currentPositionTenths)
		core.DebugAsync("[MOTOR] move axis " + p.Axis.String() + " to " + core.FormatTenths(p.Tenths) +
			", " + core.Utoa(c.movementSteps) + " steps " + c.movementDir.String())
		c.transition(State{Mode: ModeMoving, Axis: p.Axis})
		c.armVoid()
	case FreeAxisSig:
		ax, ok := axisOf(e)
		if !ok {
			c.ignore(e)
			return
		}
		c.hw.Steppers[ax].Disable()
		c.transition(State{Mode: ModeFree, Axis: ax})
		// Baseline the angle now so a block before the first poll
		// centers from where the shaft actually is.
		st := &c.axes[ax]
		raw, err := c.read(ax)
		if err != nil {
			c.hw.Steppers[ax].Enable()
			c.fault(ax, FaultSensor, err)
			return
		}
		st.encoderAngleTenths = st.unwrap.Resync(raw, st.currentPositionTenths)
		c.timer.Arm(core.TicksFromMS(c.cfg.Timing.FreePollMS), 0)
	default:
		c.ignore(e)
	}
}

func (c *Controller) moving(e active.Event) {
	if e.Sig != active.TimeoutSig {
		c.ignore(e)
		return
	}
	ax := c.state.Axis
	cfg := &c.cfg.Axes[ax]
	st := &c.axes[ax]

	pulse, rest, _ := NextChunk(c.movementSteps, cfg.Movement.Chunk)
	c.movementSteps = rest
	if pulse > 0 {
		c.pulse(ax, c.movementDir, cfg.Movement.FreqHz, pulse)
		st.currentPositionTenths += float64(c.movementDir) * cfg.TenthsForSteps(int32(pulse))
		c.timer.Arm(c.pulseWait(cfg.Movement.FreqHz, pulse), 0)
		return
	}
	// A zero pulse only comes with last; the previous chunk is out.
	c.transition(State{Mode: ModeWaiting})
	c.post(MoveAckSig, AxisPayload{Axis: ax})
}

func (c *Controller) free(e active.Event) {
	ax := c.state.Axis
	st := &c.axes[ax]

	switch e.Sig {
	case active.TimeoutSig:
		raw, err := c.read(ax)
		if err != nil {
			c.hw.Steppers[ax].Enable()
			c.fault(ax, FaultSensor, err)
			return
		}
		st.encoderAngleTenths = st.unwrap.Update(raw)
		c.timer.Arm(core.TicksFromMS(c.cfg.Timing.FreePollMS), 0)
	case RequestAngleSig:
		if a, ok := axisOf(e); ok && a == ax {
			c.post(AngleReplySig, AnglePayload{Axis: ax, Tenths: st.encoderAngleTenths})
			return
		}
		c.ignore(e)
	case BlockAxisSig:
		if a, ok := axisOf(e); !ok || a != ax {
			c.ignore(e)
			return
		}
		c.timer.Disarm()
		c.hw.Steppers[ax].Enable()
		c.centeringSteps, c.centeringDir = c.cfg.Axes[ax].StepsToward(-float64(st.encoderAngleTenths))
		c.pastState = ModeFree
		c.transition(State{Mode: ModeCentering, Axis: ax, Phase: CenterPending})
		c.armVoid()
	default:
		c.ignore(e)
	}
}

func (c *Controller) faulted(e active.Event) {
	if e.Sig != StartCalibrationSig {
		c.ignore(e)
		return
	}
	for i := range c.axes {
		c.axes[i].homingPulses = 0
	}
	c.calibrating = true
	c.transition(State{Mode: ModeHoming, Axis: Axis1})
	c.homeStep()
}

func (c *Controller) transition(to State) {
	from := c.state
	if !Allowed(from, to) {
		c.refused++
		core.DebugPrintln("[MOTOR] refused transition " + from.String() + " -> " + to.String())
		return
	}
	c.state = to
	core.RecordTiming(core.EvtTransition, uint8(to.Axis), core.GetTime(), uint32(from.Mode), uint32(to.Mode))
	core.DebugAsync("[MOTOR] " + from.String() + " -> " + to.String())
	if c.OnTransition != nil {
		c.OnTransition(from, to)
	}
}

func (c *Controller) pulse(ax AxisID, dir Direction, freqHz, steps uint32) {
	c.hw.Steppers[ax].Move(c.cfg.Axes[ax].DirLevel(dir), freqHz, steps)
	core.RecordTiming(core.EvtPulse, uint8(ax), core.GetTime(), steps, freqHz)
}

// pulseWait is how long steps pulses at freqHz take, plus the margin
func (c *Controller) pulseWait(freqHz, steps uint32) uint32 {
	return core.PulseTicks(steps, freqHz) + core.TicksFromMS(c.cfg.Timing.PulseMarginMS)
}

// armVoid re-enters the controller on the next tick
func (c *Controller) armVoid() {
	c.timer.Arm(1, 0)
}

func (c *Controller) read(ax AxisID) (uint16, error) {
	raw, err := c.hw.Sensor.Read(ax)
	if err != nil {
		return 0, &SensorError{Axis: ax, Err: err}
	}
	core.RecordTiming(core.EvtEncoderRead, uint8(ax), core.GetTime(), uint32(raw), uint32(c.axes[ax].unwrap.Turns()))
	return raw, nil
}

func (c *Controller) post(sig active.Signal, data any) {
	active.MustPost(c.ui, active.Event{Sig: sig, Data: data})
}

// reportFault posts a Fault without changing state
func (c *Controller) reportFault(ax AxisID, reason FaultReason, err error) {
	core.RecordTiming(core.EvtFault, uint8(ax), core.GetTime(), uint32(reason), 0)
	core.DebugPrintln("[MOTOR] fault axis " + ax.String() + " " + reason.String() + ": " + err.Error())
	c.post(FaultSig, FaultPayload{Axis: ax, Reason: reason, Err: err})
}

// fault freezes the controller until the next StartCalibration
func (c *Controller) fault(ax AxisID, reason FaultReason, err error) {
	c.timer.Disarm()
	c.calibrating = false
	c.reportFault(ax, reason, err)
	c.transition(State{Mode: ModeFault, Axis: ax})
	core.DumpTimingRing()
}

func (c *Controller) ignore(e active.Event) {
	core.DebugAsync("[MOTOR] " + SignalName(e.Sig) + " ignored in " + c.state.String())
}

func axisOf(e active.Event) (AxisID, bool) {
	switch p := e.Data.(type) {
	case AxisPayload:
		return p.Axis, p.Axis.Valid()
	case MovePayload:
		return p.Axis, p.Axis.Valid()
	}
	return 0, false
}
