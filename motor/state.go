package motor

// Mode is the top-level controller mode
type Mode uint8

const (
	ModeHoming Mode = iota
	ModeCentering
	ModeWaiting
	ModeMoving
	ModeFree
	ModeFault
)

var modeNames = [...]string{"homing", "centering", "waiting", "moving", "free", "fault"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// CenterPhase splits Centering into issuing pulses and deciding what
// comes next once they are out.
type CenterPhase uint8

const (
	CenterPending CenterPhase = iota
	CenterDone
)

func (p CenterPhase) String() string {
	if p == CenterDone {
		return "done"
	}
	return "pending"
}

// State is the full controller state. Axis is meaningful for every mode
// except Waiting, Phase only for Centering.
type State struct {
	Mode  Mode
	Axis  AxisID
	Phase CenterPhase
}

func (s State) String() string {
	switch s.Mode {
	case ModeWaiting:
		return s.Mode.String()
	case ModeCentering:
		return s.Mode.String() + "(" + s.Axis.String() + "," + s.Phase.String() + ")"
	}
	return s.Mode.String() + "(" + s.Axis.String() + ")"
}

type axisRule uint8

const (
	anyAxis   axisRule = iota
	sameAxis           // target axis equals source axis
	nextAxis           // axis 1 hands over to axis 2
	firstAxis          // target is axis 1
)

type transitionRule struct {
	from      Mode
	fromPhase CenterPhase
	to        Mode
	toPhase   CenterPhase
	axis      axisRule
}

// transitionTable lists every state change the controller may make.
// Phases are compared only where the mode is Centering.
var transitionTable = []transitionRule{
	{from: ModeHoming, to: ModeCentering, toPhase: CenterPending, axis: sameAxis},
	{from: ModeHoming, to: ModeFault, axis: sameAxis},
	{from: ModeCentering, fromPhase: CenterPending, to: ModeCentering, toPhase: CenterDone, axis: sameAxis},
	{from: ModeCentering, fromPhase: CenterDone, to: ModeWaiting, axis: anyAxis},
	{from: ModeCentering, fromPhase: CenterDone, to: ModeHoming, axis: nextAxis},
	{from: ModeCentering, fromPhase: CenterDone, to: ModeFault, axis: sameAxis},
	{from: ModeWaiting, to: ModeMoving, axis: anyAxis},
	{from: ModeWaiting, to: ModeFree, axis: anyAxis},
	{from: ModeMoving, to: ModeWaiting, axis: anyAxis},
	{from: ModeFree, to: ModeCentering, toPhase: CenterPending, axis: sameAxis},
	{from: ModeFree, to: ModeFault, axis: sameAxis},
	{from: ModeFault, to: ModeHoming, axis: firstAxis},
}

// Allowed reports whether the controller may go from one state to another
func Allowed(from, to State) bool {
	for _, r := range transitionTable {
		if r.from != from.Mode || r.to != to.Mode {
			continue
		}
		if from.Mode == ModeCentering && r.fromPhase != from.Phase {
			continue
		}
		if to.Mode == ModeCentering && r.toPhase != to.Phase {
			continue
		}
		switch r.axis {
		case sameAxis:
			if to.Axis != from.Axis {
				continue
			}
		case nextAxis:
			if from.Axis != Axis1 || to.Axis != Axis2 {
				continue
			}
		case firstAxis:
			if to.Axis != Axis1 {
				continue
			}
		}
		return true
	}
	return false
}
