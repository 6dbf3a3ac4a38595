package motor

import "testing"

func allStates() []State {
	var out []State
	for _, ax := range []AxisID{Axis1, Axis2} {
		out = append(out,
			State{Mode: ModeHoming, Axis: ax},
			State{Mode: ModeCentering, Axis: ax, Phase: CenterPending},
			State{Mode: ModeCentering, Axis: ax, Phase: CenterDone},
			State{Mode: ModeMoving, Axis: ax},
			State{Mode: ModeFree, Axis: ax},
			State{Mode: ModeFault, Axis: ax},
		)
	}
	return append(out, State{Mode: ModeWaiting})
}

// reachable is the transition table written out state by state
func reachable(from, to State) bool {
	switch from.Mode {
	case ModeHoming:
		return (to.Mode == ModeCentering && to.Phase == CenterPending && to.Axis == from.Axis) ||
			(to.Mode == ModeFault && to.Axis == from.Axis)
	case ModeCentering:
		if from.Phase == CenterPending {
			return to.Mode == ModeCentering && to.Phase == CenterDone && to.Axis == from.Axis
		}
		return to.Mode == ModeWaiting ||
			(to.Mode == ModeHoming && from.Axis == Axis1 && to.Axis == Axis2) ||
			(to.Mode == ModeFault && to.Axis == from.Axis)
	case ModeWaiting:
		return to.Mode == ModeMoving || to.Mode == ModeFree
	case ModeMoving:
		return to.Mode == ModeWaiting
	case ModeFree:
		return (to.Mode == ModeCentering && to.Phase == CenterPending && to.Axis == from.Axis) ||
			(to.Mode == ModeFault && to.Axis == from.Axis)
	case ModeFault:
		return to.Mode == ModeHoming && to.Axis == Axis1
	}
	return false
}

func TestAllowedMatchesTransitionTable(t *testing.T) {
	for _, from := range allStates() {
		for _, to := range allStates() {
			if got, want := Allowed(from, to), reachable(from, to); got != want {
				t.Errorf("Allowed(%s, %s): expected %v, got %v", from, to, want, got)
			}
		}
	}
}

func TestAllowedSpotChecks(t *testing.T) {
	tests := []struct {
		from, to State
		ok       bool
	}{
		{State{Mode: ModeHoming, Axis: Axis1}, State{Mode: ModeCentering, Axis: Axis1}, true},
		{State{Mode: ModeHoming, Axis: Axis1}, State{Mode: ModeWaiting}, false},
		{State{Mode: ModeHoming, Axis: Axis1}, State{Mode: ModeCentering, Axis: Axis2}, false},
		{State{Mode: ModeCentering, Axis: Axis1}, State{Mode: ModeWaiting}, false},
		{State{Mode: ModeCentering, Axis: Axis2, Phase: CenterDone}, State{Mode: ModeHoming, Axis: Axis1}, false},
		{State{Mode: ModeCentering, Axis: Axis1, Phase: CenterDone}, State{Mode: ModeHoming, Axis: Axis2}, true},
		{State{Mode: ModeWaiting}, State{Mode: ModeCentering, Axis: Axis1}, false},
		{State{Mode: ModeMoving, Axis: Axis2}, State{Mode: ModeFree, Axis: Axis2}, false},
		{State{Mode: ModeFree, Axis: Axis2}, State{Mode: ModeWaiting}, false},
		{State{Mode: ModeFree, Axis: Axis2}, State{Mode: ModeCentering, Axis: Axis1}, false},
		{State{Mode: ModeFault, Axis: Axis2}, State{Mode: ModeHoming, Axis: Axis1}, true},
	}
	for _, tt := range tests {
		if got := Allowed(tt.from, tt.to); got != tt.ok {
			t.Errorf("Allowed(%s, %s): expected %v, got %v", tt.from, tt.to, tt.ok, got)
		}
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		{Mode: ModeHoming, Axis: Axis1}:                      "homing(1)",
		{Mode: ModeCentering, Axis: Axis2, Phase: CenterDone}: "centering(2,done)",
		{Mode: ModeWaiting}:                                  "waiting",
		{Mode: ModeFault, Axis: Axis2}:                       "fault(2)",
	}
	for s, expected := range tests {
		if got := s.String(); got != expected {
			t.Errorf("Expected %q, got %q", expected, got)
		}
	}
}
