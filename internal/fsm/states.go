package fsm

import (
	"github.com/librescoot/librefsm"

	"robot-controller/internal/types"
)

// Observed-mode states
const (
	StateBoot       librefsm.StateID = "boot"
	StateDisabled   librefsm.StateID = "disabled"
	StateAutonomous librefsm.StateID = "autonomous"
	StateTeleop     librefsm.StateID = "teleop"
	StateTest       librefsm.StateID = "test"
	StateEStop      librefsm.StateID = "estop"
)

// Mode change events, one per target mode
const (
	EvDisabled   librefsm.EventID = "mode:disabled"
	EvAutonomous librefsm.EventID = "mode:autonomous"
	EvTeleop     librefsm.EventID = "mode:teleop"
	EvTest       librefsm.EventID = "mode:test"
	EvEStop      librefsm.EventID = "mode:estop"
)

var modeStates = map[types.Mode]librefsm.StateID{
	types.ModeDisabled:   StateDisabled,
	types.ModeAutonomous: StateAutonomous,
	types.ModeTeleop:     StateTeleop,
	types.ModeTest:       StateTest,
	types.ModeEStop:      StateEStop,
}

var modeEvents = map[types.Mode]librefsm.EventID{
	types.ModeDisabled:   EvDisabled,
	types.ModeAutonomous: EvAutonomous,
	types.ModeTeleop:     EvTeleop,
	types.ModeTest:       EvTest,
	types.ModeEStop:      EvEStop,
}

// StateForMode returns the tracker state for m.
func StateForMode(m types.Mode) librefsm.StateID {
	if id, ok := modeStates[m]; ok {
		return id
	}
	return StateDisabled
}

// EventForMode returns the event that moves the tracker into m.
func EventForMode(m types.Mode) librefsm.EventID {
	if ev, ok := modeEvents[m]; ok {
		return ev
	}
	return EvDisabled
}

// ModeForState maps a tracker state back to its mode. Boot has none.
func ModeForState(id librefsm.StateID) (types.Mode, bool) {
	for m, s := range modeStates {
		if s == id {
			return m, true
		}
	}
	return types.ModeDisabled, false
}
