package fsm

import (
	"github.com/librescoot/librefsm"

	"robot-controller/internal/types"
)

// NewDefinition creates the observed-mode tracker definition. The tracker
// starts in boot and can move from any state to any other mode state.
func NewDefinition(actions Actions) *librefsm.Definition {
	enter := map[types.Mode]func(c *librefsm.Context) error{
		types.ModeDisabled:   actions.EnterDisabled,
		types.ModeAutonomous: actions.EnterAutonomous,
		types.ModeTeleop:     actions.EnterTeleop,
		types.ModeTest:       actions.EnterTest,
		types.ModeEStop:      actions.EnterEStop,
	}

	def := librefsm.NewDefinition().
		State(StateBoot)

	for _, m := range types.Modes {
		def = def.State(StateForMode(m),
			librefsm.WithOnEnter(enter[m]),
		)
	}

	// === Transitions ===
	from := append([]librefsm.StateID{StateBoot}, modeStateList()...)
	for _, src := range from {
		for _, m := range types.Modes {
			dst := StateForMode(m)
			if src == dst {
				continue
			}
			def = def.Transition(src, EventForMode(m), dst)
		}
	}

	return def.Initial(StateBoot)
}

func modeStateList() []librefsm.StateID {
	states := make([]librefsm.StateID, 0, len(types.Modes))
	for _, m := range types.Modes {
		states = append(states, StateForMode(m))
	}
	return states
}
