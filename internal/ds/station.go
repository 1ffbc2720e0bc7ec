package ds

import (
	"errors"

	"robot-controller/internal/types"
)

var (
	ErrJoystickDNE      = errors.New("joystick port does not exist")
	ErrChannelDNE       = errors.New("joystick channel does not exist")
	ErrChannelUnplugged = errors.New("joystick channel missing, check that all controllers are plugged in")
)

// DriverStation is the read-only view of the shared snapshot handed to robot
// code. Every accessor reads the latest published snapshot.
type DriverStation struct {
	state *SharedState
}

func NewDriverStation(state *SharedState) *DriverStation {
	return &DriverStation{state: state}
}

// Snapshot returns the whole current snapshot. Use it when several values
// must come from the same packet.
func (d *DriverStation) Snapshot() types.OperatorSnapshot {
	return d.state.Read()
}

func (d *DriverStation) ControlWord() types.ControlWord {
	return d.state.Read().ControlWord
}

func (d *DriverStation) Mode() types.Mode {
	return d.state.Read().Mode()
}

func (d *DriverStation) IsFMSAttached() bool {
	return d.state.Read().ControlWord.FMSAttached
}

func (d *DriverStation) IsDSAttached() bool {
	return d.state.Read().ControlWord.DSAttached
}

func (d *DriverStation) Match() types.MatchInfo {
	return d.state.Read().Match
}

func (d *DriverStation) GameSpecificMessage() string {
	return d.state.Read().Match.GameSpecificMessage
}

func (d *DriverStation) Alliance() types.Alliance {
	return d.state.Read().Station.Alliance()
}

// Station returns the 1-based station number, 0 when unknown.
func (d *DriverStation) Station() int {
	return d.state.Read().Station.Number()
}

// JoystickAxis returns an axis value in [-1, 1].
func (d *DriverStation) JoystickAxis(stick, axis int) (float32, error) {
	js, err := d.joystick(stick)
	if err != nil {
		return 0, err
	}
	if axis < 0 || axis >= types.MaxJoystickAxes {
		return 0, ErrChannelDNE
	}
	if axis >= js.Axes.Count {
		return 0, ErrChannelUnplugged
	}
	return js.Axes.Axes[axis], nil
}

// JoystickPOV returns a hat angle in degrees, -1 when released.
func (d *DriverStation) JoystickPOV(stick, pov int) (int16, error) {
	js, err := d.joystick(stick)
	if err != nil {
		return 0, err
	}
	if pov < 0 || pov >= types.MaxJoystickPOVs {
		return 0, ErrChannelDNE
	}
	if pov >= js.POVs.Count {
		return 0, ErrChannelUnplugged
	}
	return js.POVs.POVs[pov], nil
}

// JoystickButton reports whether a button is held. Buttons are numbered from 1.
func (d *DriverStation) JoystickButton(stick, button int) (bool, error) {
	js, err := d.joystick(stick)
	if err != nil {
		return false, err
	}
	if button < 1 || button > types.MaxJoystickButtons {
		return false, ErrChannelDNE
	}
	if button > js.Buttons.Count {
		return false, ErrChannelUnplugged
	}
	return js.Buttons.Buttons&(1<<(button-1)) != 0, nil
}

func (d *DriverStation) joystick(stick int) (types.Joystick, error) {
	if stick < 0 || stick >= types.JoystickPorts {
		return types.Joystick{}, ErrJoystickDNE
	}
	return d.state.Read().Joysticks[stick], nil
}
