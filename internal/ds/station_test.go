package ds

import (
	"errors"
	"testing"

	"robot-controller/internal/types"
)

func newTestStation() *DriverStation {
	state := NewSharedState(nil)
	var snap types.OperatorSnapshot
	snap.ControlWord = types.ControlWord{Enabled: true, FMSAttached: true, DSAttached: true}
	snap.Station = types.StationRed3
	snap.Match = types.MatchInfo{EventName: "week0", GameSpecificMessage: "LRL", MatchNumber: 4, Type: types.MatchQualification}
	snap.Joysticks[1] = types.Joystick{
		Axes:    types.JoystickAxes{Count: 2, Axes: [types.MaxJoystickAxes]float32{0.25, -1}},
		POVs:    types.JoystickPOVs{Count: 1, POVs: [types.MaxJoystickPOVs]int16{90}},
		Buttons: types.JoystickButtons{Count: 4, Buttons: 0b0101},
	}
	state.Publish(snap)
	return NewDriverStation(state)
}

func TestDriverStationStatus(t *testing.T) {
	d := newTestStation()

	if d.Mode() != types.ModeTeleop {
		t.Errorf("Expected teleop, got %v", d.Mode())
	}
	if !d.IsFMSAttached() || !d.IsDSAttached() {
		t.Error("Expected FMS and DS attached")
	}
	if d.Alliance() != types.AllianceRed || d.Station() != 3 {
		t.Errorf("Expected red 3, got %v %d", d.Alliance(), d.Station())
	}
	if d.GameSpecificMessage() != "LRL" {
		t.Errorf("Expected LRL, got %q", d.GameSpecificMessage())
	}
	if d.Match().Type != types.MatchQualification {
		t.Errorf("Expected qualification, got %v", d.Match().Type)
	}
	if d.Snapshot().Sequence != 1 {
		t.Errorf("Expected sequence 1, got %d", d.Snapshot().Sequence)
	}
}

func TestDriverStationJoystickAxis(t *testing.T) {
	d := newTestStation()
	tests := []struct {
		name        string
		stick, axis int
		want        float32
		err         error
	}{
		{"first axis", 1, 0, 0.25, nil},
		{"second axis", 1, 1, -1, nil},
		{"unplugged axis", 1, 2, 0, ErrChannelUnplugged},
		{"axis out of range", 1, types.MaxJoystickAxes, 0, ErrChannelDNE},
		{"unplugged stick", 0, 0, 0, ErrChannelUnplugged},
		{"stick out of range", types.JoystickPorts, 0, 0, ErrJoystickDNE},
		{"negative stick", -1, 0, 0, ErrJoystickDNE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.JoystickAxis(tt.stick, tt.axis)
			if !errors.Is(err, tt.err) {
				t.Fatalf("Expected error %v, got %v", tt.err, err)
			}
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDriverStationJoystickButton(t *testing.T) {
	d := newTestStation()
	tests := []struct {
		name   string
		button int
		want   bool
		err    error
	}{
		{"button 1 held", 1, true, nil},
		{"button 2 released", 2, false, nil},
		{"button 3 held", 3, true, nil},
		{"button 5 unplugged", 5, false, ErrChannelUnplugged},
		{"button 0 invalid", 0, false, ErrChannelDNE},
		{"button 33 invalid", 33, false, ErrChannelDNE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.JoystickButton(1, tt.button)
			if !errors.Is(err, tt.err) {
				t.Fatalf("Expected error %v, got %v", tt.err, err)
			}
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDriverStationJoystickPOV(t *testing.T) {
	d := newTestStation()

	got, err := d.JoystickPOV(1, 0)
	if err != nil || got != 90 {
		t.Errorf("Expected 90, got %d (%v)", got, err)
	}
	if _, err := d.JoystickPOV(1, 1); !errors.Is(err, ErrChannelUnplugged) {
		t.Errorf("Expected unplugged, got %v", err)
	}
	if _, err := d.JoystickPOV(1, types.MaxJoystickPOVs); !errors.Is(err, ErrChannelDNE) {
		t.Errorf("Expected channel DNE, got %v", err)
	}
}
