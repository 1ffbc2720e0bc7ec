package messaging

import (
	"encoding/json"
	"fmt"
	"math"

	"robot-controller/internal/types"
)

// Packet is one driver station packet as pushed by the bench console.
//
//	{"control":{"enabled":true,"ds_attached":true},"station":4,
//	 "match":{"event":"bench","type":"practice","number":3},
//	 "joysticks":[{"axes":[0,0.5],"povs":[-1],"buttons":[false,true]}]}
type Packet struct {
	Control   types.ControlWord `json:"control"`
	Station   int               `json:"station"`
	Match     MatchPacket       `json:"match"`
	Joysticks []JoystickPacket  `json:"joysticks"`
}

type MatchPacket struct {
	Event   string `json:"event"`
	Message string `json:"message"`
	Number  uint16 `json:"number"`
	Replay  uint8  `json:"replay"`
	Type    string `json:"type"`
}

type JoystickPacket struct {
	Axes    []float32 `json:"axes"`
	POVs    []int16   `json:"povs"`
	Buttons []bool    `json:"buttons"`
}

var matchTypes = map[string]types.MatchType{
	"":              types.MatchNone,
	"none":          types.MatchNone,
	"practice":      types.MatchPractice,
	"qualification": types.MatchQualification,
	"elimination":   types.MatchElimination,
}

// DecodePacket parses and validates a console packet. Axis values are
// clamped to [-1, 1].
func DecodePacket(data []byte) (types.OperatorSnapshot, error) {
	var p Packet
	if err := json.Unmarshal(data, &p); err != nil {
		return types.OperatorSnapshot{}, fmt.Errorf("invalid packet: %w", err)
	}
	return p.Snapshot()
}

// Snapshot converts the packet into an operator snapshot.
func (p Packet) Snapshot() (types.OperatorSnapshot, error) {
	var snap types.OperatorSnapshot

	snap.ControlWord = p.Control

	if p.Station < int(types.StationUnknown) || p.Station > int(types.StationBlue3) {
		return snap, fmt.Errorf("invalid alliance station %d", p.Station)
	}
	snap.Station = types.AllianceStation(p.Station)

	mt, ok := matchTypes[p.Match.Type]
	if !ok {
		return snap, fmt.Errorf("invalid match type %q", p.Match.Type)
	}
	snap.Match = types.MatchInfo{
		EventName:           p.Match.Event,
		GameSpecificMessage: p.Match.Message,
		MatchNumber:         p.Match.Number,
		ReplayNumber:        p.Match.Replay,
		Type:                mt,
	}

	if len(p.Joysticks) > types.JoystickPorts {
		return snap, fmt.Errorf("too many joysticks: %d", len(p.Joysticks))
	}
	for i, js := range p.Joysticks {
		j, err := js.joystick()
		if err != nil {
			return snap, fmt.Errorf("joystick %d: %w", i, err)
		}
		snap.Joysticks[i] = j
	}
	return snap, nil
}

func (js JoystickPacket) joystick() (types.Joystick, error) {
	var j types.Joystick

	if len(js.Axes) > types.MaxJoystickAxes {
		return j, fmt.Errorf("too many axes: %d", len(js.Axes))
	}
	if len(js.POVs) > types.MaxJoystickPOVs {
		return j, fmt.Errorf("too many POVs: %d", len(js.POVs))
	}
	if len(js.Buttons) > types.MaxJoystickButtons {
		return j, fmt.Errorf("too many buttons: %d", len(js.Buttons))
	}

	j.Axes.Count = len(js.Axes)
	for i, v := range js.Axes {
		j.Axes.Axes[i] = float32(math.Max(-1, math.Min(1, float64(v))))
	}

	j.POVs.Count = len(js.POVs)
	copy(j.POVs.POVs[:], js.POVs)

	j.Buttons.Count = len(js.Buttons)
	for i, pressed := range js.Buttons {
		if pressed {
			j.Buttons.Buttons |= 1 << uint(i)
		}
	}
	return j, nil
}
