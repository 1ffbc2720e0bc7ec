package types

const (
	JoystickPorts      = 6
	MaxJoystickAxes    = 12
	MaxJoystickPOVs    = 12
	MaxJoystickButtons = 32
)

type JoystickAxes struct {
	Count int
	Axes  [MaxJoystickAxes]float32
}

type JoystickPOVs struct {
	Count int
	POVs  [MaxJoystickPOVs]int16
}

// JoystickButtons stores button n (0-indexed) in bit n.
type JoystickButtons struct {
	Count   int
	Buttons uint32
}

// Joystick is the operator input of one port. The zero value is an
// unplugged controller.
type Joystick struct {
	Axes    JoystickAxes
	POVs    JoystickPOVs
	Buttons JoystickButtons
}

type MatchType int

const (
	MatchNone MatchType = iota
	MatchPractice
	MatchQualification
	MatchElimination
)

func (m MatchType) String() string {
	switch m {
	case MatchPractice:
		return "practice"
	case MatchQualification:
		return "qualification"
	case MatchElimination:
		return "elimination"
	default:
		return "none"
	}
}

type MatchInfo struct {
	EventName           string
	GameSpecificMessage string
	MatchNumber         uint16
	ReplayNumber        uint8
	Type                MatchType
}

type Alliance int

const (
	AllianceUnknown Alliance = iota
	AllianceRed
	AllianceBlue
)

func (a Alliance) String() string {
	switch a {
	case AllianceRed:
		return "red"
	case AllianceBlue:
		return "blue"
	default:
		return "unknown"
	}
}

// AllianceStation identifies the driver station position.
type AllianceStation int

const (
	StationUnknown AllianceStation = iota
	StationRed1
	StationRed2
	StationRed3
	StationBlue1
	StationBlue2
	StationBlue3
)

func (s AllianceStation) Alliance() Alliance {
	switch s {
	case StationRed1, StationRed2, StationRed3:
		return AllianceRed
	case StationBlue1, StationBlue2, StationBlue3:
		return AllianceBlue
	default:
		return AllianceUnknown
	}
}

// Number is the 1-based position within the alliance, 0 when unknown.
func (s AllianceStation) Number() int {
	switch s {
	case StationRed1, StationBlue1:
		return 1
	case StationRed2, StationBlue2:
		return 2
	case StationRed3, StationBlue3:
		return 3
	default:
		return 0
	}
}

// OperatorSnapshot is one complete capture of driver station data. It holds
// no references, so copies never alias.
type OperatorSnapshot struct {
	Sequence    uint64
	ControlWord ControlWord
	Station     AllianceStation
	Match       MatchInfo
	Joysticks   [JoystickPorts]Joystick
}

// Mode is shorthand for s.ControlWord.Mode().
func (s OperatorSnapshot) Mode() Mode {
	return s.ControlWord.Mode()
}
