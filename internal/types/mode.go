package types

// Mode is the robot operating mode. It selects which lifecycle callbacks run.
type Mode int

const (
	ModeDisabled Mode = iota
	ModeAutonomous
	ModeTeleop
	ModeTest
	ModeEStop
)

// Modes lists every mode in declaration order.
var Modes = []Mode{ModeDisabled, ModeAutonomous, ModeTeleop, ModeTest, ModeEStop}

func (m Mode) String() string {
	switch m {
	case ModeDisabled:
		return "disabled"
	case ModeAutonomous:
		return "autonomous"
	case ModeTeleop:
		return "teleop"
	case ModeTest:
		return "test"
	case ModeEStop:
		return "estop"
	default:
		return "unknown"
	}
}

// Enabled reports whether outputs are live in this mode.
func (m Mode) Enabled() bool {
	return m == ModeAutonomous || m == ModeTeleop || m == ModeTest
}

// ControlWord is the status bitfield reported by the driver station.
type ControlWord struct {
	Enabled     bool `json:"enabled"`
	Autonomous  bool `json:"autonomous"`
	Test        bool `json:"test"`
	EStop       bool `json:"estop"`
	FMSAttached bool `json:"fms_attached"`
	DSAttached  bool `json:"ds_attached"`
}

// Mode derives the operating mode. The test bit wins over everything else,
// e-stop only matters while disabled.
func (c ControlWord) Mode() Mode {
	switch {
	case c.Test:
		return ModeTest
	case c.Enabled && c.Autonomous:
		return ModeAutonomous
	case c.Enabled:
		return ModeTeleop
	case c.EStop:
		return ModeEStop
	default:
		return ModeDisabled
	}
}

// Bits packs the control word in HAL bit order (enabled is bit 0).
func (c ControlWord) Bits() uint32 {
	var b uint32
	for i, set := range []bool{c.Enabled, c.Autonomous, c.Test, c.EStop, c.FMSAttached, c.DSAttached} {
		if set {
			b |= 1 << i
		}
	}
	return b
}

// ControlWordFromBits is the inverse of Bits.
func ControlWordFromBits(b uint32) ControlWord {
	return ControlWord{
		Enabled:     b&(1<<0) != 0,
		Autonomous:  b&(1<<1) != 0,
		Test:        b&(1<<2) != 0,
		EStop:       b&(1<<3) != 0,
		FMSAttached: b&(1<<4) != 0,
		DSAttached:  b&(1<<5) != 0,
	}
}
