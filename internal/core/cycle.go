package core

import (
	"robot-controller/internal/types"
)

// ModeFor derives the operating mode from a control word.
func ModeFor(cw types.ControlWord) types.Mode {
	return cw.Mode()
}

func callInit(robot Robot, m types.Mode) {
	switch m {
	case types.ModeAutonomous:
		robot.AutonomousInit()
	case types.ModeTeleop:
		robot.TeleopInit()
	case types.ModeTest:
		robot.TestInit()
	default:
		// EStop shares the disabled callbacks.
		robot.DisabledInit()
	}
}

func callPeriodic(robot Robot, m types.Mode) {
	switch m {
	case types.ModeAutonomous:
		robot.AutonomousPeriodic()
	case types.ModeTeleop:
		robot.TeleopPeriodic()
	case types.ModeTest:
		robot.TestPeriodic()
	default:
		robot.DisabledPeriodic()
	}
}

// cycleState is the loop-local transition detector.
type cycleState struct {
	last    types.Mode
	hasLast bool
}

// step runs one dispatch cycle for cur. onEnter is called on a transition,
// after the init callback, and observe every cycle before the periodic
// callbacks.
func (c *cycleState) step(robot Robot, cur types.Mode, onEnter func(types.Mode), observe func(types.Mode)) {
	if !c.hasLast || c.last != cur {
		callInit(robot, cur)
		if onEnter != nil {
			onEnter(cur)
		}
	}
	if observe != nil {
		observe(cur)
	}
	callPeriodic(robot, cur)
	robot.RobotPeriodic()

	c.last = cur
	c.hasLast = true
}
