package core

// Robot is the user program. Init callbacks fire once when the mode is
// entered, periodic callbacks once per cycle. RobotPeriodic runs every
// cycle after the mode's periodic callback. All calls come from the
// scheduler goroutine.
type Robot interface {
	RobotPeriodic()

	DisabledInit()
	DisabledPeriodic()

	AutonomousInit()
	AutonomousPeriodic()

	TeleopInit()
	TeleopPeriodic()

	TestInit()
	TestPeriodic()
}

// BaseRobot implements every Robot callback as a no-op. Embed it and
// override what you need.
type BaseRobot struct{}

func (BaseRobot) RobotPeriodic()      {}
func (BaseRobot) DisabledInit()       {}
func (BaseRobot) DisabledPeriodic()   {}
func (BaseRobot) AutonomousInit()     {}
func (BaseRobot) AutonomousPeriodic() {}
func (BaseRobot) TeleopInit()         {}
func (BaseRobot) TeleopPeriodic()     {}
func (BaseRobot) TestInit()           {}
func (BaseRobot) TestPeriodic()       {}
