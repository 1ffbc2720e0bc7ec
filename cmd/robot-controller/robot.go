package main

import (
	"robot-controller/internal/core"
	"robot-controller/internal/ds"
	"robot-controller/internal/logger"
)

// exampleRobot logs its lifecycle and the operator's drive stick.
type exampleRobot struct {
	core.BaseRobot

	ds     *ds.DriverStation
	logger *logger.Logger
	cycles int
}

func newExampleRobot(station *ds.DriverStation, l *logger.Logger) *exampleRobot {
	return &exampleRobot{ds: station, logger: l.WithTag("robot")}
}

func (r *exampleRobot) RobotPeriodic() {
	r.cycles++
}

func (r *exampleRobot) DisabledInit() {
	r.logger.Infof("Disabled after %d cycles", r.cycles)
}

func (r *exampleRobot) AutonomousInit() {
	match := r.ds.Match()
	r.logger.Infof("Autonomous: %s match %d, %s alliance station %d",
		match.Type, match.MatchNumber, r.ds.Alliance(), r.ds.Station())
}

func (r *exampleRobot) TeleopInit() {
	r.logger.Infof("Teleop enabled")
}

func (r *exampleRobot) TeleopPeriodic() {
	if r.cycles%50 != 0 {
		return
	}
	forward, err := r.ds.JoystickAxis(0, 1)
	if err != nil {
		r.logger.Debugf("No drive stick: %v", err)
		return
	}
	boost, _ := r.ds.JoystickButton(0, 1)
	r.logger.Debugf("Drive forward=%.2f boost=%v", forward, boost)
}

func (r *exampleRobot) TestInit() {
	r.logger.Infof("Test mode")
}
