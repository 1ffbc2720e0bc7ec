package fsm

import "github.com/librescoot/librefsm"

// Actions is implemented by the controller to react to observed mode
// changes. Entry actions run once per transition, never per cycle.
type Actions interface {
	EnterDisabled(c *librefsm.Context) error
	EnterAutonomous(c *librefsm.Context) error
	EnterTeleop(c *librefsm.Context) error
	EnterTest(c *librefsm.Context) error
	EnterEStop(c *librefsm.Context) error
}
