package core

import (
	"context"

	"github.com/librescoot/librefsm"

	"robot-controller/internal/fsm"
	"robot-controller/internal/types"
)

// initFSM builds and starts the observed-mode tracker. Caller holds c.mu.
func (c *Controller) initFSM(ctx context.Context) error {
	def := fsm.NewDefinition(c)
	machine, err := def.Build()
	if err != nil {
		return err
	}

	machine.OnStateChange(func(from, to librefsm.StateID) {
		c.fsmLogger.Infof("Mode transition: %s -> %s", from, to)
	})

	if err := machine.Start(ctx); err != nil {
		return err
	}

	c.machine = machine
	c.trackStop = make(chan struct{})
	c.trackDone = make(chan struct{})
	go c.runTracker(machine, c.trackStop, c.trackDone)

	c.fsmLogger.Debugf("Mode tracker started")
	return nil
}

// runTracker feeds queued modes into the machine. It exits before the
// machine's context is cancelled, so SendSync always gets an answer.
func (c *Controller) runTracker(machine modeTracker, stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case m := <-c.trackCh:
			if err := machine.SendSync(librefsm.Event{ID: fsm.EventForMode(m)}); err != nil {
				c.fsmLogger.Debugf("Mode tracker rejected %s: %v", m, err)
			}
		}
	}
}

// stopTracker waits for runTracker to exit. Caller holds c.mu.
func (c *Controller) stopTracker() {
	if c.trackStop == nil {
		return
	}
	close(c.trackStop)
	<-c.trackDone
	c.trackStop = nil
}

// trackMode queues a mode transition for the tracker without blocking.
// Called from the scheduler goroutine.
func (c *Controller) trackMode(m types.Mode) {
	for {
		select {
		case c.trackCh <- m:
			return
		default:
		}
		// Replace a transition the tracker has not picked up yet.
		select {
		case <-c.trackCh:
		default:
		}
	}
}

// === State Entry Actions ===

func (c *Controller) EnterDisabled(ctx *librefsm.Context) error {
	return c.enterMode(types.ModeDisabled)
}

func (c *Controller) EnterAutonomous(ctx *librefsm.Context) error {
	return c.enterMode(types.ModeAutonomous)
}

func (c *Controller) EnterTeleop(ctx *librefsm.Context) error {
	return c.enterMode(types.ModeTeleop)
}

func (c *Controller) EnterTest(ctx *librefsm.Context) error {
	return c.enterMode(types.ModeTest)
}

func (c *Controller) EnterEStop(ctx *librefsm.Context) error {
	c.fsmLogger.Warnf("Emergency stop engaged")
	return c.enterMode(types.ModeEStop)
}

func (c *Controller) enterMode(m types.Mode) error {
	if err := c.light.ShowMode(m); err != nil {
		c.fsmLogger.Warnf("Failed to update status light for %s: %v", m, err)
	}
	return nil
}
