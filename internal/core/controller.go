package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/librescoot/librefsm"
	"go.uber.org/multierr"

	"robot-controller/internal/ds"
	"robot-controller/internal/fsm"
	"robot-controller/internal/hardware"
	"robot-controller/internal/logger"
	"robot-controller/internal/types"
)

var errShutdown = errors.New("controller shut down")

// modeTracker is the part of the librefsm machine the controller uses
// after start.
type modeTracker interface {
	SendSync(ev librefsm.Event) error
	CurrentState() librefsm.StateID
}

// Controller owns the shared snapshot, its updater and the observed-mode
// tracker, and runs a Robot with one of the two schedulers.
type Controller struct {
	station   Station
	light     StatusLight
	logger    *logger.Logger
	fsmLogger *logger.Logger
	cfg       Config

	state         *ds.SharedState
	driverStation *ds.DriverStation
	updater       *ds.Updater
	scheduler     *Scheduler

	// Modes for the tracker goroutine. Latest wins.
	trackCh chan types.Mode

	mu         sync.Mutex
	started    bool
	closed     bool
	machine    modeTracker
	lifeCancel context.CancelFunc
	trackStop  chan struct{}
	trackDone  chan struct{}
}

// NewController wires a controller. timing may be nil when only the
// event-driven scheduler is used, and light may be nil when there is no
// status light.
func NewController(station Station, timing Timing, light StatusLight, l *logger.Logger, cfg Config) *Controller {
	cfg = cfg.withDefaults()
	if light == nil {
		light = hardware.NopLight{}
	}

	state := ds.NewSharedState(nil)
	c := &Controller{
		station:       station,
		light:         light,
		logger:        l,
		fsmLogger:     l.WithTag("fsm"),
		cfg:           cfg,
		state:         state,
		driverStation: ds.NewDriverStation(state),
		updater:       ds.NewUpdater(state, station, l, cfg.WaitRetryDelay),
		trackCh:       make(chan types.Mode, 1),
	}
	c.scheduler = newScheduler(station, timing, state, l, cfg, c.trackMode)
	return c
}

// DriverStation returns the read-only view of the latest operator snapshot.
func (c *Controller) DriverStation() *ds.DriverStation {
	return c.driverStation
}

func (c *Controller) Scheduler() *Scheduler {
	return c.scheduler
}

func (c *Controller) Updater() *ds.Updater {
	return c.updater
}

// SetFaultReporter forwards scheduler faults to f.
func (c *Controller) SetFaultReporter(f FaultReporter) {
	c.scheduler.SetFaultReporter(f)
}

// Start builds the mode tracker, spawns the updater and tells the console
// the program is starting. Calling it again is a no-op. The updater and
// tracker keep running after ctx is cancelled, until Shutdown.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errShutdown
	}
	if c.started {
		return nil
	}

	c.logger.Infof("********** Robot program starting **********")

	life, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if err := c.initFSM(life); err != nil {
		cancel()
		return fmt.Errorf("failed to start mode tracker: %w", err)
	}
	c.lifeCancel = cancel

	if !c.updater.Spawn(life) {
		c.logger.Warnf("Updater already running")
	}
	c.station.ObserveProgramStarting()
	c.started = true
	return nil
}

// RunEventDriven runs one cycle per driver station packet until ctx is done.
func (c *Controller) RunEventDriven(ctx context.Context, robot Robot) error {
	if err := c.Start(ctx); err != nil {
		return err
	}
	return c.scheduler.runEventDriven(ctx, robot)
}

// RunTimed runs the fixed-period scheduler with the configured period.
func (c *Controller) RunTimed(ctx context.Context, robot Robot) error {
	return c.RunTimedWithPeriod(ctx, robot, c.cfg.Period)
}

// RunTimedWithPeriod runs the fixed-period scheduler until ctx is done.
// Failing to allocate the alarm returns an error wrapping
// ErrAlarmUnavailable.
func (c *Controller) RunTimedWithPeriod(ctx context.Context, robot Robot, period time.Duration) error {
	if err := c.Start(ctx); err != nil {
		return err
	}
	return c.scheduler.runTimed(ctx, robot, period)
}

// ObservedMode returns the mode the tracker last entered.
func (c *Controller) ObservedMode() (types.Mode, bool) {
	c.mu.Lock()
	machine := c.machine
	c.mu.Unlock()
	if machine == nil {
		return types.ModeDisabled, false
	}
	return fsm.ModeForState(machine.CurrentState())
}

// Shutdown stops the updater and the tracker and releases the light and
// the station.
func (c *Controller) Shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	c.logger.Infof("Shutting down robot controller")
	c.updater.Stop()
	c.stopTracker()
	if c.lifeCancel != nil {
		c.lifeCancel()
	}

	err := c.light.Close()
	if closer, ok := c.station.(io.Closer); ok {
		err = multierr.Append(err, closer.Close())
	}
	return err
}
