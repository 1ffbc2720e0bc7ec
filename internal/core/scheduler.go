package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"robot-controller/internal/ds"
	"robot-controller/internal/hardware"
	"robot-controller/internal/logger"
	"robot-controller/internal/types"
)

// ErrAlarmUnavailable is returned by the timed runs when no alarm could be
// allocated.
var ErrAlarmUnavailable = errors.New("alarm unavailable")

// FaultAlarmRearm is reported while the timed scheduler fails to re-arm.
const FaultAlarmRearm = "alarm-rearm"

// Scheduler drives a Robot through the mode dispatch table, either on every
// new packet or on a fixed-phase alarm.
type Scheduler struct {
	station Station
	timing  Timing
	state   *ds.SharedState
	cfg     Config
	logger  *logger.Logger
	onEnter func(types.Mode)

	mu        sync.Mutex
	faults    FaultReporter
	lastRearm error
	faulted   bool

	cycles        *atomic.Uint64
	rearmFailures *atomic.Uint64
}

func newScheduler(station Station, timing Timing, state *ds.SharedState, l *logger.Logger, cfg Config, onEnter func(types.Mode)) *Scheduler {
	return &Scheduler{
		station:       station,
		timing:        timing,
		state:         state,
		cfg:           cfg,
		logger:        l.WithTag("scheduler"),
		onEnter:       onEnter,
		cycles:        atomic.NewUint64(0),
		rearmFailures: atomic.NewUint64(0),
	}
}

// SetFaultReporter installs where re-arm faults are reported. nil disables
// reporting.
func (s *Scheduler) SetFaultReporter(f FaultReporter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = f
}

// Cycles returns the number of dispatch cycles run.
func (s *Scheduler) Cycles() uint64 { return s.cycles.Load() }

// RearmFailures returns how many times re-arming the alarm failed.
func (s *Scheduler) RearmFailures() uint64 { return s.rearmFailures.Load() }

// LastRearmError returns the most recent re-arm failure, or nil.
func (s *Scheduler) LastRearmError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRearm
}

func (s *Scheduler) currentMode() types.Mode {
	cw, err := s.station.ReadControlWord()
	if err == nil {
		return ModeFor(cw)
	}
	if s.cfg.ReadTimingFallback {
		s.logger.Debugf("Control word read failed, using snapshot: %v", err)
		return s.state.Read().Mode()
	}
	s.logger.Debugf("Control word read failed, treating as disabled: %v", err)
	return types.ModeDisabled
}

func (s *Scheduler) runCycle(c *cycleState, robot Robot) {
	cur := s.currentMode()
	if !c.hasLast || c.last != cur {
		s.logger.Debugf("Entering %s", cur)
	}
	c.step(robot, cur, s.onEnter, s.station.ObserveMode)
	s.cycles.Inc()
}

// runEventDriven runs one cycle per published packet until ctx is done.
func (s *Scheduler) runEventDriven(ctx context.Context, robot Robot) error {
	var c cycleState

	s.logger.Infof("Event-driven scheduler running")
	for {
		if err := s.state.WaitForDataContext(ctx); err != nil {
			s.logger.Infof("Event-driven scheduler stopped")
			return nil
		}
		s.runCycle(&c, robot)
	}
}

// runTimed runs one cycle per period. The next deadline is always the
// previous deadline plus period, never the wake time plus period.
func (s *Scheduler) runTimed(ctx context.Context, robot Robot, period time.Duration) (err error) {
	if period < time.Microsecond {
		return fmt.Errorf("invalid period %v", period)
	}
	periodUs := uint64(period / time.Microsecond)
	if s.timing == nil {
		return fmt.Errorf("%w: no timing source", ErrAlarmUnavailable)
	}

	alarm, err := s.timing.NewAlarm()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAlarmUnavailable, err)
	}
	defer func() {
		err = multierr.Combine(err, alarm.Cancel(), alarm.Release())
	}()

	now, err := s.timing.Now()
	if err != nil {
		return fmt.Errorf("failed to read clock: %w", err)
	}
	expiration := now + periodUs
	if err := alarm.Arm(expiration); err != nil {
		return fmt.Errorf("failed to arm alarm: %w", err)
	}

	stop := context.AfterFunc(ctx, func() {
		if err := alarm.Stop(); err != nil {
			s.logger.Warnf("Failed to stop alarm: %v", err)
		}
	})
	defer stop()

	var c cycleState
	s.logger.Infof("Timed scheduler running, period %v", period)
	for {
		if _, err := alarm.Wait(); err != nil {
			if errors.Is(err, hardware.ErrAlarmStopped) {
				s.logger.Infof("Timed scheduler stopped")
				return nil
			}
			return fmt.Errorf("alarm wait failed: %w", err)
		}

		expiration += periodUs
		armed := s.rearm(alarm, expiration)
		s.runCycle(&c, robot)

		// A missed re-arm skips that deadline; retry one period later on
		// the same phase.
		for !armed {
			select {
			case <-ctx.Done():
				s.logger.Infof("Timed scheduler stopped")
				return nil
			case <-time.After(period):
			}
			expiration += periodUs
			armed = s.rearm(alarm, expiration)
		}
	}
}

func (s *Scheduler) rearm(alarm hardware.Alarm, at uint64) bool {
	err := alarm.Arm(at)

	s.mu.Lock()
	faults := s.faults
	wasFaulted := s.faulted
	if err != nil {
		s.lastRearm = err
		s.faulted = true
	} else {
		s.faulted = false
	}
	s.mu.Unlock()

	if err != nil {
		s.rearmFailures.Inc()
		s.logger.Warnf("Failed to re-arm alarm for %d: %v", at, err)
		if faults != nil && !wasFaulted {
			if ferr := faults.ReportFault(FaultAlarmRearm, err); ferr != nil {
				s.logger.Warnf("Failed to report fault: %v", ferr)
			}
		}
		return false
	}

	if faults != nil && wasFaulted {
		if ferr := faults.ClearFault(FaultAlarmRearm); ferr != nil {
			s.logger.Warnf("Failed to clear fault: %v", ferr)
		}
	}
	return true
}
