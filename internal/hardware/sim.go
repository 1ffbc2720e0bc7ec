package hardware

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"robot-controller/internal/types"
)

// SimStation is an in-memory driver station. Push delivers a packet; only the
// latest pushed packet is kept, as on the real link.
type SimStation struct {
	signal chan struct{}

	mu       sync.Mutex
	next     types.OperatorSnapshot
	current  types.OperatorSnapshot
	readErr  error
	failures int

	started   bool
	observed  types.Mode
	observedN int
}

func NewSimStation() *SimStation {
	return &SimStation{signal: make(chan struct{}, 1)}
}

// Push queues snap as the next packet. It never blocks.
func (s *SimStation) Push(snap types.OperatorSnapshot) {
	s.mu.Lock()
	s.next = snap
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// FailReads makes the next n match info reads return err. Only the updater
// reads match info, so the scheduler's control word reads never consume the
// budget.
func (s *SimStation) FailReads(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
	s.readErr = err
}

func (s *SimStation) WaitForPacket(ctx context.Context) error {
	select {
	case <-s.signal:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	s.current = s.next
	s.mu.Unlock()
	return nil
}

func (s *SimStation) ReadControlWord() (types.ControlWord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.ControlWord, nil
}

func (s *SimStation) ReadAllianceStation() (types.AllianceStation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Station, nil
}

func (s *SimStation) ReadMatchInfo() (types.MatchInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return types.MatchInfo{}, s.readErr
	}
	return s.current.Match, nil
}

func (s *SimStation) ReadJoystick(port int) (types.Joystick, error) {
	if port < 0 || port >= types.JoystickPorts {
		return types.Joystick{}, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Joysticks[port], nil
}

func (s *SimStation) ObserveProgramStarting() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
}

func (s *SimStation) ObserveMode(m types.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observed = m
	s.observedN++
}

// ProgramStarted reports whether ObserveProgramStarting was called.
func (s *SimStation) ProgramStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Observed returns the last observed mode and the number of observations.
func (s *SimStation) Observed() (types.Mode, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.observed, s.observedN
}

// SimTiming provides a microsecond clock and alarms on top of a
// clock.Clock, so tests can drive time with clock.NewMock().
type SimTiming struct {
	clk       clock.Clock
	base      time.Time
	maxAlarms int

	mu     sync.Mutex
	alarms int
}

// NewSimTiming creates a timing source whose time zero is now. A maxAlarms of
// zero or less means no limit.
func NewSimTiming(clk clock.Clock, maxAlarms int) *SimTiming {
	if clk == nil {
		clk = clock.New()
	}
	return &SimTiming{clk: clk, base: clk.Now(), maxAlarms: maxAlarms}
}

func (t *SimTiming) Now() (uint64, error) {
	return t.micros(), nil
}

func (t *SimTiming) micros() uint64 {
	return uint64(t.clk.Since(t.base) / time.Microsecond)
}

func (t *SimTiming) NewAlarm() (Alarm, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.maxAlarms > 0 && t.alarms >= t.maxAlarms {
		return nil, ErrNoAlarm
	}
	t.alarms++
	return &simAlarm{
		timing:  t,
		changed: make(chan struct{}),
		stopCh:  make(chan struct{}),
	}, nil
}

// Alarms returns the number of allocated, unreleased alarms.
func (t *SimTiming) Alarms() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.alarms
}

func (t *SimTiming) release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.alarms--
}

type simAlarm struct {
	timing *SimTiming

	mu       sync.Mutex
	timer    *clock.Timer
	changed  chan struct{} // closed whenever timer is replaced
	stopped  bool
	stopCh   chan struct{}
	released bool
}

func (a *simAlarm) Arm(at uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return ErrAlarmReleased
	}

	var d time.Duration
	if now := a.timing.micros(); at > now {
		d = time.Duration(at-now) * time.Microsecond
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = a.timing.clk.Timer(d)
	a.notifyLocked()
	return nil
}

func (a *simAlarm) Cancel() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return ErrAlarmReleased
	}
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.notifyLocked()
	return nil
}

func (a *simAlarm) Wait() (uint64, error) {
	for {
		a.mu.Lock()
		if a.stopped {
			a.mu.Unlock()
			return 0, ErrAlarmStopped
		}
		timer := a.timer
		changed := a.changed
		a.mu.Unlock()

		var fired <-chan time.Time
		if timer != nil {
			fired = timer.C
		}

		select {
		case <-fired:
			a.mu.Lock()
			if a.timer == timer {
				a.timer = nil
			}
			a.mu.Unlock()
			return a.timing.micros(), nil
		case <-changed:
		case <-a.stopCh:
			return 0, ErrAlarmStopped
		}
	}
}

func (a *simAlarm) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.stopped {
		a.stopped = true
		close(a.stopCh)
	}
	return nil
}

func (a *simAlarm) Release() error {
	if err := a.Stop(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return nil
	}
	a.released = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.timing.release()
	return nil
}

func (a *simAlarm) notifyLocked() {
	close(a.changed)
	a.changed = make(chan struct{})
}
