package core

import (
	"context"
	"errors"
	"sync"

	"robot-controller/internal/hardware"
	"robot-controller/internal/logger"
	"robot-controller/internal/types"
)

func testLogger() *logger.Logger {
	return logger.NewLogger(nil, logger.LogLevelNone)
}

// Mock Robot
type recordingRobot struct {
	mu    sync.Mutex
	calls []string
	cycle chan struct{}
}

func newRecordingRobot() *recordingRobot {
	return &recordingRobot{cycle: make(chan struct{}, 100)}
}

func (r *recordingRobot) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

func (r *recordingRobot) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	calls := r.calls
	r.calls = nil
	return calls
}

func (r *recordingRobot) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (r *recordingRobot) RobotPeriodic() {
	r.record("robot_periodic")
	select {
	case r.cycle <- struct{}{}:
	default:
	}
}

func (r *recordingRobot) DisabledInit()       { r.record("disabled_init") }
func (r *recordingRobot) DisabledPeriodic()   { r.record("disabled_periodic") }
func (r *recordingRobot) AutonomousInit()     { r.record("autonomous_init") }
func (r *recordingRobot) AutonomousPeriodic() { r.record("autonomous_periodic") }
func (r *recordingRobot) TeleopInit()         { r.record("teleop_init") }
func (r *recordingRobot) TeleopPeriodic()     { r.record("teleop_periodic") }
func (r *recordingRobot) TestInit()           { r.record("test_init") }
func (r *recordingRobot) TestPeriodic()       { r.record("test_periodic") }

// Mock Station with a fixed control word
type fixedStation struct {
	mu       sync.Mutex
	cw       types.ControlWord
	readErr  error
	started  int
	observed []types.Mode
}

func (s *fixedStation) WaitForPacket(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (s *fixedStation) ReadControlWord() (types.ControlWord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cw, s.readErr
}

func (s *fixedStation) ReadAllianceStation() (types.AllianceStation, error) {
	return types.StationRed1, nil
}

func (s *fixedStation) ReadMatchInfo() (types.MatchInfo, error) {
	return types.MatchInfo{}, nil
}

func (s *fixedStation) ReadJoystick(port int) (types.Joystick, error) {
	return types.Joystick{}, nil
}

func (s *fixedStation) ObserveProgramStarting() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started++
}

func (s *fixedStation) ObserveMode(m types.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observed = append(s.observed, m)
}

// Mock Alarm driven by a script. wake computes the wake time from the last
// armed time; returning false stops the alarm.
type scriptedAlarm struct {
	mu       sync.Mutex
	arms     []uint64
	armErrs  map[int]error
	wake     func(n int, armed uint64) (uint64, bool)
	waits     int
	stopped   bool
	cancelled bool
	released  bool
}

func (a *scriptedAlarm) Arm(at uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	idx := len(a.arms)
	a.arms = append(a.arms, at)
	if err, ok := a.armErrs[idx]; ok {
		return err
	}
	return nil
}

func (a *scriptedAlarm) Wait() (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return 0, hardware.ErrAlarmStopped
	}
	armed := a.arms[len(a.arms)-1]
	at, ok := a.wake(a.waits, armed)
	a.waits++
	if !ok {
		a.stopped = true
		return 0, hardware.ErrAlarmStopped
	}
	return at, nil
}

func (a *scriptedAlarm) Cancel() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelled = true
	return nil
}

func (a *scriptedAlarm) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	return nil
}

func (a *scriptedAlarm) Release() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	a.released = true
	return nil
}

func (a *scriptedAlarm) armed() []uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]uint64(nil), a.arms...)
}

// Mock Timing
type scriptedTiming struct {
	now      uint64
	nowErr   error
	alarm    *scriptedAlarm
	alarmErr error
}

func (t *scriptedTiming) Now() (uint64, error) {
	return t.now, t.nowErr
}

func (t *scriptedTiming) NewAlarm() (hardware.Alarm, error) {
	if t.alarmErr != nil {
		return nil, t.alarmErr
	}
	return t.alarm, nil
}

// Mock FaultReporter
type recordingFaults struct {
	mu       sync.Mutex
	reported []string
	cleared  []string
}

func (f *recordingFaults) ReportFault(code string, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reported = append(f.reported, code)
	return nil
}

func (f *recordingFaults) ClearFault(code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, code)
	return nil
}

// Mock StatusLight
type recordingLight struct {
	mu     sync.Mutex
	modes  []types.Mode
	closed bool
}

func (l *recordingLight) ShowMode(m types.Mode) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.modes = append(l.modes, m)
	return nil
}

func (l *recordingLight) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

func (l *recordingLight) shown() []types.Mode {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]types.Mode(nil), l.modes...)
}

var errArm = errors.New("arm failed")
