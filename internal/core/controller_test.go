package core

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"robot-controller/internal/hardware"
	"robot-controller/internal/types"
)

func waitCycle(t *testing.T, robot *recordingRobot) {
	t.Helper()
	select {
	case <-robot.cycle:
	case <-time.After(time.Second):
		t.Fatal("Expected a cycle")
	}
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func TestControllerEventDriven(t *testing.T) {
	station := hardware.NewSimStation()
	light := &recordingLight{}
	c := NewController(station, nil, light, testLogger(), DefaultConfig())
	robot := newRecordingRobot()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.RunEventDriven(ctx, robot)
	}()

	eventually(t, "program starting", station.ProgramStarted)

	station.Push(types.OperatorSnapshot{ControlWord: types.ControlWord{DSAttached: true}})
	waitCycle(t, robot)

	teleop := types.OperatorSnapshot{ControlWord: types.ControlWord{Enabled: true, DSAttached: true}}
	teleop.Joysticks[0].Buttons = types.JoystickButtons{Count: 4, Buttons: 0b0100}
	station.Push(teleop)
	waitCycle(t, robot)

	want := []string{
		"disabled_init", "disabled_periodic", "robot_periodic",
		"teleop_init", "teleop_periodic", "robot_periodic",
	}
	if got := robot.take(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	pressed, err := c.DriverStation().JoystickButton(0, 3)
	if err != nil || !pressed {
		t.Errorf("Expected button 3 pressed, got %v, %v", pressed, err)
	}
	if m, n := station.Observed(); m != types.ModeTeleop || n != 2 {
		t.Errorf("Expected teleop observed twice, got %v %d", m, n)
	}

	eventually(t, "tracker in teleop", func() bool {
		m, ok := c.ObservedMode()
		return ok && m == types.ModeTeleop
	})
	eventually(t, "light shows teleop", func() bool {
		shown := light.shown()
		return len(shown) == 2 && shown[0] == types.ModeDisabled && shown[1] == types.ModeTeleop
	})

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil on cancel, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Event-driven scheduler did not stop")
	}

	if err := c.Shutdown(); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
	if c.Updater().Running() {
		t.Error("Expected updater stopped")
	}
	if !light.closed {
		t.Error("Expected light closed")
	}
}

func TestControllerStartIsIdempotent(t *testing.T) {
	station := &fixedStation{}
	c := NewController(station, nil, nil, testLogger(), DefaultConfig())
	ctx := context.Background()

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Second start failed: %v", err)
	}
	if station.started != 1 {
		t.Errorf("Expected program starting signalled once, got %d", station.started)
	}
	if !c.Updater().Running() {
		t.Error("Expected updater running")
	}

	if err := c.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if err := c.Shutdown(); err != nil {
		t.Errorf("Second shutdown failed: %v", err)
	}
	if err := c.Start(ctx); err == nil {
		t.Error("Expected start after shutdown to fail")
	}
}

func TestControllerRunTimed(t *testing.T) {
	station := &fixedStation{cw: types.ControlWord{Enabled: true, Autonomous: true}}
	timing := hardware.NewSimTiming(nil, 1)
	cfg := DefaultConfig()
	cfg.Period = 2 * time.Millisecond
	c := NewController(station, timing, nil, testLogger(), cfg)
	robot := newRecordingRobot()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.RunTimed(ctx, robot)
	}()

	for i := 0; i < 3; i++ {
		waitCycle(t, robot)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil on cancel, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed scheduler did not stop")
	}

	if robot.count("autonomous_init") != 1 {
		t.Errorf("Expected autonomous_init once, got %d", robot.count("autonomous_init"))
	}
	if c.Scheduler().Cycles() < 3 {
		t.Errorf("Expected at least 3 cycles, got %d", c.Scheduler().Cycles())
	}
	if timing.Alarms() != 0 {
		t.Errorf("Expected alarm released, got %d", timing.Alarms())
	}
	c.Shutdown()
}

func TestControllerRunTimedWithoutAlarm(t *testing.T) {
	timing := hardware.NewSimTiming(nil, 1)
	held, err := timing.NewAlarm()
	if err != nil {
		t.Fatalf("NewAlarm failed: %v", err)
	}
	defer held.Release()

	c := NewController(&fixedStation{}, timing, nil, testLogger(), DefaultConfig())
	defer c.Shutdown()

	err = c.RunTimedWithPeriod(context.Background(), newRecordingRobot(), 5*time.Millisecond)
	if err == nil {
		t.Fatal("Expected an error when no alarm is available")
	}

	// The event-driven scheduler still works.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.RunEventDriven(ctx, newRecordingRobot()); err != nil {
		t.Errorf("Expected event-driven run to return cleanly, got %v", err)
	}
}

// cancellingRobot cancels the run from inside a teleop cycle and queues a
// mode change behind it.
type cancellingRobot struct {
	BaseRobot
	cancel  context.CancelFunc
	station *hardware.SimStation
	once    bool
}

func (r *cancellingRobot) TeleopPeriodic() {
	if r.once {
		return
	}
	r.once = true
	r.cancel()
	r.station.Push(types.OperatorSnapshot{ControlWord: types.ControlWord{DSAttached: true}})
}

func TestControllerModeChangeAfterCancelDoesNotHang(t *testing.T) {
	station := hardware.NewSimStation()
	c := NewController(station, nil, nil, testLogger(), DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	robot := &cancellingRobot{cancel: cancel, station: station}

	done := make(chan error, 1)
	go func() {
		done <- c.RunEventDriven(ctx, robot)
	}()

	eventually(t, "program starting", station.ProgramStarted)
	station.Push(types.OperatorSnapshot{ControlWord: types.ControlWord{Enabled: true, DSAttached: true}})

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil on cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Event-driven scheduler blocked after cancellation")
	}

	shutdown := make(chan error, 1)
	go func() {
		shutdown <- c.Shutdown()
	}()
	select {
	case err := <-shutdown:
		if err != nil {
			t.Errorf("Shutdown failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown blocked")
	}
}

func TestControllerOutlivesRunContext(t *testing.T) {
	station := hardware.NewSimStation()
	c := NewController(station, nil, nil, testLogger(), DefaultConfig())
	robot := newRecordingRobot()

	run := func(ctx context.Context) chan error {
		done := make(chan error, 1)
		go func() {
			done <- c.RunEventDriven(ctx, robot)
		}()
		return done
	}
	stopRun := func(cancel context.CancelFunc, done chan error) {
		t.Helper()
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Run did not stop")
		}
	}

	ctx1, cancel1 := context.WithCancel(context.Background())
	done1 := run(ctx1)
	eventually(t, "program starting", station.ProgramStarted)
	station.Push(types.OperatorSnapshot{ControlWord: types.ControlWord{DSAttached: true}})
	waitCycle(t, robot)
	stopRun(cancel1, done1)

	if !c.Updater().Running() {
		t.Error("Expected updater to keep running after the first run ended")
	}

	ctx2, cancel2 := context.WithCancel(context.Background())
	done2 := run(ctx2)
	station.Push(types.OperatorSnapshot{ControlWord: types.ControlWord{Enabled: true, DSAttached: true}})
	waitCycle(t, robot)
	stopRun(cancel2, done2)

	if got := robot.count("teleop_init"); got != 1 {
		t.Errorf("Expected teleop_init in the second run, got %d", got)
	}
	eventually(t, "two packets", func() bool { return c.Updater().Packets() == 2 })

	if err := c.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if c.Updater().Running() {
		t.Error("Expected updater stopped after shutdown")
	}
}

func TestControllerSkipsPacketWithFailedRead(t *testing.T) {
	station := hardware.NewSimStation()
	c := NewController(station, nil, nil, testLogger(), DefaultConfig())
	robot := newRecordingRobot()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.RunEventDriven(ctx, robot)
	}()
	defer func() {
		cancel()
		<-done
		if err := c.Shutdown(); err != nil {
			t.Errorf("Shutdown failed: %v", err)
		}
	}()

	eventually(t, "program starting", station.ProgramStarted)

	station.FailReads(1, errors.New("boom"))
	station.Push(types.OperatorSnapshot{ControlWord: types.ControlWord{DSAttached: true}})
	eventually(t, "read failure", func() bool { return c.Updater().ReadFailures() == 1 })
	if got := c.Updater().Packets(); got != 0 {
		t.Errorf("Expected the failed packet to be skipped, got %d packets", got)
	}

	station.Push(types.OperatorSnapshot{ControlWord: types.ControlWord{Enabled: true, DSAttached: true}})
	waitCycle(t, robot)

	want := []string{"teleop_init", "teleop_periodic", "robot_periodic"}
	if got := robot.take(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if got := c.Updater().ReadFailures(); got != 1 {
		t.Errorf("Expected 1 read failure, got %d", got)
	}
}
