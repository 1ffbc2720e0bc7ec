//go:build linux

package hardware

import (
	"encoding/binary"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// LinuxTiming implements the controller clock and alarms with
// CLOCK_MONOTONIC timerfds. One eventfd per alarm carries the stop signal.
type LinuxTiming struct {
	maxAlarms int

	mu     sync.Mutex
	alarms int
}

func NewLinuxTiming(maxAlarms int) *LinuxTiming {
	return &LinuxTiming{maxAlarms: maxAlarms}
}

// Now returns CLOCK_MONOTONIC in microseconds.
func (t *LinuxTiming) Now() (uint64, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0, fmt.Errorf("clock_gettime failed: %w", err)
	}
	return uint64(ts.Nano() / 1000), nil
}

func (t *LinuxTiming) NewAlarm() (Alarm, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.maxAlarms > 0 && t.alarms >= t.maxAlarms {
		return nil, ErrNoAlarm
	}

	tfd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC|unix.TFD_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("%w: timerfd_create: %v", ErrNoAlarm, err)
	}
	efd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(tfd)
		return nil, fmt.Errorf("%w: eventfd: %v", ErrNoAlarm, err)
	}

	t.alarms++
	return &timerfdAlarm{timing: t, tfd: tfd, efd: efd}, nil
}

func (t *LinuxTiming) release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.alarms--
}

type timerfdAlarm struct {
	timing *LinuxTiming
	tfd    int
	efd    int

	mu       sync.Mutex
	released bool
}

func (a *timerfdAlarm) Arm(at uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return ErrAlarmReleased
	}
	// A zero it_value disarms the timer, so the earliest trigger is 1ns.
	nsec := int64(at) * 1000
	if nsec <= 0 {
		nsec = 1
	}
	spec := unix.ItimerSpec{Value: unix.NsecToTimespec(nsec)}
	if err := unix.TimerfdSettime(a.tfd, unix.TFD_TIMER_ABSTIME, &spec, nil); err != nil {
		return fmt.Errorf("timerfd_settime failed: %w", err)
	}
	return nil
}

func (a *timerfdAlarm) Cancel() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return ErrAlarmReleased
	}
	if err := unix.TimerfdSettime(a.tfd, 0, &unix.ItimerSpec{}, nil); err != nil {
		return fmt.Errorf("timerfd_settime failed: %w", err)
	}
	return nil
}

func (a *timerfdAlarm) Wait() (uint64, error) {
	buf := make([]byte, 8)
	for {
		fds := []unix.PollFd{
			{Fd: int32(a.tfd), Events: unix.POLLIN},
			{Fd: int32(a.efd), Events: unix.POLLIN},
		}
		if _, err := unix.Poll(fds, -1); err != nil {
			if err == unix.EINTR {
				continue
			}
			return 0, fmt.Errorf("poll failed: %w", err)
		}

		// The eventfd is never drained, so a stop stays visible.
		if fds[1].Revents&unix.POLLIN != 0 {
			return 0, ErrAlarmStopped
		}
		if fds[1].Revents&(unix.POLLNVAL|unix.POLLERR|unix.POLLHUP) != 0 {
			return 0, ErrAlarmStopped
		}
		if fds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		if _, err := unix.Read(a.tfd, buf); err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				// Re-armed between poll and read.
				continue
			}
			return 0, fmt.Errorf("timerfd read failed: %w", err)
		}
		return a.timing.Now()
	}
}

func (a *timerfdAlarm) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return nil
	}
	buf := make([]byte, 8)
	binary.NativeEndian.PutUint64(buf, 1)
	if _, err := unix.Write(a.efd, buf); err != nil && err != unix.EAGAIN {
		return fmt.Errorf("eventfd write failed: %w", err)
	}
	return nil
}

// Release stops the alarm and closes its descriptors. The caller must make
// sure no Wait is still running.
func (a *timerfdAlarm) Release() error {
	if err := a.Stop(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return nil
	}
	a.released = true
	unix.Close(a.tfd)
	unix.Close(a.efd)
	a.timing.release()
	return nil
}
