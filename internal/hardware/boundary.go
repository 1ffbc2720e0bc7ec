package hardware

import "errors"

var (
	// ErrAlarmStopped is returned by Alarm.Wait once the alarm is stopped.
	ErrAlarmStopped = errors.New("alarm stopped")
	// ErrNoAlarm means no alarm resource could be allocated.
	ErrNoAlarm = errors.New("no alarm resource available")
	// ErrAlarmReleased is returned when using an alarm after Release.
	ErrAlarmReleased = errors.New("alarm released")
)

// Alarm is a one-shot timer armed for an absolute clock time, in the same
// microsecond units as the clock that created it.
type Alarm interface {
	// Arm sets or replaces the trigger time.
	Arm(at uint64) error
	// Wait blocks until the alarm fires and returns the clock time of the
	// wake, or ErrAlarmStopped once Stop has been called.
	Wait() (uint64, error)
	// Cancel disarms the alarm without waking waiters.
	Cancel() error
	// Stop makes every current and future Wait return ErrAlarmStopped.
	Stop() error
	// Release stops the alarm and frees its resources.
	Release() error
}
