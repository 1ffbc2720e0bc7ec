//go:build !linux

package hardware

// LinuxTiming is only available on Linux.
type LinuxTiming struct{}

func NewLinuxTiming(maxAlarms int) *LinuxTiming {
	return &LinuxTiming{}
}

func (t *LinuxTiming) Now() (uint64, error) {
	return 0, ErrNoAlarm
}

func (t *LinuxTiming) NewAlarm() (Alarm, error) {
	return nil, ErrNoAlarm
}
