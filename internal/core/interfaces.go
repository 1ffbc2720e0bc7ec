package core

import (
	"robot-controller/internal/ds"
	"robot-controller/internal/hardware"
	"robot-controller/internal/types"
)

// Station is the driver station side of the hardware boundary needed by the
// Controller
type Station interface {
	ds.Source

	// Telemetry to the console. Best effort, never fails the caller.
	ObserveProgramStarting()
	ObserveMode(m types.Mode)
}

// Timing is the clock and alarm side of the hardware boundary. Times are
// microseconds.
type Timing interface {
	Now() (uint64, error)
	NewAlarm() (hardware.Alarm, error)
}

// StatusLight shows the observed robot mode
type StatusLight interface {
	ShowMode(m types.Mode) error
	Close() error
}

// FaultReporter records scheduler faults so an operator can see them
type FaultReporter interface {
	ReportFault(code string, err error) error
	ClearFault(code string) error
}
