package hardware

import "time"

const (
	// ConsumerName labels GPIO lines requested by this service.
	ConsumerName = "robot-controller"

	// Default robot status light wiring.
	DefaultLightChip = 0
	DefaultLightLine = 17

	// StatusBlinkInterval is the on/off half period of the status light
	// while enabled.
	StatusBlinkInterval = 250 * time.Millisecond

	// DefaultMaxAlarms mirrors the notifier count of the controller FPGA.
	DefaultMaxAlarms = 32
)
