package core

import (
	"time"

	"robot-controller/internal/ds"
)

// DefaultPeriod is the conventional driver station packet interval.
const DefaultPeriod = 20 * time.Millisecond

type Config struct {
	// Period of RunTimed.
	Period time.Duration
	// WaitRetryDelay is how long the updater backs off after a failed
	// packet wait.
	WaitRetryDelay time.Duration
	// ReadTimingFallback uses the snapshot control word when the boundary
	// read fails. Otherwise a failed read counts as disabled.
	ReadTimingFallback bool
}

func DefaultConfig() Config {
	return Config{
		Period:             DefaultPeriod,
		WaitRetryDelay:     ds.DefaultRetryDelay,
		ReadTimingFallback: true,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Period <= 0 {
		c.Period = d.Period
	}
	if c.WaitRetryDelay <= 0 {
		c.WaitRetryDelay = d.WaitRetryDelay
	}
	return c
}
