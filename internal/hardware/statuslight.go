package hardware

import (
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"

	"robot-controller/internal/logger"
	"robot-controller/internal/types"
)

// LightPattern is what the robot status light shows.
type LightPattern int

const (
	LightOff LightPattern = iota
	LightSolid
	LightBlink
)

func (p LightPattern) String() string {
	switch p {
	case LightOff:
		return "off"
	case LightSolid:
		return "solid"
	case LightBlink:
		return "blink"
	default:
		return fmt.Sprintf("LightPattern(%d)", int(p))
	}
}

// PatternForMode maps a mode to the light pattern: solid while disabled or
// stopped, blinking while enabled.
func PatternForMode(m types.Mode) LightPattern {
	if m.Enabled() {
		return LightBlink
	}
	return LightSolid
}

// Pin is a single digital output. *gpiocdev.Line satisfies it.
type Pin interface {
	SetValue(value int) error
	Close() error
}

// StatusLight drives a Pin according to the current robot mode.
type StatusLight struct {
	pin    Pin
	clk    clock.Clock
	logger *logger.Logger

	mu       sync.Mutex
	pattern  LightPattern
	stopChan chan struct{}
	done     chan struct{}
	closed   bool
}

// NewStatusLight wraps pin. A nil clk uses the wall clock.
func NewStatusLight(pin Pin, clk clock.Clock, l *logger.Logger) *StatusLight {
	if clk == nil {
		clk = clock.New()
	}
	return &StatusLight{
		pin:    pin,
		clk:    clk,
		logger: l.WithTag("light"),
	}
}

func (s *StatusLight) ShowMode(m types.Mode) error {
	return s.SetPattern(PatternForMode(m))
}

// Pattern returns the pattern last set.
func (s *StatusLight) Pattern() LightPattern {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pattern
}

func (s *StatusLight) SetPattern(p LightPattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("status light closed")
	}
	if p == s.pattern && s.stopChan != nil {
		return nil
	}

	s.stopBlinkerLocked()
	s.pattern = p

	switch p {
	case LightBlink:
		if err := s.pin.SetValue(1); err != nil {
			return fmt.Errorf("failed to set status light: %w", err)
		}
		s.stopChan = make(chan struct{})
		s.done = make(chan struct{})
		go s.runBlinker(s.clk.Ticker(StatusBlinkInterval), s.stopChan, s.done)
	case LightSolid:
		if err := s.pin.SetValue(1); err != nil {
			return fmt.Errorf("failed to set status light: %w", err)
		}
	default:
		if err := s.pin.SetValue(0); err != nil {
			return fmt.Errorf("failed to set status light: %w", err)
		}
	}
	s.logger.Debugf("Status light %s", p)
	return nil
}

func (s *StatusLight) runBlinker(ticker *clock.Ticker, stopChan, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	value := 1
	for {
		select {
		case <-stopChan:
			return
		case <-ticker.C:
			value ^= 1
			if err := s.pin.SetValue(value); err != nil {
				s.logger.Warnf("Error toggling status light: %v", err)
			}
		}
	}
}

func (s *StatusLight) stopBlinkerLocked() {
	if s.stopChan == nil {
		return
	}
	close(s.stopChan)
	<-s.done
	s.stopChan = nil
	s.done = nil
}

// Close turns the light off and releases the pin.
func (s *StatusLight) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.stopBlinkerLocked()
	if err := s.pin.SetValue(0); err != nil {
		s.logger.Warnf("Error turning off status light: %v", err)
	}
	return s.pin.Close()
}

// NopLight discards mode changes.
type NopLight struct{}

func (NopLight) ShowMode(types.Mode) error { return nil }
func (NopLight) Close() error              { return nil }
