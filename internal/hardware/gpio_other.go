//go:build !linux

package hardware

import (
	"errors"

	"robot-controller/internal/logger"
)

func OpenGPIOLight(chip, line int, l *logger.Logger) (*StatusLight, error) {
	return nil, errors.New("GPIO status light requires linux")
}
