//go:build linux

package hardware

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"robot-controller/internal/logger"
)

// gpioPin owns a requested line and the chip it came from.
type gpioPin struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

func (p *gpioPin) SetValue(value int) error {
	return p.line.SetValue(value)
}

func (p *gpioPin) Close() error {
	lineErr := p.line.Close()
	chipErr := p.chip.Close()
	if lineErr != nil {
		return lineErr
	}
	return chipErr
}

// OpenGPIOLight requests line on gpiochip<chip> as an output, initially low,
// and wraps it in a StatusLight.
func OpenGPIOLight(chip, line int, l *logger.Logger) (*StatusLight, error) {
	c, err := gpiocdev.NewChip(fmt.Sprintf("gpiochip%d", chip))
	if err != nil {
		return nil, fmt.Errorf("failed to open GPIO chip %d: %w", chip, err)
	}

	ln, err := c.RequestLine(line,
		gpiocdev.AsOutput(0),
		gpiocdev.WithConsumer(ConsumerName))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to request GPIO line %d: %w", line, err)
	}

	l.Infof("Configured status light: chip=%d, line=%d", chip, line)
	return NewStatusLight(&gpioPin{chip: c, line: ln}, nil, l), nil
}
