//go:build linux

package indicator

import (
	"errors"
	"fmt"

	"github.com/warthog618/gpiod"
)

// GPIO drives two output lines of a Linux GPIO character device.
type GPIO struct {
	lines [len(Lines)]*gpiod.Line
}

// NewGPIO requests the left and right offsets of chip as outputs, both low.
func NewGPIO(chip string, left, right int) (*GPIO, error) {
	g := &GPIO{}
	for i, offset := range [len(Lines)]int{left, right} {
		l, err := gpiod.RequestLine(chip, offset, gpiod.AsOutput(0))
		if err != nil {
			_ = g.Close()
			return nil, fmt.Errorf("gpio: request %s line %d: %w", chip, offset, err)
		}
		g.lines[i] = l
	}
	return g, nil
}

func (g *GPIO) TurnOn(line Line) error {
	return g.set(line, 1)
}

func (g *GPIO) TurnOff(line Line) error {
	return g.set(line, 0)
}

func (g *GPIO) set(line Line, value int) error {
	if !line.Valid() || g.lines[line] == nil {
		return fmt.Errorf("gpio: %v is not available", line)
	}
	return g.lines[line].SetValue(value)
}

// Close drives both lines low and hands them back as inputs.
func (g *GPIO) Close() error {
	var errs []error
	for i, l := range g.lines {
		if l == nil {
			continue
		}
		if err := l.SetValue(0); err != nil {
			errs = append(errs, err)
		}
		if err := l.Reconfigure(gpiod.AsInput); err != nil {
			errs = append(errs, err)
		}
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
		g.lines[i] = nil
	}
	return errors.Join(errs...)
}
