// Package indicator provides the outputs a Morse player can switch on and off.
package indicator

import (
	"errors"
	"fmt"
	"strings"
)

// Line selects one of the two indicator outputs.
type Line int

const (
	Left Line = iota
	Right
)

// Lines lists every line in index order.
var Lines = [...]Line{Left, Right}

func (l Line) String() string {
	switch l {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("line(%d)", int(l))
	}
}

func (l Line) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid line %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *Line) UnmarshalText(text []byte) error {
	parsed, err := ParseLine(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Valid reports whether l is Left or Right.
func (l Line) Valid() bool {
	return l == Left || l == Right
}

// ParseLine accepts "left" or "right" in any case.
func ParseLine(s string) (Line, error) {
	switch strings.ToLower(s) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	default:
		return 0, fmt.Errorf("unknown line %q (want left or right)", s)
	}
}

// Indicator is a write-only output with two lines. Implementations must not
// block for long; they are driven from the playback tick.
type Indicator interface {
	TurnOn(line Line) error
	TurnOff(line Line) error
}

// ErrUnsupported is returned when a backend is not available in this build.
var ErrUnsupported = errors.New("indicator not supported on this platform")

type multi []Indicator

func (m multi) TurnOn(line Line) error {
	var errs []error
	for _, ind := range m {
		if err := ind.TurnOn(line); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multi) TurnOff(line Line) error {
	var errs []error
	for _, ind := range m {
		if err := ind.TurnOff(line); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every member that implements io.Closer.
func (m multi) Close() error {
	var errs []error
	for _, ind := range m {
		if c, ok := ind.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Multi returns an Indicator that forwards every command to all of inds,
// in order. E.g.:
//
//	ind := indicator.Multi(indicator.NewTerminal(os.Stdout), broadcaster)
func Multi(inds ...Indicator) Indicator {
	return multi(inds)
}

// Func adapts a plain function to an Indicator.
type Func func(line Line, on bool) error

func (f Func) TurnOn(line Line) error  { return f(line, true) }
func (f Func) TurnOff(line Line) error { return f(line, false) }
