package driver

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gigurra/morselamp/cmd/morse/code"
	"github.com/gigurra/morselamp/cmd/morse/indicator"
)

// Option identifies a runtime setting. The numeric values are stable and
// are what remote clients send.
type Option int

const (
	OptionMode Option = 0
	OptionLine Option = 1
	OptionUnit Option = 3
)

func (o Option) String() string {
	switch o {
	case OptionMode:
		return "mode"
	case OptionLine:
		return "line"
	case OptionUnit:
		return "unit"
	default:
		return fmt.Sprintf("option(%d)", int(o))
	}
}

// ParseOption accepts an option name or its numeric id.
func ParseOption(s string) (Option, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mode", "0":
		return OptionMode, nil
	case "line", "led", "1":
		return OptionLine, nil
	case "unit", "unit_ms", "3":
		return OptionUnit, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidOption, s)
	}
}

const DefaultUnit = 2000 * time.Millisecond

// MaxUnit is the longest timing unit a Device accepts.
const MaxUnit = 24 * time.Hour

const maxUnitMs = int(MaxUnit / time.Millisecond)

// Settings is the runtime configuration of a Device.
type Settings struct {
	Mode code.Mode
	Line indicator.Line
	Unit time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		Mode: code.ModeNormal,
		Line: indicator.Left,
		Unit: DefaultUnit,
	}
}

// Validate reports the first setting that a Device could not run with.
func (s Settings) Validate() error {
	if !s.Mode.Valid() {
		return fmt.Errorf("%w: mode %d", ErrInvalidValue, int(s.Mode))
	}
	if !s.Line.Valid() {
		return fmt.Errorf("%w: line %d", ErrInvalidValue, int(s.Line))
	}
	if s.Unit < time.Millisecond {
		return fmt.Errorf("%w: unit %v is below 1ms", ErrInvalidValue, s.Unit)
	}
	if s.Unit > MaxUnit {
		return fmt.Errorf("%w: unit %v is above %v", ErrInvalidValue, s.Unit, MaxUnit)
	}
	return nil
}

// With returns s with one option changed. For OptionLine any non-zero
// value selects the right line; OptionUnit is given in milliseconds.
func (s Settings) With(opt Option, value int) (Settings, error) {
	switch opt {
	case OptionMode:
		m := code.Mode(value)
		if !m.Valid() {
			return s, fmt.Errorf("%w: mode %d (want 0 or 1)", ErrInvalidValue, value)
		}
		s.Mode = m
	case OptionLine:
		if value != 0 {
			s.Line = indicator.Right
		} else {
			s.Line = indicator.Left
		}
	case OptionUnit:
		if value <= 0 || value > maxUnitMs {
			return s, fmt.Errorf("%w: unit %dms (want 1..%d)", ErrInvalidValue, value, maxUnitMs)
		}
		s.Unit = time.Duration(value) * time.Millisecond
	default:
		return s, fmt.Errorf("%w: %d", ErrInvalidOption, int(opt))
	}
	return s, nil
}

// ParseValue reads a textual option value as the integer Configure takes.
// Modes and lines may be given by name, units as milliseconds or as a
// duration such as "1.5s".
func ParseValue(opt Option, s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	n, numErr := strconv.Atoi(s)
	switch opt {
	case OptionMode:
		if numErr != nil {
			m, err := code.ParseMode(s)
			if err != nil {
				return 0, fmt.Errorf("%w: %w", ErrInvalidValue, err)
			}
			return int(m), nil
		}
		if !code.Mode(n).Valid() {
			return 0, fmt.Errorf("%w: mode %d (want 0 or 1)", ErrInvalidValue, n)
		}
		return n, nil
	case OptionLine:
		if numErr != nil {
			l, err := indicator.ParseLine(s)
			if err != nil {
				return 0, fmt.Errorf("%w: %w", ErrInvalidValue, err)
			}
			return int(l), nil
		}
		return n, nil
	case OptionUnit:
		if numErr != nil {
			d, err := time.ParseDuration(s)
			if err != nil {
				return 0, fmt.Errorf("%w: unit %q", ErrInvalidValue, s)
			}
			if d > MaxUnit {
				return 0, fmt.Errorf("%w: unit %q (want at most %v)", ErrInvalidValue, s, MaxUnit)
			}
			n = int(d / time.Millisecond)
		}
		if n <= 0 || n > maxUnitMs {
			return 0, fmt.Errorf("%w: unit %q (want 1ms..%v)", ErrInvalidValue, s, MaxUnit)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidOption, int(opt))
	}
}
