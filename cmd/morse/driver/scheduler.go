package driver

import (
	"github.com/gigurra/morselamp/cmd/morse/code"
	"github.com/gigurra/morselamp/cmd/morse/indicator"
)

// Cursor is the playback position within an encoded stream. Elapsed counts
// units spent on the current symbol, Threshold is how many it needs.
type Cursor struct {
	Position  int
	Elapsed   int
	Threshold int
	Playing   bool
}

// NewCursor returns a cursor at the start of a stream. The first symbol is
// shown on the first tick.
func NewCursor() Cursor {
	return Cursor{Threshold: 1}
}

// Command is a single indicator action.
type Command struct {
	Line indicator.Line
	On   bool
}

func (c Command) Apply(ind indicator.Indicator) error {
	if c.On {
		return ind.TurnOn(c.Line)
	}
	return ind.TurnOff(c.Line)
}

// Step advances c by one time unit over s. It returns the new cursor and,
// when the unit ends a symbol, the command to issue. A cursor that runs off
// the end of s stops playing and always turns the line off.
func Step(c Cursor, s code.Stream, line indicator.Line) (Cursor, Command, bool) {
	if !c.Playing {
		return c, Command{}, false
	}
	if c.Position >= len(s) {
		c.Playing = false
		return c, Command{Line: line}, true
	}

	c.Elapsed++
	if c.Elapsed < c.Threshold {
		return c, Command{}, false
	}

	c.Elapsed = 0
	cmd := Command{Line: line}
	switch s[c.Position] {
	case code.Dot:
		c.Threshold, cmd.On = 1, true
	case code.Dash:
		c.Threshold, cmd.On = 3, true
	default:
		c.Threshold, cmd.On = 1, false
	}
	c.Position++

	if c.Position == len(s) {
		c.Playing = false
		cmd.On = false
	}
	return c, cmd, true
}

// Ticks returns how many ticks playing s takes from arming to idle.
func Ticks(s code.Stream) int {
	if len(s) == 0 {
		return 0
	}
	n := 1
	for _, sym := range s[:len(s)-1] {
		if sym == code.Dash {
			n += 3
		} else {
			n++
		}
	}
	return n
}
