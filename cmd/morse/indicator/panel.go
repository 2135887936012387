package indicator

import (
	"fmt"
	"sync/atomic"
)

// Panel remembers the last commanded state of each line. It never blocks,
// so viewers can poll it from their own loop.
type Panel struct {
	lit     [len(Lines)]atomic.Bool
	changes atomic.Uint64
}

func NewPanel() *Panel {
	return &Panel{}
}

func (p *Panel) TurnOn(line Line) error {
	return p.set(line, true)
}

func (p *Panel) TurnOff(line Line) error {
	return p.set(line, false)
}

func (p *Panel) set(line Line, on bool) error {
	if !line.Valid() {
		return fmt.Errorf("panel: %v is not a valid line", line)
	}
	if p.lit[line].Swap(on) != on {
		p.changes.Add(1)
	}
	return nil
}

// Lit reports whether line is currently on.
func (p *Panel) Lit(line Line) bool {
	if !line.Valid() {
		return false
	}
	return p.lit[line].Load()
}

// Changes counts on/off transitions seen so far.
func (p *Panel) Changes() uint64 {
	return p.changes.Load()
}
