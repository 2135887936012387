//go:build !((linux && cgo) || windows || darwin)

package indicator

import (
	"fmt"
	"os"

	"github.com/gen2brain/beeep"
)

// Audio beeps through the system speaker whenever a line turns on. Steady
// tones need CGO on this platform.
type Audio struct {
	frequency float64
}

func NewAudio(frequency float64) (*Audio, error) {
	_, _ = fmt.Fprintln(os.Stderr, "(Audio requires CGO on this platform. Using system beeps...)")
	return &Audio{frequency: frequency}, nil
}

func (a *Audio) TurnOn(line Line) error {
	if !line.Valid() {
		return fmt.Errorf("audio: %v is not a valid line", line)
	}
	// Beep blocks for its duration, which must not stall the tick.
	go func() {
		_ = beeep.Beep(a.frequency, beeep.DefaultDuration)
	}()
	return nil
}

func (a *Audio) TurnOff(line Line) error {
	if !line.Valid() {
		return fmt.Errorf("audio: %v is not a valid line", line)
	}
	return nil
}

func (a *Audio) Close() error {
	return nil
}
