//go:build (linux && cgo) || windows || darwin

package indicator

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

const (
	sampleRate = 44100
	// Samples spent fading a gate in or out, to avoid clicks.
	rampLen = sampleRate / 200
)

var (
	speakerOnce sync.Once
	speakerErr  error
)

// Audio plays a steady tone while a line is on. The left line sounds on the
// left channel and the right line on the right one.
type Audio struct {
	tone *gatedTone
}

func NewAudio(frequency float64) (*Audio, error) {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(beep.SampleRate(sampleRate), sampleRate/10)
	})
	if speakerErr != nil {
		return nil, fmt.Errorf("audio: init speaker: %w", speakerErr)
	}
	tone := &gatedTone{frequency: frequency}
	speaker.Play(tone)
	return &Audio{tone: tone}, nil
}

func (a *Audio) TurnOn(line Line) error {
	return a.set(line, true)
}

func (a *Audio) TurnOff(line Line) error {
	return a.set(line, false)
}

func (a *Audio) set(line Line, on bool) error {
	if !line.Valid() {
		return fmt.Errorf("audio: %v is not a valid line", line)
	}
	a.tone.gates[line].Store(on)
	return nil
}

// Close silences the tone and removes it from the speaker.
func (a *Audio) Close() error {
	for i := range a.tone.gates {
		a.tone.gates[i].Store(false)
	}
	speaker.Clear()
	return nil
}

// gatedTone is an endless sine whose channels are switched by gates.
type gatedTone struct {
	frequency float64
	position  int
	gates     [len(Lines)]atomic.Bool
	levels    [len(Lines)]float64
}

func (g *gatedTone) Stream(samples [][2]float64) (n int, ok bool) {
	var open [len(Lines)]bool
	for i := range g.gates {
		open[i] = g.gates[i].Load()
	}
	for i := range samples {
		phase := 2 * math.Pi * g.frequency * float64(g.position) / float64(sampleRate)
		value := math.Sin(phase) * 0.5
		for ch := range g.levels {
			if open[ch] {
				g.levels[ch] = math.Min(1, g.levels[ch]+1.0/rampLen)
			} else {
				g.levels[ch] = math.Max(0, g.levels[ch]-1.0/rampLen)
			}
			samples[i][ch] = value * g.levels[ch]
		}
		g.position = (g.position + 1) % sampleRate
	}
	return len(samples), true
}

func (g *gatedTone) Err() error {
	return nil
}
