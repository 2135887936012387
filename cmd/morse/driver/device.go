// Package driver plays encoded Morse streams on an indicator. A Device owns
// the stream, the playback cursor and the settings behind one mutex, and is
// paced by a ticker whose period is the timing unit.
package driver

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gigurra/morselamp/cmd/morse/code"
	"github.com/gigurra/morselamp/cmd/morse/indicator"
	"github.com/google/uuid"
)

var (
	// ErrBusy is returned when a new message is written while one is playing.
	ErrBusy = errors.New("device busy: playback in progress")
	// ErrTruncated is returned together with the accepted count when input
	// did not fit the message buffer.
	ErrTruncated     = errors.New("message truncated")
	ErrSequenceLost  = errors.New("write sequence replaced by another writer")
	ErrInvalidOption = errors.New("invalid option")
	ErrInvalidValue  = errors.New("invalid option value")
	ErrClosed        = errors.New("device closed")
)

type DeviceOption func(*Device)

// WithClock replaces the wall clock used for ticking.
func WithClock(c Clock) DeviceOption {
	return func(d *Device) { d.clock = c }
}

func WithLogger(log *slog.Logger) DeviceOption {
	return func(d *Device) { d.log = log }
}

type Device struct {
	ind   indicator.Indicator
	log   *slog.Logger
	clock Clock

	// outMu keeps indicator commands in the order their state changes were
	// made. It is taken before mu is released and never the other way round.
	outMu sync.Mutex

	mu       sync.Mutex
	settings Settings
	raw      []byte
	stream   code.Stream
	cursor   Cursor
	ticked   bool // the current message has been ticked, so it can no longer grow
	seq      uuid.UUID
	idle     chan struct{}
	gen      uint64
	stop     chan struct{}
	running  bool
	closed   bool
}

// New returns an idle Device. Nothing ticks until Start is called.
func New(ind indicator.Indicator, settings Settings, opts ...DeviceOption) (*Device, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	d := &Device{
		ind:      ind,
		log:      slog.Default(),
		clock:    realClock{},
		settings: settings,
		cursor:   NewCursor(),
		idle:     make(chan struct{}),
	}
	close(d.idle)
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Start turns both lines off and starts the tick source.
func (d *Device) Start() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	if !d.running {
		d.running = true
		d.restartTickerLocked()
	}
	d.outMu.Lock()
	d.mu.Unlock()
	defer d.outMu.Unlock()
	return d.forceOff()
}

// restartTickerLocked supersedes any running tick goroutine with a new one
// at the current unit. Ticks already received by the old goroutine are
// dropped by the generation check in tick.
func (d *Device) restartTickerLocked() {
	if d.stop != nil {
		close(d.stop)
	}
	d.gen++
	gen, stop := d.gen, make(chan struct{})
	d.stop = stop
	t := d.clock.NewTicker(d.settings.Unit)
	go d.run(gen, t, stop)
	d.log.Debug("tick source started", "gen", gen, "unit", d.settings.Unit)
}

func (d *Device) run(gen uint64, t Ticker, stop <-chan struct{}) {
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.Chan():
			d.tick(gen)
		}
	}
}

// Tick advances playback by one unit. It is meant for callers that drive
// the device from their own loop instead of calling Start.
func (d *Device) Tick() {
	d.tick(0)
}

func (d *Device) tick(gen uint64) {
	d.mu.Lock()
	if d.closed || (gen != 0 && gen != d.gen) {
		d.mu.Unlock()
		return
	}
	wasPlaying := d.cursor.Playing
	if wasPlaying {
		d.ticked = true
	}
	next, cmd, ok := Step(d.cursor, d.stream, d.settings.Line)
	d.cursor = next
	if wasPlaying && !next.Playing {
		close(d.idle)
		d.log.Info("playback finished", "seq", d.seq, "symbols", len(d.stream))
	}
	if !ok {
		d.mu.Unlock()
		return
	}
	d.outMu.Lock()
	d.mu.Unlock()
	defer d.outMu.Unlock()

	if err := cmd.Apply(d.ind); err != nil {
		d.log.Warn("indicator command failed", "line", cmd.Line, "on", cmd.On, "error", err)
	}
}

// Configure changes one option. On success both lines are forced off and
// playback of the current stream restarts from its beginning without
// leaving the playing state. A rejected value changes nothing.
func (d *Device) Configure(opt Option, value int) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	next, err := d.settings.With(opt, value)
	if err != nil {
		d.mu.Unlock()
		d.log.Warn("configuration rejected", "option", opt, "value", value, "error", err)
		return err
	}
	prev := d.settings
	d.settings = next
	d.cursor.Position = 0
	d.cursor.Elapsed = 0
	d.cursor.Threshold = 1
	if opt == OptionUnit && d.running {
		d.restartTickerLocked()
	}
	d.log.Info("configuration changed", "option", opt, "from", prev, "to", next)
	d.outMu.Lock()
	d.mu.Unlock()
	defer d.outMu.Unlock()

	return d.forceOff()
}

// Apply configures every option of s that differs from the current settings.
func (d *Device) Apply(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	cur := d.Settings()
	var errs []error
	if s.Mode != cur.Mode {
		errs = append(errs, d.Configure(OptionMode, int(s.Mode)))
	}
	if s.Line != cur.Line {
		errs = append(errs, d.Configure(OptionLine, int(s.Line)))
	}
	if s.Unit != cur.Unit {
		errs = append(errs, d.Configure(OptionUnit, int(s.Unit/time.Millisecond)))
	}
	return errors.Join(errs...)
}

func (d *Device) forceOff() error {
	var errs []error
	for _, line := range indicator.Lines {
		if err := d.ind.TurnOff(line); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Device) Settings() Settings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settings
}

// Done returns a channel that is closed once the device is idle. A new one
// is handed out each time playback starts.
func (d *Device) Done() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.idle
}

// Status is a snapshot of the device for display.
type Status struct {
	Sequence string `json:"sequence,omitempty"`
	Mode     string `json:"mode"`
	Line     string `json:"line"`
	UnitMs   int64  `json:"unit_ms"`
	Playing  bool   `json:"playing"`
	Position int    `json:"position"`
	Length   int    `json:"length"`
	Message  string `json:"message"`
	Stream   string `json:"stream"`
}

func (d *Device) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := Status{
		Mode:     d.settings.Mode.String(),
		Line:     d.settings.Line.String(),
		UnitMs:   d.settings.Unit.Milliseconds(),
		Playing:  d.cursor.Playing,
		Position: d.cursor.Position,
		Length:   len(d.stream),
		Message:  string(d.raw),
		Stream:   d.stream.String(),
	}
	if d.seq != uuid.Nil {
		st.Sequence = d.seq.String()
	}
	return st
}

// Close stops the tick source, leaves both lines off and closes the
// indicator if it can be closed.
func (d *Device) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
	d.running = false
	if d.cursor.Playing {
		d.cursor.Playing = false
		close(d.idle)
	}
	d.outMu.Lock()
	d.mu.Unlock()
	defer d.outMu.Unlock()

	errs := []error{d.forceOff()}
	if c, ok := d.ind.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close device: %w", err)
	}
	return nil
}
