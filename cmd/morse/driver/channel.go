package driver

import (
	"io"

	"github.com/gigurra/morselamp/cmd/morse/code"
	"github.com/google/uuid"
)

// Handle is one open session on a Device, the way a file descriptor is one
// session on a device file. Its first Write starts a new message; further
// writes on the same handle extend that message. Reads walk the rendered
// stream from the start.
type Handle struct {
	d    *Device
	seq  uuid.UUID
	wOff int
	rOff int
}

func (d *Device) Open() *Handle {
	return &Handle{d: d}
}

// Write accepts message bytes. The first write of a handle is rejected with
// ErrBusy while the device is playing; otherwise it replaces the message.
// Later writes extend the message until the first tick plays it, and get
// ErrBusy after that until playback is over.
// Bytes beyond the message capacity are dropped and reported with
// ErrTruncated alongside the accepted count.
func (h *Handle) Write(p []byte) (int, error) {
	d := h.d
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrClosed
	}
	if h.wOff == 0 {
		if d.cursor.Playing {
			return 0, ErrBusy
		}
	} else if h.seq != d.seq {
		return 0, ErrSequenceLost
	} else if d.cursor.Playing && d.ticked {
		return 0, ErrBusy
	}
	if err := code.Validate(p); err != nil {
		return 0, err
	}

	if h.wOff == 0 {
		d.raw = d.raw[:0]
		d.stream = d.stream[:0]
		d.cursor = NewCursor()
		d.ticked = false
		d.seq = uuid.New()
		h.seq = d.seq
		h.rOff = 0
	}

	chunk := p[:min(len(p), code.MaxMessageLen-len(d.raw))]
	stream, n, err := code.Append(d.stream, chunk, d.settings.Mode)
	if err != nil {
		return 0, err
	}
	d.stream = stream
	d.raw = append(d.raw, chunk[:n]...)
	h.wOff += n

	if !d.cursor.Playing && d.cursor.Position < len(d.stream) {
		d.cursor.Playing = true
		d.idle = make(chan struct{})
		d.log.Info("playback started", "seq", d.seq, "message", string(d.raw), "mode", d.settings.Mode, "symbols", len(d.stream))
	}

	if n < len(p) {
		d.log.Warn("message truncated", "seq", d.seq, "accepted", n, "dropped", len(p)-n)
		return n, ErrTruncated
	}
	return n, nil
}

// Read copies the textual rendering of the current stream, returning io.EOF
// once everything has been read.
func (h *Handle) Read(p []byte) (int, error) {
	d := h.d
	d.mu.Lock()
	defer d.mu.Unlock()

	if h.rOff >= len(d.stream) {
		return 0, io.EOF
	}
	n := 0
	for n < len(p) && h.rOff < len(d.stream) {
		p[n] = byte(d.stream[h.rOff])
		n++
		h.rOff++
	}
	return n, nil
}

// Seek supports rewinding reads, e.g. Seek(0, io.SeekStart).
func (h *Handle) Seek(offset int64, whence int) (int64, error) {
	h.d.mu.Lock()
	defer h.d.mu.Unlock()

	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(h.rOff)
	case io.SeekEnd:
		base = int64(len(h.d.stream))
	default:
		return 0, ErrInvalidValue
	}
	pos := base + offset
	if pos < 0 {
		return 0, ErrInvalidValue
	}
	h.rOff = int(pos)
	return pos, nil
}

// Close releases the handle. It does not stop playback.
func (h *Handle) Close() error {
	return nil
}
