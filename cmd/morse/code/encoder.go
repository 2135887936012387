// Package code turns short ASCII messages into Morse symbol streams.
package code

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

const (
	// MaxMessageLen is the number of raw characters one message may hold.
	MaxMessageLen = 50
	// MaxEncodedCharLen bounds the symbols produced for one character
	// (an all-dash digit: 5 dashes, 4 gaps, 3 trailing spaces, plus slack).
	MaxEncodedCharLen = 20
	// Capacity is the largest stream the encoder will produce.
	Capacity = MaxMessageLen * MaxEncodedCharLen

	charGap = 3
	wordGap = 4
)

// ErrInvalidChar is returned for bytes outside A-Z, 0-9 and space.
var ErrInvalidChar = errors.New("invalid character")

// Symbol is one element of an encoded stream. Its value is the byte used
// when the stream is rendered as text.
type Symbol byte

const (
	Dot   Symbol = '*'
	Dash  Symbol = '-'
	Space Symbol = ' '
)

// Stream is an encoded message.
type Stream []Symbol

func (s Stream) String() string {
	return string(s.Bytes())
}

// Bytes renders the stream as '*', '-' and ' '.
func (s Stream) Bytes() []byte {
	return lo.Map(s, func(sym Symbol, _ int) byte { return byte(sym) })
}

// Mode selects how letters are encoded.
type Mode int

const (
	// ModeNormal transcribes letters as they are.
	ModeNormal Mode = iota
	// ModeError prefixes every letter with a dot and a gap.
	ModeError
)

var modeNames = map[Mode]string{
	ModeNormal: "normal",
	ModeError:  "error",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode accepts "normal" or "error" in any case.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q (want normal or error)", s)
}

// Validate checks that every byte of msg can be encoded. The returned error
// wraps ErrInvalidChar and names the first offending offset.
func Validate(msg []byte) error {
	for i, c := range msg {
		if c == ' ' {
			continue
		}
		if _, ok := tableIndex(c); !ok {
			return fmt.Errorf("%w %q at offset %d", ErrInvalidChar, c, i)
		}
	}
	return nil
}

// Append encodes msg onto dst using mode and returns the grown stream along
// with the number of characters of msg that were transcoded. Encoding stops
// at the first character whose symbols would not fit within Capacity; those
// characters are dropped, not reported as an error. Invalid input is
// rejected before anything is appended.
func Append(dst Stream, msg []byte, mode Mode) (Stream, int, error) {
	if err := Validate(msg); err != nil {
		return dst, 0, err
	}

	for i, c := range msg {
		sym := symbolsFor(c, mode)
		if len(dst)+len(sym) > Capacity {
			return dst, i, nil
		}
		dst = append(dst, sym...)
	}
	return dst, len(msg), nil
}

// Encode is Append onto an empty stream.
func Encode(msg string, mode Mode) (Stream, error) {
	s, _, err := Append(make(Stream, 0, len(msg)*MaxEncodedCharLen), []byte(msg), mode)
	return s, err
}

// symbolsFor expects a validated character.
func symbolsFor(c byte, mode Mode) []Symbol {
	if c == ' ' {
		return spaces(wordGap)
	}

	i, _ := tableIndex(c)
	var out []Symbol
	if mode == ModeError && i < letterCount {
		out = append(out, Dot, Space)
	}
	for j := 0; j < len(table[i]); j++ {
		out = append(out, Symbol(table[i][j]))
	}
	return append(out, spaces(charGap)...)
}

func spaces(n int) []Symbol {
	out := make([]Symbol, n)
	for i := range out {
		out[i] = Space
	}
	return out
}

// Vector is a known input together with its normal mode rendering.
type Vector struct {
	Input  string
	Output string
}

// TestVectors are reference encodings used by the self test.
var TestVectors = []Vector{
	{"A", "* -   "},
	{"B", "- * * *   "},
	{"C", "- * - *   "},
	{"AB C", "* -   - * * *       - * - *   "},
	{"AB CD", "* -   - * * *       - * - *   - * *   "},
}
