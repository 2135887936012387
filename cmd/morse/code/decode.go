package code

import (
	"fmt"
	"strings"
)

var byPattern = func() map[string]byte {
	m := make(map[string]byte, len(table))
	for _, e := range Entries() {
		m[strings.ReplaceAll(e.Pattern, " ", "")] = e.Char
	}
	return m
}()

// Decode turns a normal mode rendering back into the message it came from.
// Single spaces separate the symbols of a character, runs of three end a
// character, and every further four spaces stand for one word break.
// Error mode markers are not recognised.
func Decode(rendered string) (string, error) {
	var out strings.Builder
	var pattern []byte

	flush := func() error {
		if len(pattern) == 0 {
			return nil
		}
		c, ok := byPattern[string(pattern)]
		if !ok {
			return fmt.Errorf("%w: unknown pattern %q", ErrInvalidChar, pattern)
		}
		out.WriteByte(c)
		pattern = pattern[:0]
		return nil
	}

	for i := 0; i < len(rendered); {
		switch rendered[i] {
		case byte(Dot), byte(Dash):
			pattern = append(pattern, rendered[i])
			i++
			continue
		case byte(Space):
		default:
			return "", fmt.Errorf("%w %q at offset %d", ErrInvalidChar, rendered[i], i)
		}

		j := i
		for j < len(rendered) && rendered[j] == byte(Space) {
			j++
		}
		run := j - i
		i = j
		if run == 1 && len(pattern) > 0 && j < len(rendered) {
			continue
		}
		if len(pattern) > 0 {
			if err := flush(); err != nil {
				return "", err
			}
			run -= charGap
		}
		for ; run >= wordGap; run -= wordGap {
			out.WriteByte(' ')
		}
	}
	if err := flush(); err != nil {
		return "", err
	}
	return out.String(), nil
}
