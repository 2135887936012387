package code

import (
	"errors"
	"testing"
)

func TestDecodeVectors(t *testing.T) {
	for _, v := range TestVectors {
		got, err := Decode(v.Output)
		if err != nil {
			t.Errorf("Decode(%q) returned error: %v", v.Output, err)
			continue
		}
		if got != v.Input {
			t.Errorf("Decode(%q) = %q, want %q", v.Output, got, v.Input)
		}
	}
}

func TestDecodeReversesEncode(t *testing.T) {
	inputs := []string{"SOS", "HELLO WORLD", "0123456789", "A  B", " E"}
	for _, in := range inputs {
		s, err := Encode(in, ModeNormal)
		if err != nil {
			t.Fatalf("Encode(%q): %v", in, err)
		}
		got, err := Decode(s.String())
		if err != nil {
			t.Errorf("Decode(Encode(%q)) returned error: %v", in, err)
			continue
		}
		if got != in {
			t.Errorf("Decode(Encode(%q)) = %q", in, got)
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	tests := []string{"* x", "* * * * * *   "}
	for _, in := range tests {
		if _, err := Decode(in); !errors.Is(err, ErrInvalidChar) {
			t.Errorf("Decode(%q) error = %v, want ErrInvalidChar", in, err)
		}
	}
}
