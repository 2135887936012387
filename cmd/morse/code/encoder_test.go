package code

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeVectors(t *testing.T) {
	for _, v := range TestVectors {
		got, err := Encode(v.Input, ModeNormal)
		if err != nil {
			t.Fatalf("Encode(%q) returned error: %v", v.Input, err)
		}
		if got.String() != v.Output {
			t.Errorf("Encode(%q) = %q, want %q", v.Input, got.String(), v.Output)
		}
	}
}

func TestEncodeEveryCharacter(t *testing.T) {
	for _, e := range Entries() {
		normal, err := Encode(string(e.Char), ModeNormal)
		if err != nil {
			t.Fatalf("Encode(%q) returned error: %v", e.Char, err)
		}
		want := e.Pattern + "   "
		if normal.String() != want {
			t.Errorf("Encode(%q, normal) = %q, want %q", e.Char, normal.String(), want)
		}

		withErr, err := Encode(string(e.Char), ModeError)
		if err != nil {
			t.Fatalf("Encode(%q, error) returned error: %v", e.Char, err)
		}
		if e.Char >= 'A' && e.Char <= 'Z' {
			want = "* " + want
		}
		if withErr.String() != want {
			t.Errorf("Encode(%q, error) = %q, want %q", e.Char, withErr.String(), want)
		}
	}
}

func TestDigitPatterns(t *testing.T) {
	tests := []struct {
		digit    byte
		expected string
	}{
		{'0', "- - - - -"},
		{'1', "* - - - -"},
		{'2', "* * - - -"},
		{'3', "* * * - -"},
		{'4', "* * * * -"},
		{'5', "* * * * *"},
		{'6', "- * * * *"},
		{'7', "- - * * *"},
		{'8', "- - - * *"},
		{'9', "- - - - *"},
	}

	for _, tc := range tests {
		got, ok := Pattern(tc.digit)
		if !ok {
			t.Errorf("Pattern(%q) not found", tc.digit)
			continue
		}
		if got != tc.expected {
			t.Errorf("Pattern(%q) = %q, want %q", tc.digit, got, tc.expected)
		}
	}
}

func TestEncodeWordGap(t *testing.T) {
	got, err := Encode(" ", ModeError)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "    " {
		t.Errorf("Encode(\" \") = %q, want four spaces", got.String())
	}
}

func TestEncodeErrorModeSkipsDigits(t *testing.T) {
	got, err := Encode("E5", ModeError)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "* *   * * * * *   "
	if got.String() != want {
		t.Errorf("Encode(\"E5\", error) = %q, want %q", got.String(), want)
	}
}

func TestEncodeIsIdempotent(t *testing.T) {
	msg := "SOS 73 PARIS"
	for _, mode := range []Mode{ModeNormal, ModeError} {
		a, err := Encode(msg, mode)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, _ := Encode(msg, mode)
		if a.String() != b.String() {
			t.Errorf("Encode(%q, %v) not stable: %q vs %q", msg, mode, a, b)
		}
	}
}

func TestEncodeRejectsInvalidInput(t *testing.T) {
	tests := []string{"a", "AB-C", "HELLO\n", "Ä", "A.B"}

	for _, tt := range tests {
		_, err := Encode(tt, ModeNormal)
		if !errors.Is(err, ErrInvalidChar) {
			t.Errorf("Encode(%q) error = %v, want ErrInvalidChar", tt, err)
		}
	}
}

func TestAppendLeavesStreamOnInvalidInput(t *testing.T) {
	start, _ := Encode("AB", ModeNormal)
	got, n, err := Append(start, []byte("C?"), ModeNormal)
	if err == nil {
		t.Fatal("expected error")
	}
	if n != 0 {
		t.Errorf("n = %d, want 0", n)
	}
	if got.String() != start.String() {
		t.Errorf("stream changed to %q", got.String())
	}
}

func TestAppendTruncatesAtCapacity(t *testing.T) {
	// 12 symbols per "0": fill until the next one cannot fit
	msg := []byte(strings.Repeat("0", Capacity/12+5))
	got, n, err := Append(nil, msg, ModeNormal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) > Capacity {
		t.Fatalf("len = %d exceeds capacity %d", len(got), Capacity)
	}
	if n != Capacity/12 {
		t.Errorf("transcoded %d characters, want %d", n, Capacity/12)
	}
}

func TestWorstCaseMessageFits(t *testing.T) {
	msg := []byte(strings.Repeat("B", MaxMessageLen))
	got, n, err := Append(nil, msg, ModeError)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != MaxMessageLen {
		t.Errorf("transcoded %d characters, want %d", n, MaxMessageLen)
	}
	if len(got) != MaxMessageLen*12 {
		t.Errorf("len = %d, want %d", len(got), MaxMessageLen*12)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
	}{
		{"normal", ModeNormal},
		{"NORMAL", ModeNormal},
		{"error", ModeError},
		{"Error", ModeError},
	}

	for _, tc := range tests {
		got, err := ParseMode(tc.input)
		if err != nil {
			t.Errorf("ParseMode(%q) returned error: %v", tc.input, err)
			continue
		}
		if got != tc.expected {
			t.Errorf("ParseMode(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}

	if _, err := ParseMode("loud"); err == nil {
		t.Error("ParseMode(\"loud\") should return error")
	}
}
