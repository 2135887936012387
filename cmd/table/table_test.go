package table

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableListsEveryCharacter(t *testing.T) {
	var out bytes.Buffer
	if err := Run(&Params{UnitMs: 100}, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	s := out.String()
	for _, want := range []string{"Char", `"* -   "`, `"* * * -   "`, `"- - - - -   "`, "800ms"} {
		if !strings.Contains(s, want) {
			t.Errorf("table missing %q:\n%s", want, s)
		}
	}
}

func TestTableDigitsOnly(t *testing.T) {
	var out bytes.Buffer
	if err := Run(&Params{UnitMs: 100, Digits: true}, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Contains(out.String(), `"* -   "`) {
		t.Errorf("digits only table lists A:\n%s", out.String())
	}
	// Digits never get the error marker.
	if !strings.Contains(out.String(), `"* * * * *   "`) {
		t.Errorf("missing 5:\n%s", out.String())
	}
}

func TestTableRejectsBadUnit(t *testing.T) {
	if err := Run(&Params{UnitMs: 0}, &bytes.Buffer{}); err == nil {
		t.Error("zero unit should fail")
	}
}
