package code

import "fmt"

const (
	letterCount = 26
	digitCount  = 10
)

// table holds the pattern of every supported character, letters first and
// digits after them. Marks within one character are separated by a single
// space, which the player shows as a one unit gap.
var table = [letterCount + digitCount]string{
	"* -",       // A
	"- * * *",   // B
	"- * - *",   // C
	"- * *",     // D
	"*",         // E
	"* * - *",   // F
	"- - *",     // G
	"* * * *",   // H
	"* *",       // I
	"* - - -",   // J
	"- * -",     // K
	"* - * *",   // L
	"- -",       // M
	"- *",       // N
	"- - -",     // O
	"* - - *",   // P
	"- - * -",   // Q
	"* - *",     // R
	"* * *",     // S
	"-",         // T
	"* * -",     // U
	"* * * -",   // V
	"* - -",     // W
	"- * * -",   // X
	"- * - -",   // Y
	"- - * *",   // Z
	"- - - - -", // 0
	"* - - - -", // 1
	"* * - - -", // 2
	"* * * - -", // 3
	"* * * * -", // 4
	"* * * * *", // 5
	"- * * * *", // 6
	"- - * * *", // 7
	"- - - * *", // 8
	"- - - - *", // 9
}

// tableIndex maps an upper case letter or a digit to its slot in table.
func tableIndex(c byte) (int, bool) {
	switch {
	case c >= 'A' && c <= 'Z':
		return int(c - 'A'), true
	case c >= '0' && c <= '9':
		return letterCount + int(c-'0'), true
	default:
		return 0, false
	}
}

// Pattern returns the rendered table entry of c.
func Pattern(c byte) (string, bool) {
	i, ok := tableIndex(c)
	if !ok {
		return "", false
	}
	return table[i], true
}

// Entry is one row of the symbol table.
type Entry struct {
	Char    byte
	Pattern string
}

// Entries lists the table in its storage order (A-Z, then 0-9).
func Entries() []Entry {
	out := make([]Entry, 0, len(table))
	for c := byte('A'); c <= 'Z'; c++ {
		p, _ := Pattern(c)
		out = append(out, Entry{Char: c, Pattern: p})
	}
	for c := byte('0'); c <= '9'; c++ {
		p, _ := Pattern(c)
		out = append(out, Entry{Char: c, Pattern: p})
	}
	return out
}

func (e Entry) String() string {
	return fmt.Sprintf("%c: %s", e.Char, e.Pattern)
}
