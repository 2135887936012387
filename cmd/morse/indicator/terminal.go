package indicator

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	litStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214"))
	darkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Background(lipgloss.Color("235"))
)

// Lamp renders one line as a small colored block.
func Lamp(line Line, lit bool) string {
	label := fmt.Sprintf("  %s  ", strings.ToUpper(line.String()))
	if lit {
		return litStyle.Render(label)
	}
	return darkStyle.Render(label)
}

// Lamps renders both lines of p side by side.
func Lamps(p *Panel) string {
	return lipgloss.JoinHorizontal(lipgloss.Center, Lamp(Left, p.Lit(Left)), "  ", Lamp(Right, p.Lit(Right)))
}

// Terminal draws the two lines on a terminal. When out is not a terminal it
// falls back to one plain text line per command.
type Terminal struct {
	mu     sync.Mutex
	out    io.Writer
	inline bool
	panel  *Panel
}

func NewTerminal(out io.Writer) *Terminal {
	inline := false
	if f, ok := out.(*os.File); ok {
		inline = term.IsTerminal(int(f.Fd()))
	}
	return &Terminal{
		out:    out,
		inline: inline,
		panel:  NewPanel(),
	}
}

func (t *Terminal) TurnOn(line Line) error {
	return t.set(line, true)
}

func (t *Terminal) TurnOff(line Line) error {
	return t.set(line, false)
}

func (t *Terminal) set(line Line, on bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	before := t.panel.Changes()
	if err := t.panel.set(line, on); err != nil {
		return err
	}
	if t.panel.Changes() == before {
		return nil
	}

	if t.inline {
		_, err := fmt.Fprintf(t.out, "\r%s", Lamps(t.panel))
		return err
	}

	state := "off"
	if on {
		state = "on"
	}
	_, err := fmt.Fprintf(t.out, "%-5s %s\n", line, state)
	return err
}

// Close ends the inline drawing with a newline.
func (t *Terminal) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inline {
		_, err := fmt.Fprintln(t.out)
		return err
	}
	return nil
}
