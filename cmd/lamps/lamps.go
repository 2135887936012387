package lamps

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gigurra/morselamp/cmd/common"
	"github.com/gigurra/morselamp/cmd/morse/config"
	"github.com/gigurra/morselamp/cmd/morse/driver"
	"github.com/gigurra/morselamp/cmd/morse/indicator"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

type Params struct {
	Text      []string `pos:"true" optional:"true" help:"Message to play (default SOS)."`
	Mode      string   `short:"m" optional:"true" help:"Encoding mode: normal or error (default from config)." default:""`
	Line      string   `short:"l" optional:"true" help:"Indicator line: left or right (default from config)." default:""`
	UnitMs    int      `short:"u" optional:"true" help:"Timing unit in milliseconds (default from config)." default:"0"`
	Indicator string   `short:"i" optional:"true" help:"Extra indicator backend next to the on-screen lamps: log, audio or gpio." default:""`
	Config    string   `short:"c" optional:"true" help:"Config file (default ~/.morselamp/config.json)." default:""`
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	playedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("238"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const (
	frameInterval = 50 * time.Millisecond
	minUnit       = 10 * time.Millisecond
	maxUnit       = 10 * time.Second
)

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "lamps",
		Short:       "Interactive lamp viewer",
		Long:        "Play a message on two on-screen lamps. Keys: l/r line, n/e mode, +/- speed, enter replay, q quit.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := Run(params); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "lamps: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func Run(params *Params) error {
	cfg, err := common.LoadConfig(params.Config, common.Overrides{
		Mode:   params.Mode,
		Line:   params.Line,
		UnitMs: params.UnitMs,
	})
	if err != nil {
		return err
	}
	// Keep log output from tearing up the screen.
	closeLog, err := common.SetupLogging("error", false)
	if err != nil {
		return err
	}
	defer closeLog()

	panel := indicator.NewPanel()
	var ind indicator.Indicator = panel
	if params.Indicator != "" && params.Indicator != config.IndicatorTerminal {
		cfg.Indicator = params.Indicator
		extra, err := common.NewIndicator(cfg, io.Discard)
		if err != nil {
			return err
		}
		ind = indicator.Multi(panel, extra)
	}

	dev, err := common.NewDevice(cfg, ind)
	if err != nil {
		return err
	}
	defer dev.Close()
	if err := dev.Start(); err != nil {
		return err
	}

	message := common.Message(params.Text)
	if message == "" {
		message = "SOS"
	}
	m := newModel(dev, panel, message)
	m = m.replay()
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

type frameMsg time.Time

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

type model struct {
	dev       *driver.Device
	panel     *indicator.Panel
	message   string
	statusMsg string
	width     int
}

func newModel(dev *driver.Device, panel *indicator.Panel, message string) model {
	return model{dev: dev, panel: panel, message: message}
}

func (m model) Init() tea.Cmd {
	return frameCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		return m, frameCmd()
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "l":
			m = m.configure(driver.OptionLine, int(indicator.Left))
		case "r":
			m = m.configure(driver.OptionLine, int(indicator.Right))
		case "n":
			m = m.configure(driver.OptionMode, 0)
		case "e":
			m = m.configure(driver.OptionMode, 1)
		case "+", "=":
			m = m.setUnit(m.dev.Settings().Unit / 2)
		case "-":
			m = m.setUnit(m.dev.Settings().Unit * 2)
		case "enter":
			m = m.replay()
		}
	}
	return m, nil
}

func (m model) configure(opt driver.Option, value int) model {
	if err := m.dev.Configure(opt, value); err != nil {
		m.statusMsg = "Error: " + err.Error()
		return m
	}
	m.statusMsg = ""
	return m
}

func (m model) setUnit(unit time.Duration) model {
	unit = min(max(unit, minUnit), maxUnit)
	return m.configure(driver.OptionUnit, int(unit/time.Millisecond))
}

func (m model) replay() model {
	h := m.dev.Open()
	defer h.Close()
	_, err := io.WriteString(h, m.message)
	switch {
	case errors.Is(err, driver.ErrBusy):
		m.statusMsg = "Still playing, wait for the message to finish"
	case errors.Is(err, driver.ErrTruncated):
		m.statusMsg = "Message cut to fit"
	case err != nil:
		m.statusMsg = "Error: " + err.Error()
	default:
		m.statusMsg = ""
	}
	return m
}

func (m model) View() string {
	st := m.dev.Status()

	var b strings.Builder
	b.WriteString(titleStyle.Render("morselamp") + "  " + m.message + "\n\n")
	b.WriteString(indicator.Lamps(m.panel) + "\n\n")
	b.WriteString(renderStream(st, m.width) + "\n\n")

	state := "idle"
	if st.Playing {
		state = "playing"
	}
	fmt.Fprintf(&b, "mode %s · line %s · unit %dms · %d/%d %s\n", st.Mode, st.Line, st.UnitMs, st.Position, st.Length, state)
	if m.statusMsg != "" {
		b.WriteString(statusStyle.Render(m.statusMsg) + "\n")
	}
	b.WriteString(helpStyle.Render("l/r line · n/e mode · +/- speed · enter replay · q quit"))
	return b.String()
}

// renderStream dims what has been shown and marks the symbol on display.
// With a known width, the stream is cut to fit.
func renderStream(st driver.Status, width int) string {
	// Spaces are drawn as dots so gaps can be counted.
	s := strings.ReplaceAll(st.Stream, " ", "·")
	if width > 0 && runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	runes := []rune(s)
	pos := st.Position
	if !st.Playing || pos == 0 || pos > len(runes) {
		return string(runes)
	}
	return playedStyle.Render(string(runes[:pos-1])) +
		cursorStyle.Render(string(runes[pos-1])) +
		string(runes[pos:])
}
