package configure

import (
	"fmt"
	"io"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/morselamp/cmd/common"
	"github.com/gigurra/morselamp/cmd/morse/config"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type Params struct {
	Option string `pos:"true" optional:"true" help:"Option to set: mode (0), line (1) or unit (3). Omit to show the config."`
	Value  string `pos:"true" optional:"true" help:"New value, e.g. error, right, 150 or 1.5s."`
	Config string `short:"c" optional:"true" help:"Config file (default ~/.morselamp/config.json)." default:""`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "configure",
		Short:       "Show or change the lamp configuration",
		Long:        "Set one playback option in the config file. Running 'play --watch-config' and 'serve' processes apply the change immediately.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := Run(params, os.Stdout); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "configure: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func Run(params *Params, out io.Writer) error {
	path := params.Config
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if params.Option == "" {
		render(out, path, cfg)
		return nil
	}
	if params.Value == "" {
		return fmt.Errorf("missing value for %s", params.Option)
	}
	if err := config.Set(cfg, params.Option, params.Value); err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Saved %s\n", path)
	render(out, path, cfg)
	return nil
}

func render(out io.Writer, path string, cfg *config.Config) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.SetTitle(path)
	t.AppendHeader(table.Row{"Setting", "Value"})
	t.AppendRows([]table.Row{
		{"mode", cfg.Mode},
		{"line", cfg.Line},
		{"unit_ms", cfg.UnitMs},
		{"indicator", cfg.Indicator},
		{"gpio", fmt.Sprintf("%s left=%d right=%d", cfg.GPIO.Chip, cfg.GPIO.LeftOffset, cfg.GPIO.RightOffset)},
		{"audio", fmt.Sprintf("%gHz", cfg.Audio.FrequencyHz)},
		{"log_level", cfg.LogLevel},
	})
	t.Render()
}
