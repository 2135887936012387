package table

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/morselamp/cmd/common"
	"github.com/gigurra/morselamp/cmd/morse/code"
	"github.com/gigurra/morselamp/cmd/morse/driver"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

type Params struct {
	UnitMs int  `short:"u" help:"Timing unit used for the duration column (ms)." default:"2000"`
	Digits bool `short:"d" help:"Only list digits." default:"false"`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "table",
		Short:       "Show the symbol table",
		Long:        "List every supported character with its pattern, its normal and error mode streams, and how long it takes to play.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := Run(params, os.Stdout); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "table: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func Run(params *Params, out io.Writer) error {
	if params.UnitMs <= 0 {
		return fmt.Errorf("unit must be positive, got %d", params.UnitMs)
	}
	unit := time.Duration(params.UnitMs) * time.Millisecond

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Char", "Pattern", "Normal", "Error", "Ticks", "Duration"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	for _, e := range code.Entries() {
		if params.Digits && (e.Char < '0' || e.Char > '9') {
			continue
		}
		normal, err := code.Encode(string(e.Char), code.ModeNormal)
		if err != nil {
			return err
		}
		withMarker, err := code.Encode(string(e.Char), code.ModeError)
		if err != nil {
			return err
		}
		ticks := driver.Ticks(normal)
		t.AppendRow(table.Row{
			string(e.Char),
			e.Pattern,
			fmt.Sprintf("%q", normal),
			fmt.Sprintf("%q", withMarker),
			ticks,
			time.Duration(ticks) * unit,
		})
	}
	t.Render()
	return nil
}
