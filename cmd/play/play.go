package play

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gen2brain/beeep"
	"github.com/gigurra/morselamp/cmd/common"
	"github.com/gigurra/morselamp/cmd/morse/code"
	"github.com/gigurra/morselamp/cmd/morse/driver"
	"github.com/spf13/cobra"
)

type Params struct {
	Text        []string `pos:"true" optional:"true" help:"Message to play. If none provided, reads from stdin."`
	Mode        string   `short:"m" optional:"true" help:"Encoding mode: normal or error (default from config)." default:""`
	Line        string   `short:"l" optional:"true" help:"Indicator line: left or right (default from config)." default:""`
	UnitMs      int      `short:"u" optional:"true" help:"Timing unit in milliseconds (default from config)." default:"0"`
	Indicator   string   `short:"i" optional:"true" help:"Indicator backend: terminal, log, audio or gpio (default from config)." default:""`
	Config      string   `short:"c" optional:"true" help:"Config file (default ~/.morselamp/config.json)." default:""`
	WatchConfig bool     `short:"w" help:"Apply changes to the config file while playing." default:"false"`
	Notify      bool     `short:"n" help:"Show a desktop notification when playback is done." default:"false"`
	LogFile     bool     `help:"Also append logs to the morselamp log file." default:"false"`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "play",
		Short:       "Play a message on the lamps",
		Long:        "Encode a message and blink it on the selected indicator line, one timing unit per tick. Returns when playback is done.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := Run(ctx, params, os.Stdin, os.Stdout); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "play: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func Run(ctx context.Context, params *Params, in io.Reader, out io.Writer) error {
	cfg, err := common.LoadConfig(params.Config, common.Overrides{
		Mode:      params.Mode,
		Line:      params.Line,
		UnitMs:    params.UnitMs,
		Indicator: params.Indicator,
	})
	if err != nil {
		return err
	}
	closeLog, err := common.SetupLogging(cfg.LogLevel, params.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	text := common.Message(params.Text)
	if len(params.Text) == 0 {
		text, err = readMessage(in)
		if err != nil {
			return err
		}
	}

	ind, err := common.NewIndicator(cfg, out)
	if err != nil {
		return err
	}
	dev, err := common.NewDevice(cfg, ind)
	if err != nil {
		return err
	}
	defer dev.Close()
	// Stops the config watcher before the device closes.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if params.WatchConfig {
		if err := common.FollowConfig(ctx, params.Config, dev); err != nil {
			return err
		}
	}

	h := dev.Open()
	defer h.Close()
	n, err := io.WriteString(h, text)
	if errors.Is(err, driver.ErrTruncated) {
		slog.Warn("message truncated", "accepted", n, "max", code.MaxMessageLen)
	} else if err != nil {
		return err
	}

	if err := dev.Start(); err != nil {
		return err
	}
	select {
	case <-dev.Done():
		if params.Notify {
			notify(fmt.Sprintf("Finished playing %q", text))
		}
		return nil
	case <-ctx.Done():
		return nil
	}
}

var notifyFunc = beeep.Notify

func notify(message string) {
	if err := notifyFunc("morselamp", message, ""); err != nil {
		slog.Warn("notification failed", "error", err)
	}
}

func readMessage(in io.Reader) (string, error) {
	var lines []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	return common.Message(lines), scanner.Err()
}
