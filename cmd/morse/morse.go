package morse

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/atotto/clipboard"
	"github.com/gigurra/morselamp/cmd/common"
	"github.com/gigurra/morselamp/cmd/morse/code"
	"github.com/gigurra/morselamp/cmd/morse/driver"
	"github.com/gigurra/morselamp/cmd/morse/indicator"
	"github.com/spf13/cobra"
)

type Params struct {
	Text     []string `pos:"true" optional:"true" help:"Text to encode/decode. If none provided, reads from stdin."`
	Mode     string   `short:"m" help:"Encoding mode: normal or error." default:"normal"`
	Decode   bool     `short:"d" help:"Decode a lamp stream (* - and spaces) back to text." default:"false"`
	Copy     bool     `help:"Also copy the result to the clipboard." default:"false"`
	SelfTest bool     `help:"Check the encoder against the reference vectors and exit." default:"false"`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "encode",
		Short:       "Encode text into a lamp stream",
		Long:        "Encode A-Z, 0-9 and spaces into the dot/dash/space stream the lamps play, rendered as '*', '-' and ' '. Lower case input is upper cased.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := Run(params, os.Stdin, os.Stdout); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "encode: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func Run(params *Params, in io.Reader, out io.Writer) error {
	mode, err := code.ParseMode(params.Mode)
	if err != nil {
		return err
	}
	if params.SelfTest {
		return selfTest(out)
	}

	convert := func(text string) (string, error) {
		if params.Decode {
			return code.Decode(text)
		}
		return Encode(text, mode)
	}

	var results []string
	emit := func(text string) error {
		result, err := convert(text)
		if err != nil {
			return err
		}
		results = append(results, result)
		// Quoted so trailing gaps stay visible.
		_, err = fmt.Fprintf(out, "%q\n", result)
		return err
	}

	if len(params.Text) > 0 {
		if err := emit(strings.Join(params.Text, " ")); err != nil {
			return err
		}
	} else {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			if err := emit(scanner.Text()); err != nil {
				return err
			}
		}
		if err := scanner.Err(); err != nil {
			return err
		}
	}

	if params.Copy {
		if err := clipboardWriteAll(strings.Join(results, "\n")); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
	}
	return nil
}

// for testing
var clipboardWriteAll = clipboard.WriteAll

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// Encode runs text through a device channel, the same write/read path a
// lamp client uses, without playing it.
func Encode(text string, mode code.Mode) (string, error) {
	settings := driver.DefaultSettings()
	settings.Mode = mode
	dev, err := driver.New(indicator.NewPanel(), settings, driver.WithLogger(quiet))
	if err != nil {
		return "", err
	}
	defer dev.Close()

	h := dev.Open()
	defer h.Close()
	if _, err := io.WriteString(h, common.Message([]string{text})); err != nil {
		if !errors.Is(err, driver.ErrTruncated) {
			return "", err
		}
		_, _ = fmt.Fprintf(os.Stderr, "Warning: message cut to %d characters\n", code.MaxMessageLen)
	}
	rendered, err := io.ReadAll(h)
	if err != nil {
		return "", err
	}
	return string(rendered), nil
}

func selfTest(out io.Writer) error {
	failed := 0
	for _, v := range code.TestVectors {
		got, err := Encode(v.Input, code.ModeNormal)
		status := "ok"
		if err != nil || got != v.Output {
			status = "FAIL"
			failed++
		}
		_, _ = fmt.Fprintf(out, "%-4s %-8q -> %q\n", status, v.Input, got)
		if status == "FAIL" {
			_, _ = fmt.Fprintf(out, "     want %q\n", v.Output)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d vectors failed", failed, len(code.TestVectors))
	}
	return nil
}
