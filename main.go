package main

import (
	"runtime/debug"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/morselamp/cmd/configure"
	"github.com/gigurra/morselamp/cmd/lamps"
	"github.com/gigurra/morselamp/cmd/morse"
	"github.com/gigurra/morselamp/cmd/play"
	"github.com/gigurra/morselamp/cmd/serve"
	"github.com/gigurra/morselamp/cmd/table"
	"github.com/spf13/cobra"
)

func main() {
	boa.CmdT[boa.NoParams]{
		Use:     "morselamp",
		Short:   "Blink Morse code on a pair of indicator lamps",
		Version: appVersion(),
		SubCmds: []*cobra.Command{
			morse.Cmd(),
			play.Cmd(),
			table.Cmd(),
			lamps.Cmd(),
			serve.Cmd(),
			configure.Cmd(),
		},
	}.Run()
}

func appVersion() string {
	bi, hasBuilInfo := debug.ReadBuildInfo()
	if !hasBuilInfo {
		return "unknown-(no build info)"
	}

	versionString := bi.Main.Version
	if versionString == "" {
		versionString = "unknown-(no version)"
	}

	return versionString
}
