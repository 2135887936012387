// Package common holds what the morselamp commands share: flag enrichment,
// logging setup, config loading and device construction.
package common

import (
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
)

func DefaultParamEnricher() boa.ParamEnricher {
	return boa.ParamEnricherCombine(
		boa.ParamEnricherBool,
		boa.ParamEnricherName,
		boa.ParamEnricherShort,
	)
}

// Message joins positional words into one message. Letters are upper cased
// since only A-Z can be encoded; anything else is left for the encoder to
// reject.
func Message(words []string) string {
	return strings.ToUpper(strings.Join(words, " "))
}
