package hook

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// ApplyPorcelainLogLevel is a Cobra pre run hook that silences info and
// debug logs for commands whose output is meant to be parsed.
func ApplyPorcelainLogLevel(cmd *cobra.Command, _ []string) {
	if zerolog.GlobalLevel() < zerolog.WarnLevel {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}
