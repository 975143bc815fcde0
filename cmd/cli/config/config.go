package config

import (
	"github.com/spf13/cobra"

	"github.com/dsx-project/dsx/cmd/util/hook"
)

func NewCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:    "config",
		Short:  "Interact with the dsx configuration system.",
		PreRun: hook.ApplyPorcelainLogLevel,
	}
	configCmd.AddCommand(newShowCmd())
	configCmd.AddCommand(newDefaultCmd())
	configCmd.AddCommand(newKeysCmd())
	return configCmd
}
