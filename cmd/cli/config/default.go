package config

import (
	"github.com/spf13/cobra"

	"github.com/dsx-project/dsx/pkg/config"
	"github.com/dsx-project/dsx/pkg/config/types"
)

func newDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "default",
		Short: "Show the default dsx config.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgbytes, err := config.Marshal(types.Default)
			if err != nil {
				return err
			}
			cmd.Println(string(cfgbytes))
			return nil
		},
	}
}
