package config

import (
	"github.com/spf13/cobra"

	"github.com/dsx-project/dsx/cmd/util"
	"github.com/dsx-project/dsx/pkg/config"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the config an instance started from here would use.",
		Long: `Show the config an instance started from here would use: the defaults,
overlaid with config.yaml in the data dir and the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := util.LoadConfig(cmd)
			if err != nil {
				return err
			}
			cfgbytes, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			cmd.Println(string(cfgbytes))
			return nil
		},
	}
}
