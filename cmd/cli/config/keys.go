package config

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dsx-project/dsx/cmd/util/flags/cliflags"
	"github.com/dsx-project/dsx/cmd/util/output"
	"github.com/dsx-project/dsx/pkg/config"
	"github.com/dsx-project/dsx/pkg/config/types"
)

type configKey struct {
	Key    string `json:"key"`
	EnvVar string `json:"envVar"`
}

var keyColumns = []output.TableColumn[configKey]{
	{
		ColumnConfig: table.ColumnConfig{Name: "Key"},
		Value:        func(k configKey) string { return k.Key },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Environment Variable"},
		Value:        func(k configKey) string { return k.EnvVar },
	},
}

func newKeysCmd() *cobra.Command {
	o := output.OutputOptions{Format: output.TableFormat}
	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "List every config key and the environment variable that sets it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys := make([]configKey, 0, len(types.AllKeys))
			for _, key := range types.AllKeys {
				keys = append(keys, configKey{Key: key, EnvVar: config.KeyAsEnvVar(key)})
			}
			return output.Output(cmd, keyColumns, o, keys)
		},
	}
	keysCmd.Flags().AddFlagSet(cliflags.OutputFormatFlags(&o))
	return keysCmd
}
