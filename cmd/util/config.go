package util

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dsx-project/dsx/pkg/config"
	"github.com/dsx-project/dsx/pkg/config/types"
	"github.com/dsx-project/dsx/pkg/logger"
)

// LoadConfig reads the configuration of the data dir selected by --data-dir
// or DSX_DATADIR, and reconfigures logging from it. Flags must be bound
// before it is called.
func LoadConfig(cmd *cobra.Command) (types.Config, error) {
	cfg, err := config.Load(DataDir(cmd))
	if err != nil {
		return types.Config{}, err
	}
	mode, err := logger.ParseLogMode(cfg.Logging.Mode)
	if err != nil {
		return types.Config{}, err
	}
	logger.ConfigureLogging(mode, cfg.Logging.Level)
	return cfg, nil
}

// DataDir returns the data dir before the configuration is loaded, since the
// config file lives in it.
func DataDir(cmd *cobra.Command) string {
	if flag := cmd.Flags().Lookup("data-dir"); flag != nil && flag.Changed {
		return flag.Value.String()
	}
	if dir := config.Getenv(types.DataDir); dir != "" {
		return dir
	}
	if dir := viper.GetString(types.DataDir); dir != "" {
		return dir
	}
	return types.DefaultDataDir()
}
