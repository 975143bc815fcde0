package configflags

import (
	"github.com/dsx-project/dsx/pkg/config/types"
	"github.com/dsx-project/dsx/pkg/logger"
)

var LogFlags = []Definition{
	{
		FlagName:     "log-mode",
		DefaultValue: logger.LogMode(types.Default.Logging.Mode),
		ConfigPath:   types.LoggingMode,
		Description:  `Log format: 'default','json','combined'`,
	},
	{
		FlagName:     "log-level",
		DefaultValue: types.Default.Logging.Level,
		ConfigPath:   types.LoggingLevel,
		Description:  `Log level: 'trace','debug','info','warn','error'`,
	},
}
