package configflags

import "github.com/dsx-project/dsx/pkg/config/types"

var ClientAPIFlags = []Definition{
	{
		FlagName:     "api-host",
		DefaultValue: types.Default.API.Host,
		ConfigPath:   types.APIHost,
		Description: `The host for the client and server to communicate on (via REST).
Ignored if DSX_API_HOST environment variable is set.`,
	},
	{
		FlagName:     "api-port",
		DefaultValue: types.Default.API.Port,
		ConfigPath:   types.APIPort,
		Description: `The port for the client and server to communicate on (via REST).
Ignored if DSX_API_PORT or PORT environment variable is set.`,
	},
}

var ServerAPIFlags = []Definition{
	{
		FlagName:     "api-log-level",
		DefaultValue: types.Default.API.LogLevel,
		ConfigPath:   types.APILogLevel,
		Description:  `The level request lines are logged at.`,
	},
	{
		FlagName:     "request-timeout",
		DefaultValue: types.Default.API.RequestTimeout,
		ConfigPath:   types.APIRequestTimeout,
		Description:  `The maximum time a REST request may take.`,
	},
}
