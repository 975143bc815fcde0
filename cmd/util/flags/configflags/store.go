package configflags

import "github.com/dsx-project/dsx/pkg/config/types"

var StoreFlags = []Definition{
	{
		FlagName:     "store",
		DefaultValue: types.Default.Store.Type,
		ConfigPath:   types.StoreKind,
		Description:  `The document store: 'mongo','boltdb','sqlite','inmemory' or 'disabled'.`,
	},
	{
		FlagName:     "store-uri",
		DefaultValue: types.Default.Store.URI,
		ConfigPath:   types.StoreURI,
		Description:  `The mongo connection string.`,
	},
	{
		FlagName:     "store-database",
		DefaultValue: types.Default.Store.Database,
		ConfigPath:   types.StoreDatabase,
		Description:  `The mongo database.`,
	},
	{
		FlagName:     "store-path",
		DefaultValue: types.Default.Store.Path,
		ConfigPath:   types.StorePath,
		Description:  `The boltdb or sqlite file, relative to the data dir unless absolute.`,
	},
	{
		FlagName:     "store-retry-interval",
		DefaultValue: types.Default.Store.RetryInterval,
		ConfigPath:   types.StoreRetryInterval,
		Description:  `The wait between two connection attempts to the store.`,
	},
	{
		FlagName:     "store-timeout",
		DefaultValue: types.Default.Store.OperationTimeout,
		ConfigPath:   types.StoreOperationTimeout,
		Description:  `The maximum time a single store operation may take.`,
	},
}
