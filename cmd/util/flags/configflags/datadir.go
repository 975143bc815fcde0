package configflags

import "github.com/dsx-project/dsx/pkg/config/types"

var DataDirFlag = []Definition{
	{
		FlagName:     "data-dir",
		DefaultValue: types.DefaultDataDir(),
		ConfigPath:   types.DataDir,
		Description:  `The directory holding config.yaml and the embedded stores.`,
	},
}
