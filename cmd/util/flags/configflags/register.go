package configflags

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dsx-project/dsx/cmd/util/flags"
	"github.com/dsx-project/dsx/pkg/config/types"
	"github.com/dsx-project/dsx/pkg/logger"
)

// Definition ties a command line flag to the configuration key it sets.
type Definition struct {
	FlagName     string
	ConfigPath   string
	DefaultValue interface{}
	Description  string
	// Deprecated hides the flag and prints the message when it is used.
	Deprecated string
}

// RegisterFlags adds one flag set per group to the command's local flags.
func RegisterFlags(cmd *cobra.Command, register map[string][]Definition) error {
	for name, defs := range register {
		fset, err := newFlagSet(name, defs)
		if err != nil {
			return err
		}
		cmd.Flags().AddFlagSet(fset)
	}
	return nil
}

// RegisterPersistentFlags is RegisterFlags for flags inherited by every
// subcommand.
func RegisterPersistentFlags(cmd *cobra.Command, register map[string][]Definition) error {
	for name, defs := range register {
		fset, err := newFlagSet(name, defs)
		if err != nil {
			return err
		}
		cmd.PersistentFlags().AddFlagSet(fset)
	}
	return nil
}

// BindFlags binds every flag to its configuration key so that a flag given
// on the command line takes precedence over the config file and the
// environment. Call it from the PreRun of the command that owns the flags;
// viper is a flat namespace and the last binding of a key wins.
func BindFlags(cmd *cobra.Command, register map[string][]Definition) error {
	for _, defs := range register {
		for _, def := range defs {
			flag := cmd.Flags().Lookup(def.FlagName)
			if flag == nil {
				return fmt.Errorf("flag %q is not registered on %s", def.FlagName, cmd.Name())
			}
			if err := viper.BindPFlag(def.ConfigPath, flag); err != nil {
				return err
			}
		}
	}
	return nil
}

// FlagNameForKey returns the flag that sets key, formatted for the command
// line.
func FlagNameForKey(key string, defs ...Definition) string {
	for _, def := range defs {
		if def.ConfigPath == key {
			return "--" + def.FlagName
		}
	}
	return ""
}

func newFlagSet(name string, defs []Definition) (*pflag.FlagSet, error) {
	fset := pflag.NewFlagSet(name, pflag.ContinueOnError)
	for _, def := range defs {
		switch v := def.DefaultValue.(type) {
		case string:
			fset.String(def.FlagName, v, def.Description)
		case int:
			fset.Int(def.FlagName, v, def.Description)
		case bool:
			fset.Bool(def.FlagName, v, def.Description)
		case time.Duration:
			fset.Duration(def.FlagName, v, def.Description)
		case types.Duration:
			fset.Duration(def.FlagName, v.AsTimeDuration(), def.Description)
		case types.StoreType:
			fset.Var(flags.StoreTypeFlag(&v), def.FlagName, def.Description)
		case types.BusType:
			fset.Var(flags.BusTypeFlag(&v), def.FlagName, def.Description)
		case logger.LogMode:
			fset.Var(flags.LoggingFlag(&v), def.FlagName, def.Description)
		default:
			return nil, fmt.Errorf("unhandled type %T for flag %s", def.DefaultValue, def.FlagName)
		}
		if def.Deprecated != "" {
			if err := fset.MarkDeprecated(def.FlagName, def.Deprecated); err != nil {
				return nil, err
			}
		}
	}
	return fset, nil
}
