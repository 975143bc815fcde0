package config

import (
	"net"
	"os"
	"strconv"

	"github.com/spf13/viper"

	"github.com/dsx-project/dsx/pkg/config/types"
)

// Environment variables of earlier deployments, still honoured when the
// matching DSX_ variable is unset.
const (
	LegacyPort            = "PORT"
	LegacyServerID        = "SERVER_ID"
	LegacyDBHost          = "DBHOST"
	LegacyDBPort          = "DBPORT"
	LegacyDBDisabled      = "DB_DISABLED"
	LegacyAdapterHost     = "ADAPTERHOST"
	LegacyAdapterPort     = "ADAPTERPORT"
	LegacyAdapterDisabled = "ADAPTER_DISABLED"
)

// legacyAliases maps keys to the legacy variables read after their DSX_
// variable.
var legacyAliases = map[string]string{
	types.APIPort:    LegacyPort,
	types.InstanceID: LegacyServerID,
}

func bindEnv() error {
	for _, key := range types.AllKeys {
		names := []string{KeyAsEnvVar(key)}
		if legacy, ok := legacyAliases[key]; ok {
			names = append(names, legacy)
		}
		if err := viper.BindEnv(append([]string{key}, names...)...); err != nil {
			return err
		}
	}
	return nil
}

// applyLegacySwitches maps the legacy variables that do not correspond to a
// single key.
func applyLegacySwitches(cfg *types.Config) {
	unset := func(key string) bool {
		_, ok := os.LookupEnv(KeyAsEnvVar(key))
		return !ok
	}

	if host, port := os.Getenv(LegacyDBHost), os.Getenv(LegacyDBPort); (host != "" || port != "") && unset(types.StoreURI) {
		cfg.Store.URI = "mongodb://" + hostPort(host, port, "127.0.0.1", "27017")
	}
	if truthy(os.Getenv(LegacyDBDisabled)) && unset(types.StoreKind) {
		cfg.Store.Type = types.StoreDisabled
	}
	if host, port := os.Getenv(LegacyAdapterHost), os.Getenv(LegacyAdapterPort); (host != "" || port != "") && unset(types.BusAddress) {
		cfg.Bus.Address = hostPort(host, port, "127.0.0.1", "6379")
	}
	if truthy(os.Getenv(LegacyAdapterDisabled)) && unset(types.BusKind) {
		cfg.Bus.Type = types.BusDisabled
	}
}

func hostPort(host, port, defaultHost, defaultPort string) string {
	if host == "" {
		host = defaultHost
	}
	if port == "" {
		port = defaultPort
	}
	return net.JoinHostPort(host, port)
}

func truthy(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
