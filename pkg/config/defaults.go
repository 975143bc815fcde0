package config

import (
	"github.com/spf13/viper"

	"github.com/dsx-project/dsx/pkg/config/types"
)

// SetDefault registers every value of cfg as the viper default of its key.
func SetDefault(cfg types.Config) {
	for key, value := range flatten(cfg) {
		viper.SetDefault(key, value)
	}
}

// Set overrides every key with the value held by cfg.
func Set(cfg types.Config) {
	for key, value := range flatten(cfg) {
		viper.Set(key, value)
	}
}

func flatten(cfg types.Config) map[string]interface{} {
	return map[string]interface{}{
		types.DataDir:               cfg.DataDir,
		types.InstanceID:            cfg.Instance.ID,
		types.ResourceModel:         cfg.Resource.Model,
		types.ResourceCollection:    cfg.Resource.Collection,
		types.ResourceRoutingPrefix: cfg.Resource.RoutingPrefix,
		types.APIHost:               cfg.API.Host,
		types.APIPort:               cfg.API.Port,
		types.APILogLevel:           cfg.API.LogLevel,
		types.APIRequestTimeout:     cfg.API.RequestTimeout.String(),
		types.StoreKind:             string(cfg.Store.Type),
		types.StoreURI:              cfg.Store.URI,
		types.StoreDatabase:         cfg.Store.Database,
		types.StorePath:             cfg.Store.Path,
		types.StoreRetryInterval:    cfg.Store.RetryInterval.String(),
		types.StoreOperationTimeout: cfg.Store.OperationTimeout.String(),
		types.BusKind:               string(cfg.Bus.Type),
		types.BusAddress:            cfg.Bus.Address,
		types.BusTopic:              cfg.Bus.Topic,
		types.BusRetryInterval:      cfg.Bus.RetryInterval.String(),
		types.BusQueueSize:          cfg.Bus.QueueSize,
		types.BusEmbeddedPort:       cfg.Bus.EmbeddedPort,
		types.RealtimePath:          cfg.Realtime.Path,
		types.RealtimeSendBuffer:    cfg.Realtime.SendBuffer,
		types.RealtimePingInterval:  cfg.Realtime.PingInterval.String(),
		types.LoggingMode:           cfg.Logging.Mode,
		types.LoggingLevel:          cfg.Logging.Level,
	}
}
