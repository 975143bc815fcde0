package types

import (
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultModel   = "user"
	DefaultAPIPort = 16040
)

// Default is the configuration of an instance when nothing is set.
var Default = Config{
	DataDir: DefaultDataDir(),
	Resource: Resource{
		Model:         DefaultModel,
		Collection:    "users",
		RoutingPrefix: "/users",
	},
	API: API{
		Host:           "0.0.0.0",
		Port:           DefaultAPIPort,
		LogLevel:       "debug",
		RequestTimeout: Duration(30 * time.Second),
	},
	Store: Store{
		Type:             StoreMongo,
		URI:              "mongodb://127.0.0.1:27017",
		Database:         "dsx",
		Path:             "dsx.db",
		RetryInterval:    Duration(5 * time.Second),
		OperationTimeout: Duration(2 * time.Second),
	},
	Bus: Bus{
		Type:          BusRedis,
		Address:       "127.0.0.1:6379",
		RetryInterval: Duration(5 * time.Second),
		QueueSize:     1024,
		EmbeddedPort:  -1,
	},
	Realtime: Realtime{
		Path:         "/socket",
		SendBuffer:   256,
		PingInterval: Duration(30 * time.Second),
	},
	Logging: Logging{
		Mode:  "default",
		Level: "info",
	},
}

// DefaultDataDir is ~/.dsx, or .dsx in the working directory when there is
// no home directory.
func DefaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".dsx")
	}
	return ".dsx"
}

// BusTopic returns the configured topic or the one derived from the model.
func (c Config) BusTopic() string {
	if c.Bus.Topic != "" {
		return c.Bus.Topic
	}
	return "dsx." + c.Resource.Model
}

// StorePath resolves the store file against the data directory.
func (c Config) StorePath() string {
	if filepath.IsAbs(c.Store.Path) || c.DataDir == "" {
		return c.Store.Path
	}
	return filepath.Join(c.DataDir, c.Store.Path)
}
