package types

import (
	"fmt"
	"time"
)

// Config is the configuration of one instance.
type Config struct {
	// DataDir holds the config file and the embedded stores.
	DataDir  string   `yaml:"DataDir,omitempty"`
	Instance Instance `yaml:"Instance,omitempty"`
	Resource Resource `yaml:"Resource,omitempty"`
	API      API      `yaml:"API,omitempty"`
	Store    Store    `yaml:"Store,omitempty"`
	Bus      Bus      `yaml:"Bus,omitempty"`
	Realtime Realtime `yaml:"Realtime,omitempty"`
	Logging  Logging  `yaml:"Logging,omitempty"`
}

type Instance struct {
	// ID tags the changes this instance publishes. A random ID is picked
	// when empty.
	ID string `yaml:"ID,omitempty"`
}

// Resource names the one resource kind an instance synchronises.
type Resource struct {
	// Model derives the realtime event names, e.g. "user".
	Model string `yaml:"Model,omitempty"`
	// Collection is the store collection, bucket or table partition.
	Collection string `yaml:"Collection,omitempty"`
	// RoutingPrefix is the path the CRUD routes are served under.
	RoutingPrefix string `yaml:"RoutingPrefix,omitempty"`
}

type API struct {
	Host           string   `yaml:"Host,omitempty"`
	Port           int      `yaml:"Port,omitempty"`
	LogLevel       string   `yaml:"LogLevel,omitempty"`
	RequestTimeout Duration `yaml:"RequestTimeout,omitempty"`
}

type Store struct {
	Type StoreType `yaml:"Type,omitempty"`
	// URI locates a mongo deployment.
	URI      string `yaml:"URI,omitempty"`
	Database string `yaml:"Database,omitempty"`
	// Path locates the file of the boltdb and sqlite stores. Relative paths
	// are resolved against DataDir.
	Path             string   `yaml:"Path,omitempty"`
	RetryInterval    Duration `yaml:"RetryInterval,omitempty"`
	OperationTimeout Duration `yaml:"OperationTimeout,omitempty"`
}

type Bus struct {
	Type BusType `yaml:"Type,omitempty"`
	// Address is host:port of the redis server or a comma separated list of
	// NATS servers.
	Address string `yaml:"Address,omitempty"`
	// Topic is the redis channel or NATS subject. Derived from the resource
	// model when empty.
	Topic         string   `yaml:"Topic,omitempty"`
	RetryInterval Duration `yaml:"RetryInterval,omitempty"`
	// QueueSize bounds the changes waiting to be published.
	QueueSize int `yaml:"QueueSize,omitempty"`
	// EmbeddedPort is the client port of the in-process NATS server, -1 for
	// a random one.
	EmbeddedPort int `yaml:"EmbeddedPort,omitempty"`
}

type Realtime struct {
	Path         string   `yaml:"Path,omitempty"`
	SendBuffer   int      `yaml:"SendBuffer,omitempty"`
	PingInterval Duration `yaml:"PingInterval,omitempty"`
}

type Logging struct {
	Mode  string `yaml:"Mode,omitempty"`
	Level string `yaml:"Level,omitempty"`
}

// Duration is a time.Duration that reads and writes as "5s".
type Duration time.Duration

func (d Duration) AsTimeDuration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}
