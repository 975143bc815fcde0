package types

// Keys of every configuration value, as used by viper and the flags.
const (
	DataDir               = "DataDir"
	InstanceID            = "Instance.ID"
	ResourceModel         = "Resource.Model"
	ResourceCollection    = "Resource.Collection"
	ResourceRoutingPrefix = "Resource.RoutingPrefix"
	APIHost               = "API.Host"
	APIPort               = "API.Port"
	APILogLevel           = "API.LogLevel"
	APIRequestTimeout     = "API.RequestTimeout"
	StoreKind             = "Store.Type"
	StoreURI              = "Store.URI"
	StoreDatabase         = "Store.Database"
	StorePath             = "Store.Path"
	StoreRetryInterval    = "Store.RetryInterval"
	StoreOperationTimeout = "Store.OperationTimeout"
	BusKind               = "Bus.Type"
	BusAddress            = "Bus.Address"
	BusTopic              = "Bus.Topic"
	BusRetryInterval      = "Bus.RetryInterval"
	BusQueueSize          = "Bus.QueueSize"
	BusEmbeddedPort       = "Bus.EmbeddedPort"
	RealtimePath          = "Realtime.Path"
	RealtimeSendBuffer    = "Realtime.SendBuffer"
	RealtimePingInterval  = "Realtime.PingInterval"
	LoggingMode           = "Logging.Mode"
	LoggingLevel          = "Logging.Level"
)

// AllKeys lists every key, used to bind environment variables.
var AllKeys = []string{
	DataDir, InstanceID,
	ResourceModel, ResourceCollection, ResourceRoutingPrefix,
	APIHost, APIPort, APILogLevel, APIRequestTimeout,
	StoreKind, StoreURI, StoreDatabase, StorePath, StoreRetryInterval, StoreOperationTimeout,
	BusKind, BusAddress, BusTopic, BusRetryInterval, BusQueueSize, BusEmbeddedPort,
	RealtimePath, RealtimeSendBuffer, RealtimePingInterval,
	LoggingMode, LoggingLevel,
}
