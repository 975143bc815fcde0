package configflags

import "github.com/dsx-project/dsx/pkg/config/types"

var BusFlags = []Definition{
	{
		FlagName:     "bus",
		DefaultValue: types.Default.Bus.Type,
		ConfigPath:   types.BusKind,
		Description:  `The change bus to peers: 'redis','nats','embedded' or 'disabled'.`,
	},
	{
		FlagName:     "bus-address",
		DefaultValue: types.Default.Bus.Address,
		ConfigPath:   types.BusAddress,
		Description:  `The redis host:port or a comma separated list of NATS servers.`,
	},
	{
		FlagName:     "bus-topic",
		DefaultValue: types.Default.Bus.Topic,
		ConfigPath:   types.BusTopic,
		Description:  `The redis channel or NATS subject. Derived from the model when empty.`,
	},
	{
		FlagName:     "bus-retry-interval",
		DefaultValue: types.Default.Bus.RetryInterval,
		ConfigPath:   types.BusRetryInterval,
		Description:  `The wait between two connection attempts to the bus.`,
	},
	{
		FlagName:     "bus-queue-size",
		DefaultValue: types.Default.Bus.QueueSize,
		ConfigPath:   types.BusQueueSize,
		Description:  `Changes waiting to be published before new ones are dropped.`,
	},
	{
		FlagName:     "bus-embedded-port",
		DefaultValue: types.Default.Bus.EmbeddedPort,
		ConfigPath:   types.BusEmbeddedPort,
		Description:  `The client port of the embedded NATS server, -1 for a random one.`,
	},
}
