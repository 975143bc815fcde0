package configflags

import "github.com/dsx-project/dsx/pkg/config/types"

var InstanceFlags = []Definition{
	{
		FlagName:     "instance-id",
		DefaultValue: types.Default.Instance.ID,
		ConfigPath:   types.InstanceID,
		Description:  `The ID this instance tags its changes with. A random ID is picked when empty.`,
	},
}

var ResourceFlags = []Definition{
	{
		FlagName:     "model",
		DefaultValue: types.Default.Resource.Model,
		ConfigPath:   types.ResourceModel,
		Description:  `The resource model, used to derive the realtime event names.`,
	},
	{
		FlagName:     "collection",
		DefaultValue: types.Default.Resource.Collection,
		ConfigPath:   types.ResourceCollection,
		Description:  `The store collection holding the documents.`,
	},
	{
		FlagName:     "routing-prefix",
		DefaultValue: types.Default.Resource.RoutingPrefix,
		ConfigPath:   types.ResourceRoutingPrefix,
		Description:  `The path the REST routes are served under.`,
	},
}

var RealtimeFlags = []Definition{
	{
		FlagName:     "socket-path",
		DefaultValue: types.Default.Realtime.Path,
		ConfigPath:   types.RealtimePath,
		Description:  `The path the websocket endpoint is served on.`,
	},
	{
		FlagName:     "socket-send-buffer",
		DefaultValue: types.Default.Realtime.SendBuffer,
		ConfigPath:   types.RealtimeSendBuffer,
		Description:  `Frames queued per connection before new ones are dropped.`,
	},
	{
		FlagName:     "socket-ping-interval",
		DefaultValue: types.Default.Realtime.PingInterval,
		ConfigPath:   types.RealtimePingInterval,
		Description:  `How often idle connections are pinged.`,
	},
}
