package util

import (
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dsx-project/dsx/pkg/config/types"
	"github.com/dsx-project/dsx/pkg/publicapi/client"
)

// GetAPIClient returns a client for the instance named by the loaded
// configuration, overridden by --api-host and --api-port.
func GetAPIClient(cmd *cobra.Command) (*client.Client, types.Config, error) {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return nil, types.Config{}, err
	}
	host := cfg.API.Host
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	c, err := client.New(
		net.JoinHostPort(host, strconv.Itoa(cfg.API.Port)),
		client.WithRoutingPrefix(cfg.Resource.RoutingPrefix),
		client.WithSocketPath(cfg.Realtime.Path),
	)
	if err != nil {
		return nil, types.Config{}, err
	}
	return c, cfg, nil
}
