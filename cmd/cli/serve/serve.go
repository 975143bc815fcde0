package serve

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dsx-project/dsx/cmd/util"
	"github.com/dsx-project/dsx/cmd/util/flags/configflags"
	"github.com/dsx-project/dsx/pkg/config"
	"github.com/dsx-project/dsx/pkg/config/types"
	"github.com/dsx-project/dsx/pkg/node"
)

const (
	serveLong = `Start an instance serving the REST routes and the websocket endpoint of one
resource kind.

Values are read from, in increasing precedence: the defaults, config.yaml in
the data dir, the legacy environment (PORT, SERVER_ID, DBHOST, DBPORT,
DB_DISABLED, ADAPTERHOST, ADAPTERPORT, ADAPTER_DISABLED), DSX_ environment
variables and finally flags.`

	serveExample = `  # Start an instance backed by a local mongo and no peers
  dsx serve --bus disabled

  # Start an instance with a file store and an embedded NATS server peers can join
  dsx serve --store boltdb --bus embedded --bus-embedded-port 4222

  # Join the instance above from another host
  dsx serve --store boltdb --bus nats --bus-address nats://10.0.0.1:4222 --api-port 16041

  # Relay changes through redis
  dsx serve --bus redis --bus-address 127.0.0.1:6379`
)

func NewCmd() *cobra.Command {
	serveFlags := map[string][]configflags.Definition{
		"instance":   configflags.InstanceFlags,
		"resource":   configflags.ResourceFlags,
		"server-api": configflags.ServerAPIFlags,
		"store":      configflags.StoreFlags,
		"bus":        configflags.BusFlags,
		"realtime":   configflags.RealtimeFlags,
	}

	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "Start a sync instance",
		Long:    serveLong,
		Example: serveExample,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			// bound here rather than at registration so that only the
			// flags of the running command reach viper
			return configflags.BindFlags(cmd, serveFlags)
		},
		RunE: serve,
	}

	if err := configflags.RegisterFlags(serveCmd, serveFlags); err != nil {
		util.Fatal(serveCmd, err, 1)
	}

	return serveCmd
}

func serve(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cm := util.GetCleanupManager(ctx)

	cfg, err := util.LoadConfig(cmd)
	if err != nil {
		return err
	}

	instance, err := node.NewNode(ctx, node.NodeConfig{
		Config:         cfg,
		CleanupManager: cm,
	})
	if err != nil {
		return fmt.Errorf("error creating instance: %w", err)
	}
	if err := instance.Start(ctx); err != nil {
		return fmt.Errorf("error starting instance: %w", err)
	}

	cmd.Println(connectionHint(instance))

	<-ctx.Done() // block until killed
	cmd.Println("Shutting down...")
	return nil
}

// connectionHint prints the shell variables that point clients, and peers
// when the bus is embedded, at this instance.
func connectionHint(instance *node.Node) string {
	uri := instance.APIServer.GetURI()
	envVarBuilder := strings.Builder{}
	envVarBuilder.WriteString(fmt.Sprintf("export %s=%s\n", config.KeyAsEnvVar(types.APIHost), uri.Hostname()))
	envVarBuilder.WriteString(fmt.Sprintf("export %s=%s\n", config.KeyAsEnvVar(types.APIPort), uri.Port()))

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("Instance %s is serving %s on %s\n",
		instance.ID, instance.Config.Resource.Model, uri.String()))
	if instance.Bus.Type == types.BusEmbedded {
		sb.WriteString("To connect another instance to this one, run the following command in your shell:\n")
		sb.WriteString(fmt.Sprintf("%s serve %s=%s %s=%s\n",
			os.Args[0],
			configflags.FlagNameForKey(types.BusKind, configflags.BusFlags...), types.BusNATS,
			configflags.FlagNameForKey(types.BusAddress, configflags.BusFlags...), instance.Bus.Address,
		))
		envVarBuilder.WriteString(fmt.Sprintf("export %s=%s\n", config.KeyAsEnvVar(types.BusKind), types.BusNATS))
		envVarBuilder.WriteString(fmt.Sprintf("export %s=%s\n", config.KeyAsEnvVar(types.BusAddress), instance.Bus.Address))
	}
	sb.WriteString("\nTo use this instance from the client, run the following commands in your shell:\n")
	sb.WriteString(envVarBuilder.String())
	return sb.String()
}
