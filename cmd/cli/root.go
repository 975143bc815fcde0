package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"

	"github.com/dsx-project/dsx/cmd/cli/agent"
	"github.com/dsx-project/dsx/cmd/cli/config"
	"github.com/dsx-project/dsx/cmd/cli/doc"
	"github.com/dsx-project/dsx/cmd/cli/serve"
	"github.com/dsx-project/dsx/cmd/cli/version"
	"github.com/dsx-project/dsx/cmd/cli/watch"
	"github.com/dsx-project/dsx/cmd/util"
	"github.com/dsx-project/dsx/cmd/util/flags/configflags"
	"github.com/dsx-project/dsx/pkg/config/types"
	"github.com/dsx-project/dsx/pkg/logger"
	"github.com/dsx-project/dsx/pkg/system"
	"github.com/dsx-project/dsx/pkg/telemetry"
)

var ShutdownSignals = []os.Signal{
	syscall.SIGTERM,
	syscall.SIGINT,
}

func NewRootCmd() *cobra.Command {
	rootFlags := map[string][]configflags.Definition{
		"api":      configflags.ClientAPIFlags,
		"logging":  configflags.LogFlags,
		"data-dir": configflags.DataDirFlag,
	}

	RootCmd := &cobra.Command{
		Use:   "dsx",
		Short: "Realtime document sync",
		Long: `Keep the documents of one resource kind in sync between a document store,
websocket clients and peer instances.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := configflags.BindFlags(cmd, rootFlags); err != nil {
				return err
			}
			mode, err := logger.ParseLogMode(viper.GetString(types.LoggingMode))
			if err != nil {
				return err
			}
			logger.ConfigureLogging(mode, viper.GetString(types.LoggingLevel))
			telemetry.SetupFromEnvs()

			ctx := cmd.Context()
			cm := system.NewCleanupManager()
			cm.RegisterCallback(telemetry.Cleanup)
			ctx = context.WithValue(ctx, util.SystemManagerKey, cm)

			var names []string
			root := cmd
			for ; root.HasParent(); root = root.Parent() {
				names = append([]string{root.Name()}, names...)
			}
			name := fmt.Sprintf("dsx.%s", strings.Join(names, "."))
			ctx, span := telemetry.NewSpan(ctx, telemetry.GetTracer(), name)
			ctx = context.WithValue(ctx, spanKey, span)

			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			ctx.Value(spanKey).(trace.Span).End()
			util.GetCleanupManager(ctx).Cleanup(context.WithoutCancel(ctx))
		},
	}

	if err := configflags.RegisterPersistentFlags(RootCmd, rootFlags); err != nil {
		panic(fmt.Sprintf("DEVELOPER ERROR: %s", err))
	}

	// ====== Run an instance
	RootCmd.AddCommand(serve.NewCmd())

	// ====== Read and write documents
	RootCmd.AddCommand(doc.NewCmd())
	RootCmd.AddCommand(watch.NewCmd())

	// ====== Inspect
	RootCmd.AddCommand(agent.NewCmd())
	RootCmd.AddCommand(config.NewCmd())
	RootCmd.AddCommand(version.NewCmd())

	return RootCmd
}

func Execute() {
	rootCmd := NewRootCmd()

	// Ensure commands are able to stop cleanly if someone presses ctrl+c
	ctx, cancel := signal.NotifyContext(context.Background(), ShutdownSignals...)
	defer cancel()
	rootCmd.SetContext(ctx)

	// Use stdout, not stderr for cmd.Print output, so that
	// e.g. DOC=$(dsx doc get k1) works
	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)

	if err := rootCmd.Execute(); err != nil {
		util.PrintErr(rootCmd, err)
		cancel()
		os.Exit(1)
	}
}

type contextKey struct {
	name string
}

var spanKey = contextKey{name: "context key for storing the root span"}
