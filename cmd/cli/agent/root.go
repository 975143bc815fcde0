package agent

import (
	"github.com/spf13/cobra"

	"github.com/dsx-project/dsx/cmd/util/hook"
)

func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "agent",
		Short:  "Commands to query the instance the client points at.",
		PreRun: hook.ApplyPorcelainLogLevel,
	}
	cmd.AddCommand(NewAliveCmd())
	cmd.AddCommand(NewInstanceCmd())
	cmd.AddCommand(NewVersionCmd())
	return cmd
}
