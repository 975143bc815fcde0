package agent

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dsx-project/dsx/cmd/util"
	"github.com/dsx-project/dsx/cmd/util/flags/cliflags"
	"github.com/dsx-project/dsx/cmd/util/output"
)

// AliveOptions is a struct to support alive command
type AliveOptions struct {
	OutputOpts output.NonTabularOutputOptions
}

// NewAliveOptions returns initialized Options
func NewAliveOptions() *AliveOptions {
	return &AliveOptions{
		OutputOpts: output.NonTabularOutputOptions{Format: output.YAMLFormat},
	}
}

func NewAliveCmd() *cobra.Command {
	o := NewAliveOptions()
	aliveCmd := &cobra.Command{
		Use:   "alive",
		Short: "Get the instance's liveness.",
		Args:  cobra.NoArgs,
		RunE:  o.runAlive,
	}
	aliveCmd.Flags().AddFlagSet(cliflags.OutputNonTabularFormatFlags(&o.OutputOpts))
	return aliveCmd
}

func (o *AliveOptions) runAlive(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	api, _, err := util.GetAPIClient(cmd)
	if err != nil {
		return err
	}
	response, err := api.Alive(ctx)
	if err != nil {
		return fmt.Errorf("could not get server alive: %w", err)
	}
	if err = output.OutputOneNonTabular(cmd, o.OutputOpts, response); err != nil {
		return fmt.Errorf("failed to write alive: %w", err)
	}
	return nil
}
