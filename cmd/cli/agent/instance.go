package agent

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/dsx-project/dsx/cmd/util"
	"github.com/dsx-project/dsx/cmd/util/flags/cliflags"
	"github.com/dsx-project/dsx/cmd/util/output"
)

// InstanceOptions is a struct to support instance command
type InstanceOptions struct {
	OutputOpts output.NonTabularOutputOptions
}

// NewInstanceOptions returns initialized Options
func NewInstanceOptions() *InstanceOptions {
	return &InstanceOptions{
		OutputOpts: output.NonTabularOutputOptions{},
	}
}

func NewInstanceCmd() *cobra.Command {
	o := NewInstanceOptions()
	instanceCmd := &cobra.Command{
		Use:   "instance",
		Short: "Describe the instance and the state of its store and bus.",
		Args:  cobra.NoArgs,
		RunE:  o.runInstance,
	}
	instanceCmd.Flags().AddFlagSet(cliflags.OutputNonTabularFormatFlags(&o.OutputOpts))
	return instanceCmd
}

func (o *InstanceOptions) runInstance(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	api, _, err := util.GetAPIClient(cmd)
	if err != nil {
		return err
	}
	info, err := api.Instance(ctx)
	if err != nil {
		return fmt.Errorf("could not get instance info: %w", err)
	}
	if o.OutputOpts.Format != "" {
		return output.OutputOneNonTabular(cmd, o.OutputOpts, info)
	}
	return output.KeyValue(cmd, []lo.Entry[string, any]{
		{Key: "Instance ID", Value: info.InstanceID},
		{Key: "Model", Value: info.Model},
		{Key: "Routing Prefix", Value: info.RoutingPrefix},
		{Key: "Store", Value: availability(info.StoreType, info.StoreAvailable)},
		{Key: "Bus", Value: availability(info.BusType, info.BusAvailable)},
		{Key: "Connections", Value: info.Connections},
	})
}

func availability(kind string, available bool) string {
	if available {
		return kind
	}
	return fmt.Sprintf("%s (%s)", kind, output.RedStr("unavailable"))
}
