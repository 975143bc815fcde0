package agent

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/dsx-project/dsx/cmd/util"
	"github.com/dsx-project/dsx/cmd/util/flags/cliflags"
	"github.com/dsx-project/dsx/cmd/util/output"
)

type VersionOptions struct {
	OutputOpts output.NonTabularOutputOptions
}

func NewVersionCmd() *cobra.Command {
	o := &VersionOptions{}
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Get the build of the instance",
		Args:  cobra.NoArgs,
		RunE:  o.run,
	}
	versionCmd.Flags().AddFlagSet(cliflags.OutputNonTabularFormatFlags(&o.OutputOpts))
	return versionCmd
}

func (o *VersionOptions) run(cmd *cobra.Command, _ []string) error {
	api, _, err := util.GetAPIClient(cmd)
	if err != nil {
		return err
	}
	response, err := api.Version(cmd.Context())
	if err != nil {
		return fmt.Errorf("could not get instance version: %w", err)
	}
	v := response.BuildVersionInfo
	if v == nil {
		return fmt.Errorf("instance at %s did not report a version", api.BaseURI)
	}

	if o.OutputOpts.Format != "" {
		return output.OutputOneNonTabular(cmd, o.OutputOpts, v)
	}
	return output.KeyValue(cmd, []lo.Entry[string, any]{
		{Key: "DSX", Value: v.GitVersion},
		{Key: "Commit", Value: v.GitCommit},
		{Key: "Built", Value: lo.Ternary(v.BuildDate.IsZero(), "", v.BuildDate.String())},
		{Key: "Platform", Value: v.GOOS + "/" + v.GOARCH},
	})
}
