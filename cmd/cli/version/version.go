package version

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dsx-project/dsx/cmd/util"
	"github.com/dsx-project/dsx/cmd/util/flags/cliflags"
	"github.com/dsx-project/dsx/cmd/util/hook"
	"github.com/dsx-project/dsx/cmd/util/output"
	"github.com/dsx-project/dsx/pkg/version"
)

type VersionOptions struct {
	Server     bool
	OutputOpts output.OutputOptions
}

func NewVersionOptions() *VersionOptions {
	return &VersionOptions{
		OutputOpts: output.OutputOptions{Format: output.TableFormat},
	}
}

func NewCmd() *cobra.Command {
	oV := NewVersionOptions()

	versionCmd := &cobra.Command{
		Use:    "version",
		Short:  "Get the client and optionally the server version",
		Args:   cobra.NoArgs,
		PreRun: hook.ApplyPorcelainLogLevel,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := oV.Run(cmd.Context(), cmd); err != nil {
				return fmt.Errorf("error running version: %w", err)
			}
			return nil
		},
	}
	fset := pflag.NewFlagSet("version", pflag.ContinueOnError)
	fset.BoolVar(&oV.Server, "server", oV.Server,
		"If true, also queries the instance for its version and checks that it matches the client.")
	versionCmd.Flags().AddFlagSet(fset)
	versionCmd.Flags().AddFlagSet(cliflags.OutputFormatFlags(&oV.OutputOpts))

	return versionCmd
}

var clientVersionColumn = output.TableColumn[util.Versions]{
	ColumnConfig: table.ColumnConfig{Name: "client"},
	Value:        func(v util.Versions) string { return v.ClientVersion.GitVersion },
}

var serverVersionColumn = output.TableColumn[util.Versions]{
	ColumnConfig: table.ColumnConfig{Name: "server"},
	Value:        func(v util.Versions) string { return v.ServerVersion.GitVersion },
}

func (oV *VersionOptions) Run(ctx context.Context, cmd *cobra.Command) error {
	versions := util.Versions{ClientVersion: version.Get()}
	columns := []output.TableColumn[util.Versions]{clientVersionColumn}

	if oV.Server {
		api, _, err := util.GetAPIClient(cmd)
		if err != nil {
			return err
		}
		versions, err = util.GetAllVersions(ctx, api)
		if err != nil {
			// print as much as we can
			cmd.PrintErrln("failed to get server version: ", err)
		}
		if versions.ServerVersion != nil {
			columns = append(columns, serverVersionColumn)
			if err := util.EnsureValidVersion(ctx, versions.ClientVersion, versions.ServerVersion); err != nil {
				cmd.PrintErrln(err)
			}
		}
	}

	return output.OutputOne(cmd, columns, oV.OutputOpts, versions)
}
