package doc

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dsx-project/dsx/cmd/util"
	"github.com/dsx-project/dsx/cmd/util/flags/cliflags"
	"github.com/dsx-project/dsx/cmd/util/output"
)

// ListOptions is a struct to support list command
type ListOptions struct {
	OutputOpts output.OutputOptions
}

// NewListOptions returns initialized Options
func NewListOptions() *ListOptions {
	return &ListOptions{
		OutputOpts: output.OutputOptions{
			Format: output.TableFormat,
			SortBy: []table.SortBy{{Name: "UUID", Mode: table.Asc}},
		},
	}
}

func NewListCmd() *cobra.Command {
	o := NewListOptions()
	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every document.",
		Args:    cobra.NoArgs,
		RunE:    o.run,
	}
	listCmd.Flags().AddFlagSet(cliflags.OutputFormatFlags(&o.OutputOpts))
	return listCmd
}

func (o *ListOptions) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	api, _, err := util.GetAPIClient(cmd)
	if err != nil {
		return err
	}
	docs, err := api.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	return output.Output(cmd, documentColumns, o.OutputOpts, docs)
}
