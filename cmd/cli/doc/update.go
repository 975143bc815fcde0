package doc

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dsx-project/dsx/cmd/util"
	"github.com/dsx-project/dsx/cmd/util/flags"
	"github.com/dsx-project/dsx/cmd/util/flags/cliflags"
	"github.com/dsx-project/dsx/cmd/util/output"
)

const updateExample = `  # Mark a document as offline, leaving its other attributes untouched
  dsx doc update --uuid k1 --set connected=false`

// UpdateOptions is a struct to support update command
type UpdateOptions struct {
	Input      documentInput
	OutputOpts output.OutputOptions
}

// NewUpdateOptions returns initialized Options
func NewUpdateOptions() *UpdateOptions {
	return &UpdateOptions{
		OutputOpts: output.OutputOptions{Format: output.TableFormat},
	}
}

func NewUpdateCmd() *cobra.Command {
	o := NewUpdateOptions()
	updateCmd := &cobra.Command{
		Use:   "update [json]",
		Short: "Merge attributes into an existing document. Null attributes are ignored.",
		Long: `Merge attributes into an existing document. Null attributes are ignored and
updating a document that does not exist changes nothing.`,
		Example: updateExample,
		Args:    cobra.MaximumNArgs(1),
		RunE:    o.run,
	}
	updateCmd.Flags().StringVar(&o.Input.Key, "uuid", "", "The document key.")
	updateCmd.Flags().Var(flags.AttributesFlag(&o.Input.Attributes), "set",
		"An attribute as key=value, repeatable. JSON values such as 36 or true keep their type.")
	updateCmd.Flags().AddFlagSet(cliflags.OutputFormatFlags(&o.OutputOpts))
	return updateCmd
}

func (o *UpdateOptions) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	doc, err := o.Input.read(cmd, args)
	if err != nil {
		return err
	}
	api, _, err := util.GetAPIClient(cmd)
	if err != nil {
		return err
	}
	updated, err := api.Update(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to update document %s: %w", doc.Key, err)
	}
	if updated == nil {
		cmd.PrintErrf("document %s does not exist, nothing was updated\n", doc.Key)
		return nil
	}
	return output.OutputOne(cmd, documentColumns, o.OutputOpts, *updated)
}
