package doc

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dsx-project/dsx/cmd/util"
	"github.com/dsx-project/dsx/cmd/util/flags"
	"github.com/dsx-project/dsx/cmd/util/flags/cliflags"
	"github.com/dsx-project/dsx/cmd/util/output"
)

const createExample = `  # Create a document from flags
  dsx doc create --uuid k1 --set name=ada --set age=36

  # Create a document from JSON
  dsx doc create '{"uuid": "k1", "name": "ada"}'
  echo '{"uuid": "k1", "name": "ada"}' | dsx doc create`

// CreateOptions is a struct to support create command
type CreateOptions struct {
	Input      documentInput
	OutputOpts output.OutputOptions
}

// NewCreateOptions returns initialized Options
func NewCreateOptions() *CreateOptions {
	return &CreateOptions{
		OutputOpts: output.OutputOptions{Format: output.TableFormat},
	}
}

func NewCreateCmd() *cobra.Command {
	o := NewCreateOptions()
	createCmd := &cobra.Command{
		Use:     "create [json]",
		Short:   "Create or overwrite a document. Every connected client is notified.",
		Example: createExample,
		Args:    cobra.MaximumNArgs(1),
		RunE:    o.run,
	}
	createCmd.Flags().StringVar(&o.Input.Key, "uuid", "", "The document key.")
	createCmd.Flags().Var(flags.AttributesFlag(&o.Input.Attributes), "set",
		"An attribute as key=value, repeatable. JSON values such as 36 or true keep their type.")
	createCmd.Flags().AddFlagSet(cliflags.OutputFormatFlags(&o.OutputOpts))
	return createCmd
}

func (o *CreateOptions) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	doc, err := o.Input.read(cmd, args)
	if err != nil {
		return err
	}
	api, _, err := util.GetAPIClient(cmd)
	if err != nil {
		return err
	}
	created, err := api.Create(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create document %s: %w", doc.Key, err)
	}
	return output.OutputOne(cmd, documentColumns, o.OutputOpts, created)
}
