package doc

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dsx-project/dsx/cmd/util"
)

func NewDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <uuid>...",
		Aliases: []string{"rm"},
		Short:   "Delete documents. Deleting a document that does not exist is not an error.",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _, err := util.GetAPIClient(cmd)
			if err != nil {
				return err
			}
			for _, key := range args {
				if err := api.Delete(cmd.Context(), key); err != nil {
					return fmt.Errorf("failed to delete document %s: %w", key, err)
				}
				cmd.Println(key)
			}
			return nil
		},
	}
}

// DeleteAllOptions is a struct to support delete-all command
type DeleteAllOptions struct {
	Force bool
}

func NewDeleteAllCmd() *cobra.Command {
	o := &DeleteAllOptions{}
	deleteAllCmd := &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every document.",
		Args:  cobra.NoArgs,
		RunE:  o.run,
	}
	deleteAllCmd.Flags().BoolVarP(&o.Force, "force", "f", o.Force, "Confirm deleting every document.")
	return deleteAllCmd
}

func (o *DeleteAllOptions) run(cmd *cobra.Command, _ []string) error {
	if !o.Force {
		return fmt.Errorf("refusing to delete every document without --force")
	}
	api, cfg, err := util.GetAPIClient(cmd)
	if err != nil {
		return err
	}
	if err := api.DeleteAll(cmd.Context()); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	cmd.Printf("deleted every %s\n", cfg.Resource.Model)
	return nil
}
