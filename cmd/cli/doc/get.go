package doc

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dsx-project/dsx/cmd/util"
	"github.com/dsx-project/dsx/cmd/util/flags/cliflags"
	"github.com/dsx-project/dsx/cmd/util/output"
	"github.com/dsx-project/dsx/pkg/lib/backoff"
	"github.com/dsx-project/dsx/pkg/models"
	"github.com/dsx-project/dsx/pkg/publicapi/apimodels"
	"github.com/dsx-project/dsx/pkg/system"
)

const (
	defaultWaitTimeout = 30 * time.Second
	waitDelay          = 500 * time.Millisecond
)

// GetOptions is a struct to support get command
type GetOptions struct {
	Wait        bool
	WaitTimeout time.Duration
	OutputOpts  output.OutputOptions
}

// NewGetOptions returns initialized Options
func NewGetOptions() *GetOptions {
	return &GetOptions{
		WaitTimeout: defaultWaitTimeout,
		OutputOpts:  output.OutputOptions{Format: output.JSONFormat, Pretty: true},
	}
}

func NewGetCmd() *cobra.Command {
	o := NewGetOptions()
	getCmd := &cobra.Command{
		Use:   "get <uuid>",
		Short: "Print one document.",
		Args:  cobra.ExactArgs(1),
		RunE:  o.run,
	}
	getCmd.Flags().BoolVar(&o.Wait, "wait", o.Wait, "Wait for the document to exist.")
	getCmd.Flags().DurationVar(&o.WaitTimeout, "wait-timeout", o.WaitTimeout, "How long --wait waits.")
	getCmd.Flags().AddFlagSet(cliflags.OutputFormatFlags(&o.OutputOpts))
	return getCmd
}

func (o *GetOptions) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	api, _, err := util.GetAPIClient(cmd)
	if err != nil {
		return err
	}

	var doc models.Document
	read := func(ctx context.Context) (bool, error) {
		doc, err = api.Read(ctx, args[0])
		if err == nil {
			return true, nil
		}
		if o.Wait && apimodels.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	if !o.Wait {
		if _, err = read(ctx); err != nil {
			return fmt.Errorf("failed to get document %s: %w", args[0], err)
		}
	} else {
		waiter := &system.FunctionWaiter{
			Name:        "wait for document " + args[0],
			MaxAttempts: int(o.WaitTimeout/waitDelay) + 1,
			Backoff:     backoff.NewFixed(waitDelay),
			Handler:     read,
		}
		if err = waiter.Wait(ctx); err != nil {
			return fmt.Errorf("failed to get document %s: %w", args[0], err)
		}
	}
	return output.OutputOne(cmd, documentColumns, o.OutputOpts, doc)
}
