package util

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// ReadFromStdinIfAvailable returns what was piped into the command, or an
// error when stdin is a terminal.
func ReadFromStdinIfAvailable(cmd *cobra.Command) ([]byte, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		info, err := f.Stat()
		if err != nil {
			return nil, err
		}
		if info.Mode()&os.ModeCharDevice != 0 {
			return nil, fmt.Errorf("no input given and nothing piped to %s", cmd.CommandPath())
		}
	}
	return io.ReadAll(in)
}
