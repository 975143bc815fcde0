package util

import (
	"errors"
	"math"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/go-wordwrap"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dsx-project/dsx/pkg/models"
	"github.com/dsx-project/dsx/pkg/publicapi/apimodels"
)

var red = color.New(color.FgRed)

const (
	errorPrefix = "Error: "
	hintPrefix  = "Hint:  "
)

// ErrorLeaf is one printable cause of an error.
type ErrorLeaf struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// Leaves flattens joined errors and extracts the code and hint carried by
// API and base errors.
func Leaves(err error) []ErrorLeaf {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var res []ErrorLeaf
		for _, e := range joined.Unwrap() {
			res = append(res, Leaves(e)...)
		}
		return res
	}
	leaf := ErrorLeaf{Message: err.Error()}
	var apiErr *apimodels.APIError
	var baseErr *models.BaseError
	switch {
	case errors.As(err, &apiErr):
		leaf.Code, leaf.Hint = apiErr.Code, apiErr.Hint
	case errors.As(err, &baseErr):
		leaf.Code, leaf.Hint = string(baseErr.Code()), baseErr.Hint()
	}
	return []ErrorLeaf{leaf}
}

// Print an error in a pretty format, with a prefix and subsequent error text
// wrapped to the size of the terminal and indented.
func PrintErr(cmd *cobra.Command, err error) {
	terminalWidth, _, termErr := term.GetSize(int(os.Stderr.Fd()))
	if termErr != nil || terminalWidth <= 0 {
		log.Ctx(cmd.Context()).Debug().Err(termErr).Msg("Failed to get terminal size")
		terminalWidth = math.MaxInt32
	}

	errorWidth := uint(terminalWidth) - uint(len(errorPrefix))
	for _, leaf := range Leaves(err) {
		printWrapped(cmd, errorPrefix, leaf.Message, errorWidth)
		if leaf.Hint != "" {
			printWrapped(cmd, hintPrefix, leaf.Hint, errorWidth)
		}
	}
}

func printWrapped(cmd *cobra.Command, prefix, text string, width uint) {
	red.Fprint(cmd.ErrOrStderr(), prefix)
	for i, line := range strings.Split(wordwrap.WrapString(text, width), "\n") {
		if i > 0 {
			cmd.PrintErr(strings.Repeat(" ", len(prefix)))
		}
		cmd.PrintErrln(line)
	}
}
