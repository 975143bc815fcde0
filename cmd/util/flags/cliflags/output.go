package cliflags

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/dsx-project/dsx/cmd/util/flags"
	"github.com/dsx-project/dsx/cmd/util/output"
)

const outputFlagSet = "Output Format"

// OutputFormatFlags registers --output, --pretty and the table flags.
func OutputFormatFlags(format *output.OutputOptions) *pflag.FlagSet {
	flagset := pflag.NewFlagSet(outputFlagSet, pflag.ContinueOnError)
	addStructuredFlags(flagset, &format.Format, &format.Pretty, output.AllFormats)

	flagset.BoolVar(&format.HideHeader, "hide-header", format.HideHeader,
		`Do not print the column headers`)
	flagset.BoolVar(&format.NoStyle, "no-style", format.NoStyle,
		`Remove all styling from table output`)
	flagset.BoolVar(&format.Wide, "wide", format.Wide,
		`Print full values in the table results`)
	flagset.Var(flags.SortByFlag(&format.SortBy), "sort-by",
		`Comma separated columns to order table rows by, prefix a column with - to reverse it`)
	return flagset
}

// OutputNonTabularFormatFlags registers --output and --pretty for commands
// that print a single structure.
func OutputNonTabularFormatFlags(format *output.NonTabularOutputOptions) *pflag.FlagSet {
	flagset := pflag.NewFlagSet(outputFlagSet, pflag.ContinueOnError)
	addStructuredFlags(flagset, &format.Format, &format.Pretty, output.NonTabularFormats)
	return flagset
}

func addStructuredFlags(flagset *pflag.FlagSet, format *output.OutputFormat, pretty *bool, allowed []output.OutputFormat) {
	flagset.Var(flags.OutputFormatFlag(format), "output",
		fmt.Sprintf(`The output format for the command (one of %q)`, allowed))
	flagset.BoolVar(pretty, "pretty", *pretty,
		`Pretty print the output. Only applies to json and yaml output formats`)
}
