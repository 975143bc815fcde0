package output

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

type OutputFormat string

const (
	TableFormat OutputFormat = "table"
	CSVFormat   OutputFormat = "csv"
	JSONFormat  OutputFormat = "json"
	YAMLFormat  OutputFormat = "yaml"
)

var red = color.New(color.FgRed).SprintFunc()

var AllFormats = append([]OutputFormat{TableFormat, CSVFormat}, NonTabularFormats...)
var NonTabularFormats = []OutputFormat{JSONFormat, YAMLFormat}

var noStyle = table.Style{
	Name:   "StyleDefault",
	Box:    table.StyleBoxDefault,
	Color:  table.ColorOptionsDefault,
	Format: table.FormatOptionsDefault,
	HTML:   table.DefaultHTMLOptions,
	Options: table.Options{
		DrawBorder:      false,
		SeparateColumns: false,
		SeparateFooter:  false,
		SeparateHeader:  false,
		SeparateRows:    false,
	},
	Title: table.TitleOptionsDefault,
}

type OutputOptions struct {
	Format     OutputFormat // The output format for the list of documents
	Pretty     bool         // Pretty print the output
	HideHeader bool         // Hide the column headers
	NoStyle    bool         // Remove all styling from table output.
	Wide       bool         // Print full values in the table results
	SortBy     []table.SortBy
}

func (o OutputOptions) nonTabular() NonTabularOutputOptions {
	return NonTabularOutputOptions{Format: o.Format, Pretty: o.Pretty}
}

type NonTabularOutputOptions struct {
	Format OutputFormat // The output format for the list of documents
	Pretty bool         // Pretty print the output
}

// TableColumn renders one field of T as a table cell.
type TableColumn[T any] struct {
	table.ColumnConfig
	Value func(T) string
}

// Output prints items as a table, csv, json or yaml.
func Output[T any](cmd *cobra.Command, columns []TableColumn[T], options OutputOptions, items []T) error {
	if options.Format == TableFormat || options.Format == CSVFormat {
		return renderTable(cmd, columns, options, items)
	}
	return encode(cmd, options.nonTabular(), items)
}

// OutputOne is Output for a single item. Structured formats print the item
// itself rather than a list holding it.
func OutputOne[T any](cmd *cobra.Command, columns []TableColumn[T], options OutputOptions, item T) error {
	if options.Format == TableFormat || options.Format == CSVFormat {
		return renderTable(cmd, columns, options, []T{item})
	}
	return encode(cmd, options.nonTabular(), item)
}

func OutputOneNonTabular[T any](cmd *cobra.Command, options NonTabularOutputOptions, item T) error {
	return encode(cmd, options, item)
}

// KeyValue prints pairs with the keys aligned, skipping empty values.
//
//	Instance ID = a1b2c3
//	Connections = 3
func KeyValue(cmd *cobra.Command, data []lo.Entry[string, any]) error {
	width := lo.Max(lo.Map(data, func(e lo.Entry[string, any], _ int) int { return len(e.Key) }))
	for _, pair := range data {
		if fmt.Sprint(pair.Value) == "" {
			continue
		}
		cmd.Printf("%-*s = %v\n", width, pair.Key, pair.Value)
	}
	return nil
}

// RedStr returns the given string in red
func RedStr(s string) string {
	return red(s)
}

func encode(cmd *cobra.Command, options NonTabularOutputOptions, v any) error {
	switch options.Format {
	case JSONFormat:
		encoder := json.NewEncoder(cmd.OutOrStdout())
		if options.Pretty {
			encoder.SetIndent("", "  ")
		}
		return encoder.Encode(v)
	case YAMLFormat:
		b, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	default:
		return fmt.Errorf("invalid format %q", options.Format)
	}
}

func renderTable[T any](cmd *cobra.Command, columns []TableColumn[T], options OutputOptions, items []T) error {
	for _, sortBy := range options.SortBy {
		if !lo.ContainsBy(columns, func(c TableColumn[T]) bool { return c.Name == sortBy.Name }) {
			return fmt.Errorf("cannot sort by %q, expected one of %q", sortBy.Name,
				lo.Map(columns, func(c TableColumn[T], _ int) string { return c.Name }))
		}
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.SortBy(options.SortBy)
	tw.SetColumnConfigs(lo.Map(columns, func(c TableColumn[T], i int) table.ColumnConfig {
		config := c.ColumnConfig
		config.Number = i + 1
		if options.Wide {
			config.WidthMax = 0
			config.WidthMaxEnforcer = nil
		}
		return config
	}))
	if !options.HideHeader {
		tw.AppendHeader(lo.Map(columns, func(c TableColumn[T], _ int) any { return c.Name }))
	}
	tw.SetStyle(table.StyleColoredGreenWhiteOnBlack)
	if options.NoStyle {
		tw.SetStyle(noStyle)
	}
	for _, item := range items {
		tw.AppendRow(lo.Map(columns, func(c TableColumn[T], _ int) any { return c.Value(item) }))
	}

	if options.Format == CSVFormat {
		tw.RenderCSV()
	} else {
		tw.Render()
	}
	return nil
}
