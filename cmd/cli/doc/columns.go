package doc

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/dsx-project/dsx/cmd/util/output"
	"github.com/dsx-project/dsx/pkg/models"
)

const maxAttributesWidth = 80

var documentColumns = []output.TableColumn[models.Document]{
	{
		ColumnConfig: table.ColumnConfig{Name: "UUID"},
		Value:        func(d models.Document) string { return d.Key },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Connected", Align: text.AlignCenter},
		Value: func(d models.Document) string {
			connected, ok := d.Connected()
			if !ok {
				return "-"
			}
			return fmt.Sprint(connected)
		},
	},
	{
		ColumnConfig: table.ColumnConfig{
			Name:             "Attributes",
			WidthMax:         maxAttributesWidth,
			WidthMaxEnforcer: text.WrapSoft,
		},
		Value: func(d models.Document) string {
			attrs := d.Attributes.Copy()
			delete(attrs, models.ConnectedField)
			b, err := json.Marshal(attrs)
			if err != nil {
				return err.Error()
			}
			return string(b)
		},
	},
}
