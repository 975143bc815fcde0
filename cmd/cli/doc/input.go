package doc

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dsx-project/dsx/cmd/util"
	"github.com/dsx-project/dsx/pkg/models"
)

// documentInput is how write commands receive a document: a key and
// --set pairs, a JSON argument, or JSON piped on stdin.
type documentInput struct {
	Key        string
	Attributes map[string]interface{}
}

// read builds the document from the key and attributes, or from the JSON
// in args or stdin when no key was given. Attributes set by flag are
// applied over the JSON ones.
func (in *documentInput) read(cmd *cobra.Command, args []string) (models.Document, error) {
	fields := map[string]interface{}{}
	if in.Key == "" {
		var raw []byte
		if len(args) > 0 {
			raw = []byte(args[0])
		} else {
			var err error
			if raw, err = util.ReadFromStdinIfAvailable(cmd); err != nil {
				return models.Document{}, err
			}
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return models.Document{}, fmt.Errorf("document must be a JSON object: %w", err)
		}
	} else {
		fields[models.KeyField] = in.Key
	}
	for k, v := range in.Attributes {
		fields[k] = v
	}
	return models.DocumentFromFields(fields)
}
