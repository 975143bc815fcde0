package models

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
)

const (
	// KeyField is the document field holding the resource key.
	KeyField = "uuid"
	// ConnectedField is the document field holding the presence flag.
	ConnectedField = "connected"
)

// Attributes is the open, schema-less payload of a document.
type Attributes map[string]interface{}

// Copy returns a shallow copy of the attributes.
func (a Attributes) Copy() Attributes {
	if a == nil {
		return Attributes{}
	}
	res := make(Attributes, len(a))
	for k, v := range a {
		res[k] = v
	}
	return res
}

// Set returns a copy of a with every field of other written over it,
// including fields whose value is null.
func (a Attributes) Set(other Attributes) Attributes {
	res := a.Copy()
	for k, v := range other {
		if k == KeyField {
			continue
		}
		res[k] = v
	}
	return res
}

// Merge returns a copy of a with the non-null fields of other written over it.
// Null fields in other are ignored rather than clearing the stored value.
func (a Attributes) Merge(other Attributes) Attributes {
	return a.Set(other.NonNull())
}

// NonNull returns the subset of attributes whose value is not null.
func (a Attributes) NonNull() Attributes {
	return lo.OmitBy(a, func(_ string, v interface{}) bool {
		return v == nil
	})
}

// HasUpdates reports whether an update with these attributes would write
// anything, that is whether a non-null field other than the key is present.
func (a Attributes) HasUpdates() bool {
	for k, v := range a {
		if k != KeyField && v != nil {
			return true
		}
	}
	return false
}

// Document is a single resource identified by its key.
type Document struct {
	Key        string
	Attributes Attributes
}

// NewDocument creates a document with the given key and attributes.
func NewDocument(key string, attributes Attributes) Document {
	return Document{
		Key:        key,
		Attributes: attributes.Copy().withoutKey(),
	}
}

// Connected returns the presence flag and whether it was set at all.
func (d Document) Connected() (connected bool, ok bool) {
	v, found := d.Attributes[ConnectedField]
	if !found || v == nil {
		return false, false
	}
	connected, ok = v.(bool)
	return connected, ok
}

// Fields returns the flattened representation of the document, with the key
// stored under KeyField.
func (d Document) Fields() map[string]interface{} {
	res := make(map[string]interface{}, len(d.Attributes)+1)
	for k, v := range d.Attributes {
		res[k] = v
	}
	res[KeyField] = d.Key
	return res
}

// DocumentFromFields builds a document from its flattened representation.
func DocumentFromFields(fields map[string]interface{}) (Document, error) {
	raw, ok := fields[KeyField]
	if !ok || raw == nil {
		return Document{}, NewErrMalformedIntent("document is missing %q", KeyField)
	}
	key, ok := raw.(string)
	if !ok {
		return Document{}, NewErrMalformedIntent("document %q must be a string, got %T", KeyField, raw)
	}
	return NewDocument(key, fields), nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Fields())
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("document must be a JSON object")
	}
	doc, err := DocumentFromFields(fields)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}

func (a Attributes) withoutKey() Attributes {
	delete(a, KeyField)
	return a
}
