package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/dsx-project/dsx/pkg/models"
)

// Frame is the unit exchanged over a websocket, one JSON object per
// message.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewFrame encodes data as the payload of event. A nil data yields a frame
// without payload.
func NewFrame(event string, data interface{}) (Frame, error) {
	frame := Frame{Event: event}
	if data == nil {
		return frame, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to encode %s payload: %w", event, err)
	}
	frame.Data = raw
	return frame, nil
}

// ChangeFrame encodes a change the way subscribers receive it: the full
// document for created and updated, the key for deleted, nothing for
// all-deleted.
func ChangeFrame(events models.EventNames, change models.ChangeRecord) (Frame, error) {
	event := events.ForChange(change.Kind)
	if event == "" {
		return Frame{}, fmt.Errorf("no event for change kind %q", change.Kind)
	}
	switch change.Kind {
	case models.ChangeCreated, models.ChangeUpdated:
		return NewFrame(event, change.Document())
	case models.ChangeDeleted:
		return NewFrame(event, change.Key)
	default:
		return NewFrame(event, nil)
	}
}

// DecodeDocument reads a document payload. Clients may send the document
// either as a JSON object or as a string holding one.
func DecodeDocument(data json.RawMessage) (models.Document, error) {
	raw, err := unquote(data)
	if err != nil {
		return models.Document{}, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return models.Document{}, models.NewErrMalformedIntent("payload must be a JSON object")
	}
	return models.DocumentFromFields(fields)
}

// DecodeKey reads a key payload: a bare string, or an object carrying the
// key field.
func DecodeKey(data json.RawMessage) (string, error) {
	var key string
	if err := json.Unmarshal(data, &key); err == nil {
		if key != "" && key[0] == '{' {
			doc, err := DecodeDocument(data)
			return doc.Key, err
		}
		if key == "" {
			return "", models.NewErrMalformedIntent("payload is missing %q", models.KeyField)
		}
		return key, nil
	}
	doc, err := DecodeDocument(data)
	if err != nil {
		return "", err
	}
	return doc.Key, nil
}

func unquote(data json.RawMessage) ([]byte, error) {
	if len(data) == 0 {
		return nil, models.NewErrMalformedIntent("payload is missing")
	}
	if data[0] != '"' {
		return data, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, models.NewErrMalformedIntent("payload is not valid JSON")
	}
	return []byte(s), nil
}
