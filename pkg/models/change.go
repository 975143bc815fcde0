package models

import "fmt"

// ChangeKind is the kind of change announced to subscribers.
type ChangeKind string

const (
	ChangeCreated    ChangeKind = "created"
	ChangeUpdated    ChangeKind = "updated"
	ChangeDeleted    ChangeKind = "deleted"
	ChangeAllDeleted ChangeKind = "all-deleted"
)

// ChangeRecord is the logical change shared by local broadcast and the bus.
type ChangeRecord struct {
	Kind       ChangeKind `json:"Kind"`
	Key        string     `json:"Key,omitempty"`
	Attributes Attributes `json:"Attributes,omitempty"`
	// Origin is the ID of the instance where the change entered the system.
	Origin string `json:"Origin"`
}

// Document returns the document carried by a created or updated change.
func (c ChangeRecord) Document() Document {
	return NewDocument(c.Key, c.Attributes)
}

// Intent converts a change received from a peer instance into an intent.
func (c ChangeRecord) Intent() (Intent, error) {
	intent := Intent{
		Key:        c.Key,
		Attributes: c.Attributes,
		Origin:     OriginBusEvent,
	}
	switch c.Kind {
	case ChangeCreated:
		intent.Op = OpCreate
	case ChangeUpdated:
		intent.Op = OpUpdate
	case ChangeDeleted:
		intent.Op = OpDelete
	case ChangeAllDeleted:
		intent.Op = OpDeleteAll
	default:
		return Intent{}, NewErrMalformedIntent("unknown change kind %q", c.Kind)
	}
	return intent, nil
}

func (c ChangeRecord) String() string {
	if c.Key == "" {
		return fmt.Sprintf("%s from %s", c.Kind, c.Origin)
	}
	return fmt.Sprintf("%s %s from %s", c.Kind, c.Key, c.Origin)
}
