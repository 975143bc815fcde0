package models

// Op is the kind of mutation an intent requests.
type Op string

const (
	OpCreate    Op = "Create"
	OpUpdate    Op = "Update"
	OpDelete    Op = "Delete"
	OpDeleteAll Op = "DeleteAll"
)

// Origin identifies where an intent entered the instance.
type Origin string

const (
	OriginAPI        Origin = "Api"
	OriginLocalEvent Origin = "LocalEvent"
	OriginBusEvent   Origin = "BusEvent"
)

// Intent is a single requested mutation flowing through the sync engine.
type Intent struct {
	Op         Op
	Key        string
	Attributes Attributes
	Origin     Origin
	// ConnectionID is the local connection that sent the intent. Only set
	// when Origin is OriginLocalEvent.
	ConnectionID string
}

// Validate rejects intents that cannot be applied to the store.
func (i Intent) Validate() error {
	switch i.Op {
	case OpCreate, OpUpdate, OpDelete:
		if i.Key == "" {
			return NewErrMalformedIntent("%s intent is missing %q", i.Op, KeyField)
		}
	case OpDeleteAll:
	default:
		return NewErrMalformedIntent("unknown intent op %q", i.Op)
	}
	switch i.Origin {
	case OriginAPI, OriginBusEvent:
	case OriginLocalEvent:
		if i.ConnectionID == "" {
			return NewErrMalformedIntent("local event intent is missing its connection")
		}
	default:
		return NewErrMalformedIntent("unknown intent origin %q", i.Origin)
	}
	return nil
}

// Document returns the document carried by a create or update intent.
func (i Intent) Document() Document {
	return NewDocument(i.Key, i.Attributes)
}

// Change returns the change record announcing this intent once applied.
func (i Intent) Change(instanceID string) ChangeRecord {
	change := ChangeRecord{
		Key:    i.Key,
		Origin: instanceID,
	}
	switch i.Op {
	case OpCreate:
		change.Kind = ChangeCreated
		change.Attributes = i.Attributes.Copy().withoutKey()
	case OpUpdate:
		change.Kind = ChangeUpdated
		change.Attributes = i.Attributes.Copy().withoutKey()
	case OpDelete:
		change.Kind = ChangeDeleted
	case OpDeleteAll:
		change.Kind = ChangeAllDeleted
		change.Key = ""
	}
	return change
}
