package models

import "fmt"

// EventNames holds the realtime event names for one resource model.
type EventNames struct {
	// inbound
	ConnectRequest string
	Create         string
	Update         string
	Delete         string

	// outbound
	InstanceID       string
	ConnectConfirmed string
	Created          string
	Updated          string
	Deleted          string
	AllDeleted       string
	Error            string
}

// NewEventNames derives the event names for the given model, e.g. "user"
// yields u_user_create_i inbound and d_user_create_i outbound.
func NewEventNames(model string) EventNames {
	up := func(action string) string { return fmt.Sprintf("u_%s_%s", model, action) }
	down := func(action string) string { return fmt.Sprintf("d_%s_%s", model, action) }
	return EventNames{
		ConnectRequest:   up("connect_rq"),
		Create:           up("create_i"),
		Update:           up("update_i"),
		Delete:           up("delete_i"),
		InstanceID:       "d_server_id_i",
		ConnectConfirmed: down("connect_cf"),
		Created:          down("create_i"),
		Updated:          down("update_i"),
		Deleted:          down("delete_i"),
		AllDeleted:       down("delete_all_i"),
		Error:            down("error_i"),
	}
}

// ForChange returns the outbound event name announcing a change.
func (n EventNames) ForChange(kind ChangeKind) string {
	switch kind {
	case ChangeCreated:
		return n.Created
	case ChangeUpdated:
		return n.Updated
	case ChangeDeleted:
		return n.Deleted
	case ChangeAllDeleted:
		return n.AllDeleted
	default:
		return ""
	}
}
