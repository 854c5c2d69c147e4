// Package fanout distributes authoritative store changes to connected
// listeners as deduplicated, insertion-ordered snapshots.
package fanout

import (
	"time"

	"classbook/shared/timezone"
)

const (
	CollectionRequests  = "requests"
	CollectionSchedules = "schedules"
	CollectionRooms     = "rooms"
)

const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangeEvent is the unit published on a collection's change stream after a
// committed write. It carries identity only; subscribers re-read the
// snapshot, so a redelivered event is harmless.
type ChangeEvent struct {
	Collection string    `json:"collection"`
	RecordID   string    `json:"record_id"`
	Op         string    `json:"op"`
	At         time.Time `json:"at"`
}

func Created(collection, recordID string) ChangeEvent {
	return ChangeEvent{Collection: collection, RecordID: recordID, Op: OpCreate, At: timezone.Now()}
}

func Updated(collection, recordID string) ChangeEvent {
	return ChangeEvent{Collection: collection, RecordID: recordID, Op: OpUpdate, At: timezone.Now()}
}

func Deleted(collection, recordID string) ChangeEvent {
	return ChangeEvent{Collection: collection, RecordID: recordID, Op: OpDelete, At: timezone.Now()}
}

// Record is one snapshot element. OwnerID scopes delivery: faculty listeners
// only receive records they own, an empty owner means the record is public.
type Record struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id,omitempty"`
	Payload any    `json:"payload"`
}
