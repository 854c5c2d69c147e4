package model

import (
	"time"

	"classbook/shared/model"
)

const (
	TableName  = "confirmed_schedules"
	EntityName = "schedule"

	FieldID            = "id"
	FieldRequestID     = "request_id"
	FieldRoomID        = "room_id"
	FieldRequesterID   = "requester_id"
	FieldRequesterName = "requester_name"
	FieldDate          = "date"
	FieldStartTime     = "start_time"
	FieldEndTime       = "end_time"
	FieldPurpose       = "purpose"
	FieldStatus        = "status"
	FieldCancelReason  = "cancel_reason"
)

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// ScheduleEntry is a room actually held for a time window. Created exactly
// once per approved reservation request and only ever flipped to cancelled.
type ScheduleEntry struct {
	ID            string    `db:"id"`
	RequestID     string    `db:"request_id"`
	RoomID        string    `db:"room_id"`
	RequesterID   string    `db:"requester_id"`
	RequesterName string    `db:"requester_name"`
	Date          time.Time `db:"date"`
	StartTime     time.Time `db:"start_time"`
	EndTime       time.Time `db:"end_time"`
	Purpose       string    `db:"purpose"`
	Status        string    `db:"status"`
	CancelReason  *string   `db:"cancel_reason"`
	model.Metadata
}
