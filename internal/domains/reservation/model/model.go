package model

import (
	"time"

	"classbook/shared/model"
)

const (
	TableName  = "reservation_requests"
	EntityName = "reservation"

	FieldID             = "id"
	FieldRequesterID    = "requester_id"
	FieldRequesterName  = "requester_name"
	FieldRoomID         = "room_id"
	FieldDate           = "date"
	FieldStartTime      = "start_time"
	FieldEndTime        = "end_time"
	FieldPurpose        = "purpose"
	FieldStatus         = "status"
	FieldSubmittedAt    = "submitted_at"
	FieldFeedback       = "feedback"
	FieldDecidedBy      = "decided_by"
	FieldIdempotencyKey = "idempotency_key"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

// ReservationRequest tracks one booking intent through its approval lifecycle.
type ReservationRequest struct {
	ID             string    `db:"id"`
	RequesterID    string    `db:"requester_id"`
	RequesterName  string    `db:"requester_name"`
	RoomID         string    `db:"room_id"`
	Date           time.Time `db:"date"`
	StartTime      time.Time `db:"start_time"`
	EndTime        time.Time `db:"end_time"`
	Purpose        string    `db:"purpose"`
	Status         string    `db:"status"`
	SubmittedAt    time.Time `db:"submitted_at"`
	Feedback       *string   `db:"feedback"`
	DecidedBy      *string   `db:"decided_by"`
	IdempotencyKey *string   `db:"idempotency_key"`
	model.Metadata
}

// transitions holds the only legal status changes. Everything else is an
// invalid transition, never a silent no-op.
var transitions = map[string][]string{
	StatusPending:  {StatusApproved, StatusRejected, StatusExpired},
	StatusApproved: {StatusCancelled},
}

// CanTransition reports whether from -> to is a legal lifecycle step.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// IsTerminal reports whether no further decision may be taken on the status.
// Approved is terminal for decisions but still cancellable.
func IsTerminal(status string) bool {
	return status == StatusRejected || status == StatusCancelled || status == StatusExpired
}
