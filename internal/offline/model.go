package offline

import "time"

const TableName = "queued_bookings"

const (
	// StatusPendingValidation marks an entry accepted but not yet checked
	// against the rest of the local queue.
	StatusPendingValidation = "pending-validation"
	// StatusPendingSync marks an entry ready to replay against the server.
	StatusPendingSync = "pending-sync"
	// StatusSyncing marks an entry currently in flight.
	StatusSyncing = "syncing"
	// StatusFailed marks a transient failure awaiting its next retry window.
	StatusFailed = "failed"
	// StatusConflict marks an entry the server (or the local check) rejected
	// as overlapping. Kept for the user to inspect, never retried.
	StatusConflict = "conflict"
)

// Entry is a booking captured while disconnected. Date and clock fields stay
// in their wire form so the replayed submission is byte-for-byte what the
// user typed.
type Entry struct {
	ID             string     `db:"id"              json:"id"`
	RoomID         string     `db:"room_id"         json:"room_id"`
	Date           string     `db:"date"            json:"date"`
	StartTime      string     `db:"start_time"      json:"start_time"`
	EndTime        string     `db:"end_time"        json:"end_time"`
	Purpose        string     `db:"purpose"         json:"purpose"`
	IdempotencyKey string     `db:"idempotency_key" json:"idempotency_key"`
	Status         string     `db:"status"          json:"status"`
	Attempts       int        `db:"attempts"        json:"attempts"`
	LastError      *string    `db:"last_error"      json:"last_error,omitempty"`
	NextRetryAt    *time.Time `db:"next_retry_at"   json:"next_retry_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at"      json:"created_at"`
}

// Retryable reports whether the sync loop should pick the entry up again.
func (e Entry) Retryable(maxAttempts int) bool {
	switch e.Status {
	case StatusPendingValidation, StatusPendingSync:
		return true
	case StatusFailed:
		return e.Attempts < maxAttempts
	default:
		return false
	}
}
