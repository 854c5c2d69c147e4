package offline

import (
	"context"
	"fmt"

	"classbook/shared/failure"
	"classbook/shared/timeslot"
	"classbook/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Queue accepts bookings while disconnected and holds them until the sync
// loop replays them against the server.
type Queue struct {
	store Store
}

func NewQueue(store Store) *Queue {
	return &Queue{store: store}
}

// Enqueue validates the booking against what is knowable locally and stores
// it. The check only sees other queued entries; bookings already on the
// server are invisible here, so passing it is no guarantee the sync will
// succeed. A local overlap parks the entry as a conflict instead of
// rejecting it outright, so the user can review and delete it.
func (q *Queue) Enqueue(ctx context.Context, roomID, date, start, end, purpose string) (Entry, error) {
	var entry Entry

	slot, err := timeslot.Parse(date, start, end)
	if err != nil {
		return entry, err
	}

	if timeslot.InPast(slot, timezone.Now()) {
		return entry, failure.BadRequestFromString("cannot book a time slot in the past")
	}

	if purpose == "" {
		return entry, failure.BadRequestFromString("purpose is required")
	}

	entry = Entry{
		ID:             uuid.NewString(),
		RoomID:         roomID,
		Date:           date,
		StartTime:      start,
		EndTime:        end,
		Purpose:        purpose,
		IdempotencyKey: uuid.NewString(),
		Status:         StatusPendingValidation,
		CreatedAt:      timezone.Now(),
	}

	if err := q.store.Insert(ctx, entry); err != nil {
		log.Error().Err(err).Msg("failed to enqueue booking")

		return entry, fmt.Errorf("failed to enqueue booking: %w", err)
	}

	return q.validate(ctx, entry, slot)
}

// validate promotes a pending-validation entry to pending-sync, or parks it
// as a conflict when it overlaps another live entry for the same room.
func (q *Queue) validate(ctx context.Context, entry Entry, slot timeslot.Slot) (Entry, error) {
	entries, err := q.store.List(ctx)
	if err != nil {
		return entry, err
	}

	for _, other := range entries {
		if other.ID == entry.ID || other.RoomID != entry.RoomID || other.Status == StatusConflict {
			continue
		}

		otherSlot, err := timeslot.Parse(other.Date, other.StartTime, other.EndTime)
		if err != nil {
			continue
		}

		if timeslot.OverlapsSlot(slot, otherSlot) {
			explanation := fmt.Sprintf("overlaps queued booking %s for room %s on %s %s-%s",
				other.ID, other.RoomID, other.Date, other.StartTime, other.EndTime)
			entry.Status = StatusConflict
			entry.LastError = &explanation

			if err := q.store.MarkFailure(ctx, entry); err != nil {
				return entry, err
			}

			return entry, failure.SyncConflict(explanation)
		}
	}

	entry.Status = StatusPendingSync
	if err := q.store.SetStatus(ctx, entry.ID, StatusPendingSync); err != nil {
		return entry, err
	}

	return entry, nil
}

// List returns every queued entry, oldest first.
func (q *Queue) List(ctx context.Context) ([]Entry, error) {
	return q.store.List(ctx)
}

// Remove drops an entry regardless of status. Used to discard conflicts and
// permanently failed entries after review.
func (q *Queue) Remove(ctx context.Context, id string) error {
	return q.store.Delete(ctx, id)
}
