package offline_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classbook/infras/sqlite"
	"classbook/internal/offline"
	"classbook/shared/failure"
	"classbook/shared/timeslot"
	"classbook/shared/timezone"
)

func newQueue(t *testing.T) *offline.Queue {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	store, err := offline.NewStore(db)
	require.NoError(t, err)

	return offline.NewQueue(store)
}

func futureDate(t *testing.T) string {
	t.Helper()

	return timeslot.FormatDate(timezone.Now().Add(48 * time.Hour))
}

func TestQueue_Enqueue(t *testing.T) {
	ctx := context.Background()
	queue := newQueue(t)
	date := futureDate(t)

	entry, err := queue.Enqueue(ctx, "room-1", date, "09:00", "10:00", "lecture")
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.NotEmpty(t, entry.IdempotencyKey)
	assert.Equal(t, offline.StatusPendingSync, entry.Status)

	entries, err := queue.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, offline.StatusPendingSync, entries[0].Status)
}

func TestQueue_Enqueue_Validation(t *testing.T) {
	ctx := context.Background()
	queue := newQueue(t)
	date := futureDate(t)

	tests := []struct {
		name    string
		date    string
		start   string
		end     string
		purpose string
	}{
		{
			name:    "bad date",
			date:    "not-a-date",
			start:   "09:00",
			end:     "10:00",
			purpose: "lecture",
		},
		{
			name:    "end before start",
			date:    date,
			start:   "10:00",
			end:     "09:00",
			purpose: "lecture",
		},
		{
			name:    "slot in the past",
			date:    timeslot.FormatDate(timezone.Now().Add(-48 * time.Hour)),
			start:   "09:00",
			end:     "10:00",
			purpose: "lecture",
		},
		{
			name:    "missing purpose",
			date:    date,
			start:   "09:00",
			end:     "10:00",
			purpose: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := queue.Enqueue(ctx, "room-1", tt.date, tt.start, tt.end, tt.purpose)
			assert.Error(t, err)
			assert.True(t, failure.IsKind(err, failure.KindValidation))
		})
	}

	// Rejected bookings never reach the store.
	entries, err := queue.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestQueue_Enqueue_LocalOverlapIsParked(t *testing.T) {
	ctx := context.Background()
	queue := newQueue(t)
	date := futureDate(t)

	_, err := queue.Enqueue(ctx, "room-1", date, "09:00", "10:00", "lecture")
	require.NoError(t, err)

	parked, err := queue.Enqueue(ctx, "room-1", date, "09:30", "10:30", "seminar")

	// The overlap is reported but the entry stays queued for review.
	assert.Error(t, err)
	assert.True(t, failure.IsKind(err, failure.KindSyncConflict))
	assert.Equal(t, offline.StatusConflict, parked.Status)
	require.NotNil(t, parked.LastError)
	assert.Contains(t, *parked.LastError, "overlaps queued booking")

	entries, err := queue.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestQueue_Enqueue_NoFalseConflicts(t *testing.T) {
	ctx := context.Background()
	queue := newQueue(t)
	date := futureDate(t)

	_, err := queue.Enqueue(ctx, "room-1", date, "09:00", "10:00", "lecture")
	require.NoError(t, err)

	// Back-to-back in the same room.
	_, err = queue.Enqueue(ctx, "room-1", date, "10:00", "11:00", "lecture")
	assert.NoError(t, err)

	// Same window, different room.
	_, err = queue.Enqueue(ctx, "room-2", date, "09:00", "10:00", "lecture")
	assert.NoError(t, err)

	entries, err := queue.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestQueue_Remove(t *testing.T) {
	ctx := context.Background()
	queue := newQueue(t)

	entry, err := queue.Enqueue(ctx, "room-1", futureDate(t), "09:00", "10:00", "lecture")
	require.NoError(t, err)

	require.NoError(t, queue.Remove(ctx, entry.ID))

	entries, err := queue.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
