package fanout

import (
	reservationRepo "classbook/internal/domains/reservation/repository"
	roomRepo "classbook/internal/domains/room/repository"
	scheduleRepo "classbook/internal/domains/schedule/repository"
)

// Hub carries the shared stream and snapshot sources; each connected client
// session gets its own Manager so identity teardown stays per-connection.
type Hub struct {
	stream  Stream
	sources map[string]SnapshotSource
}

func NewHub(stream Stream, reservations reservationRepo.Reservation, schedules scheduleRepo.Schedule, rooms roomRepo.Room) *Hub {
	return &Hub{
		stream:  stream,
		sources: Sources(reservations, schedules, rooms),
	}
}

func (h *Hub) NewSession() *Manager {
	return NewManager(h.stream, h.sources)
}

// Collections lists the subscribable collections.
func (h *Hub) Collections() []string {
	out := make([]string, 0, len(h.sources))
	for collection := range h.sources {
		out = append(out, collection)
	}

	return out
}
