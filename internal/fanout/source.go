package fanout

import (
	"context"
	"fmt"

	reservationRepo "classbook/internal/domains/reservation/repository"
	roomModel "classbook/internal/domains/room/model"
	roomRepo "classbook/internal/domains/room/repository"
	scheduleRepo "classbook/internal/domains/schedule/repository"
	"classbook/shared/constant"
	gDto "classbook/shared/dto"
)

// SnapshotSource reads the current, insertion-ordered state of one collection.
type SnapshotSource interface {
	Snapshot(ctx context.Context) ([]Record, error)
}

func insertionOrder() gDto.QueryParams {
	return gDto.QueryParams{SortBy: constant.FieldCreatedAt, SortDir: gDto.SortDirAsc}
}

type requestSource struct {
	repo reservationRepo.Reservation
}

func NewRequestSource(repo reservationRepo.Reservation) SnapshotSource {
	return &requestSource{repo: repo}
}

func (s *requestSource) Snapshot(ctx context.Context) ([]Record, error) {
	models, err := s.repo.GetAll(ctx, insertionOrder(), gDto.FilterGroup{})
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot reservations: %w", err)
	}

	records := make([]Record, len(models))
	for i, mod := range models {
		records[i] = Record{ID: mod.ID, OwnerID: mod.RequesterID, Payload: mod}
	}

	return records, nil
}

type scheduleSource struct {
	repo scheduleRepo.Schedule
}

func NewScheduleSource(repo scheduleRepo.Schedule) SnapshotSource {
	return &scheduleSource{repo: repo}
}

func (s *scheduleSource) Snapshot(ctx context.Context) ([]Record, error) {
	models, err := s.repo.GetAll(ctx, insertionOrder(), gDto.FilterGroup{})
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot schedules: %w", err)
	}

	records := make([]Record, len(models))
	for i, mod := range models {
		records[i] = Record{ID: mod.ID, OwnerID: mod.RequesterID, Payload: mod}
	}

	return records, nil
}

type roomSource struct {
	repo roomRepo.Room
}

func NewRoomSource(repo roomRepo.Room) SnapshotSource {
	return &roomSource{repo: repo}
}

func (s *roomSource) Snapshot(ctx context.Context) ([]Record, error) {
	models, err := s.repo.GetAll(ctx, insertionOrder(), activeRooms())
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot rooms: %w", err)
	}

	records := make([]Record, len(models))
	for i, mod := range models {
		records[i] = Record{ID: mod.ID, Payload: mod}
	}

	return records, nil
}

func activeRooms() gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    roomModel.FieldActive,
				Operator: gDto.FilterOperatorEq,
				Value:    true,
				Table:    roomModel.TableName,
			},
		},
	}
}

// Sources wires the default snapshot source per collection.
func Sources(reservations reservationRepo.Reservation, schedules scheduleRepo.Schedule, rooms roomRepo.Room) map[string]SnapshotSource {
	return map[string]SnapshotSource{
		CollectionRequests:  NewRequestSource(reservations),
		CollectionSchedules: NewScheduleSource(schedules),
		CollectionRooms:     NewRoomSource(rooms),
	}
}
