package service

//go:generate go run go.uber.org/mock/mockgen -source=./detector.go -destination=../mocks/detector_mock.go -package=mocks

import (
	"context"
	"fmt"

	"classbook/infras/otel"
	"classbook/internal/domains/reservation/model"
	"classbook/internal/domains/reservation/repository"
	scheduleModel "classbook/internal/domains/schedule/model"
	scheduleRepo "classbook/internal/domains/schedule/repository"
	"classbook/shared/constant"
	gDto "classbook/shared/dto"
	"classbook/shared/timeslot"
)

// Detector decides whether a candidate slot overlaps any live booking for
// the same room and day. It reads current store state and has no side
// effects; because the store is shared and concurrently written, the answer
// is advisory at submission time and must be re-run inside Approve.
type Detector interface {
	HasConflict(ctx context.Context, roomID string, slot timeslot.Slot, excludeRequestID string) (bool, error)
}

type detectorImpl struct {
	requests  repository.Reservation
	schedules scheduleRepo.Schedule
	otel      otel.Otel
}

func NewDetector(requests repository.Reservation, schedules scheduleRepo.Schedule, otel otel.Otel) Detector {
	return &detectorImpl{
		requests:  requests,
		schedules: schedules,
		otel:      otel,
	}
}

func (d *detectorImpl) HasConflict(ctx context.Context, roomID string, slot timeslot.Slot, excludeRequestID string) (conflict bool, err error) {
	ctx, scope := d.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".HasConflict")
	defer scope.End()
	defer scope.TraceIfError(err)

	requests, err := d.requests.GetAll(ctx, gDto.QueryParams{}, slotFilter(
		model.TableName, model.FieldRoomID, model.FieldDate, model.FieldStatus,
		roomID, slot, []string{model.StatusPending, model.StatusApproved},
	))
	if err != nil {
		return false, fmt.Errorf("failed to load reservations for conflict check: %w", err)
	}

	for _, req := range requests {
		if req.ID == excludeRequestID {
			continue
		}

		if timeslot.Overlaps(slot.Start, slot.End, req.StartTime, req.EndTime) {
			return true, nil
		}
	}

	entries, err := d.schedules.GetAll(ctx, gDto.QueryParams{}, slotFilter(
		scheduleModel.TableName, scheduleModel.FieldRoomID, scheduleModel.FieldDate, scheduleModel.FieldStatus,
		roomID, slot, []string{scheduleModel.StatusConfirmed},
	))
	if err != nil {
		return false, fmt.Errorf("failed to load schedules for conflict check: %w", err)
	}

	for _, entry := range entries {
		if entry.RequestID == excludeRequestID {
			continue
		}

		if timeslot.Overlaps(slot.Start, slot.End, entry.StartTime, entry.EndTime) {
			return true, nil
		}
	}

	return false, nil
}

func slotFilter(table, roomField, dateField, statusField, roomID string, slot timeslot.Slot, statuses []string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: roomField, Operator: gDto.FilterOperatorEq, Value: roomID, Table: table},
			gDto.Filter{Field: dateField, Operator: gDto.FilterOperatorEq, Value: slot.Date, Table: table},
			gDto.Filter{Field: statusField, Operator: gDto.FilterOperatorIn, Value: statuses, Table: table},
		},
	}
}
