package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"classbook/config"
	"classbook/infras/otel/mocks"
	reservationMocks "classbook/internal/domains/reservation/mocks"
	"classbook/internal/domains/reservation/model"
	"classbook/internal/domains/reservation/model/dto"
	"classbook/internal/domains/reservation/service"
	roomMocks "classbook/internal/domains/room/mocks"
	scheduleMocks "classbook/internal/domains/schedule/mocks"
	scheduleModel "classbook/internal/domains/schedule/model"
	fanoutMocks "classbook/internal/fanout/mocks"
	notifyMocks "classbook/internal/notify/mocks"
	cacheMocks "classbook/shared/cache/mocks"
	"classbook/shared/constant"
	"classbook/shared/failure"
	gModel "classbook/shared/model"
	"classbook/shared/timeslot"
	"classbook/shared/timezone"
)

type serviceMocks struct {
	repo      *reservationMocks.MockReservation
	schedules *scheduleMocks.MockSchedule
	rooms     *roomMocks.MockRoom
	detector  *reservationMocks.MockDetector
	notifier  *notifyMocks.MockNotifier
	publisher *fanoutMocks.MockPublisher
	cache     *cacheMocks.MockRedisCache
}

func newService(ctrl *gomock.Controller) (service.Reservation, serviceMocks) {
	m := serviceMocks{
		repo:      reservationMocks.NewMockReservation(ctrl),
		schedules: scheduleMocks.NewMockSchedule(ctrl),
		rooms:     roomMocks.NewMockRoom(ctrl),
		detector:  reservationMocks.NewMockDetector(ctrl),
		notifier:  notifyMocks.NewMockNotifier(ctrl),
		publisher: fanoutMocks.NewMockPublisher(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
	}

	// Post-commit side effects run on fire-and-forget goroutines; the tests
	// assert the synchronous store interactions, not the async fan-out.
	m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(m.repo, m.schedules, m.rooms, m.detector, m.notifier, m.publisher, cfg, m.cache, mocks.NewOtel())

	return svc, m
}

func testContext() context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "user-1")
	return context.WithValue(ctx, constant.ContextKeyUserEmail, "user@example.com")
}

// futureSlot returns a slot two days out so it never races the clock.
func futureSlot(t *testing.T) (string, timeslot.Slot) {
	t.Helper()

	date := timeslot.FormatDate(timezone.Now().Add(48 * time.Hour))

	slot, err := timeslot.Parse(date, "09:00", "10:00")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	return date, slot
}

func pendingBooking(id string, slot timeslot.Slot) model.ReservationRequest {
	now := timezone.Now()

	return model.ReservationRequest{
		ID:            id,
		RequesterID:   "user-1",
		RequesterName: "user@example.com",
		RoomID:        "room-1",
		Date:          slot.Date,
		StartTime:     slot.Start,
		EndTime:       slot.End,
		Purpose:       "lecture",
		Status:        model.StatusPending,
		SubmittedAt:   now,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  "user-1",
			ModifiedBy: "user-1",
		},
	}
}

func TestReservationService_Submit(t *testing.T) {
	futureDate, slot := futureSlot(t)
	existing := pendingBooking("existing-id", slot)

	tests := []struct {
		name      string
		req       dto.SubmitReservationRequest
		setupMock func(m serviceMocks)
		wantErr   bool
		wantKind  failure.Kind
		wantID    string
	}{
		{
			name: "successful submission",
			req: dto.SubmitReservationRequest{
				RoomID:    "room-1",
				Date:      futureDate,
				StartTime: "09:00",
				EndTime:   "10:00",
				Purpose:   "lecture",
			},
			setupMock: func(m serviceMocks) {
				m.rooms.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				m.detector.EXPECT().
					HasConflict(gomock.Any(), "room-1", gomock.Any(), "").
					Return(false, nil)

				m.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(nil)

				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(existing, nil)
			},
			wantID: "existing-id",
		},
		{
			name: "slot in the past",
			req: dto.SubmitReservationRequest{
				RoomID:    "room-1",
				Date:      timeslot.FormatDate(timezone.Now().Add(-48 * time.Hour)),
				StartTime: "09:00",
				EndTime:   "10:00",
				Purpose:   "lecture",
			},
			setupMock: func(m serviceMocks) {},
			wantErr:   true,
			wantKind:  failure.KindValidation,
		},
		{
			name: "end before start",
			req: dto.SubmitReservationRequest{
				RoomID:    "room-1",
				Date:      futureDate,
				StartTime: "10:00",
				EndTime:   "09:00",
				Purpose:   "lecture",
			},
			setupMock: func(m serviceMocks) {},
			wantErr:   true,
			wantKind:  failure.KindValidation,
		},
		{
			name: "unknown room",
			req: dto.SubmitReservationRequest{
				RoomID:    "no-such-room",
				Date:      futureDate,
				StartTime: "09:00",
				EndTime:   "10:00",
				Purpose:   "lecture",
			},
			setupMock: func(m serviceMocks) {
				m.rooms.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)
			},
			wantErr:  true,
			wantKind: failure.KindValidation,
		},
		{
			name: "duplicate idempotency key returns the original request",
			req: dto.SubmitReservationRequest{
				RoomID:         "room-1",
				Date:           futureDate,
				StartTime:      "09:00",
				EndTime:        "10:00",
				Purpose:        "lecture",
				IdempotencyKey: "retry-key-1",
			},
			setupMock: func(m serviceMocks) {
				m.rooms.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				// No Insert: the key lookup short-circuits the write.
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(existing, nil)
			},
			wantID: "existing-id",
		},
		{
			name: "advisory conflict rejects the submission",
			req: dto.SubmitReservationRequest{
				RoomID:    "room-1",
				Date:      futureDate,
				StartTime: "09:00",
				EndTime:   "10:00",
				Purpose:   "lecture",
			},
			setupMock: func(m serviceMocks) {
				m.rooms.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				m.detector.EXPECT().
					HasConflict(gomock.Any(), "room-1", gomock.Any(), "").
					Return(true, nil)
			},
			wantErr:  true,
			wantKind: failure.KindConflictAtApproval,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, m := newService(ctrl)
			tt.setupMock(m)

			res, err := svc.Submit(testContext(), tt.req)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantKind != "" {
					assert.True(t, failure.IsKind(err, tt.wantKind), "expected kind %s, got %s", tt.wantKind, failure.GetKind(err))
				}
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantID, res.ID)
		})
	}
}

func TestReservationService_Approve(t *testing.T) {
	_, slot := futureSlot(t)

	tests := []struct {
		name      string
		setupMock func(m serviceMocks)
		wantErr   bool
		wantKind  failure.Kind
	}{
		{
			name: "successful approval creates the schedule entry",
			setupMock: func(m serviceMocks) {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking("req-1", slot), nil)

				m.detector.EXPECT().
					HasConflict(gomock.Any(), "room-1", gomock.Any(), "req-1").
					Return(false, nil)

				m.repo.EXPECT().
					UpdateChecked(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(int64(1), nil)

				m.schedules.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)

				m.schedules.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(nil)
			},
		},
		{
			name: "retried approval does not duplicate the schedule entry",
			setupMock: func(m serviceMocks) {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking("req-1", slot), nil)

				m.detector.EXPECT().
					HasConflict(gomock.Any(), "room-1", gomock.Any(), "req-1").
					Return(false, nil)

				m.repo.EXPECT().
					UpdateChecked(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(int64(1), nil)

				// Entry already present from the earlier attempt; no Insert.
				m.schedules.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)
			},
		},
		{
			name: "request not found",
			setupMock: func(m serviceMocks) {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.ReservationRequest{}, nil)
			},
			wantErr:  true,
			wantKind: failure.KindNotFound,
		},
		{
			name: "request already decided",
			setupMock: func(m serviceMocks) {
				decided := pendingBooking("req-1", slot)
				decided.Status = model.StatusRejected

				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(decided, nil)
			},
			wantErr:  true,
			wantKind: failure.KindAlreadyProcessed,
		},
		{
			name: "slot taken between submission and decision",
			setupMock: func(m serviceMocks) {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking("req-1", slot), nil)

				// The authoritative re-check sees a competing approval; the
				// status write must not happen.
				m.detector.EXPECT().
					HasConflict(gomock.Any(), "room-1", gomock.Any(), "req-1").
					Return(true, nil)
			},
			wantErr:  true,
			wantKind: failure.KindConflictAtApproval,
		},
		{
			name: "decision lost to a concurrent approver",
			setupMock: func(m serviceMocks) {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking("req-1", slot), nil)

				m.detector.EXPECT().
					HasConflict(gomock.Any(), "room-1", gomock.Any(), "req-1").
					Return(false, nil)

				// Another actor decided the request between the read and the
				// write; the guarded update matches zero rows and no schedule
				// entry may be created.
				m.repo.EXPECT().
					UpdateChecked(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(int64(0), nil)
			},
			wantErr:  true,
			wantKind: failure.KindAlreadyProcessed,
		},
		{
			name: "overlap constraint fires on the schedule write",
			setupMock: func(m serviceMocks) {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking("req-1", slot), nil)

				m.detector.EXPECT().
					HasConflict(gomock.Any(), "room-1", gomock.Any(), "req-1").
					Return(false, nil)

				m.repo.EXPECT().
					UpdateChecked(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(int64(1), nil)

				m.schedules.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)

				// A competing approval slipped past the detector and grabbed
				// the slot first; the insert trips the overlap constraint and
				// the request must be put back to pending.
				m.schedules.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(failure.Conflict("room is already booked for an overlapping confirmed slot"))

				m.repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr:  true,
			wantKind: failure.KindConflictAtApproval,
		},
		{
			name: "request window already elapsed",
			setupMock: func(m serviceMocks) {
				elapsed := pendingBooking("req-1", slot)
				elapsed.StartTime = timezone.Now().Add(-2 * time.Hour)
				elapsed.EndTime = timezone.Now().Add(-time.Hour)

				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(elapsed, nil)
			},
			wantErr:  true,
			wantKind: failure.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, m := newService(ctrl)
			tt.setupMock(m)

			err := svc.Approve(testContext(), "req-1", dto.DecisionRequest{Feedback: "ok"})

			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantKind != "" {
					assert.True(t, failure.IsKind(err, tt.wantKind), "expected kind %s, got %s", tt.wantKind, failure.GetKind(err))
				}
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestReservationService_Reject(t *testing.T) {
	_, slot := futureSlot(t)

	tests := []struct {
		name      string
		feedback  string
		setupMock func(m serviceMocks)
		wantErr   bool
		wantKind  failure.Kind
	}{
		{
			name:     "successful rejection",
			feedback: "room is reserved for maintenance that day",
			setupMock: func(m serviceMocks) {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking("req-1", slot), nil)

				m.repo.EXPECT().
					UpdateChecked(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(int64(1), nil)
			},
		},
		{
			name:     "decision lost to a concurrent approver",
			feedback: "double-booked equipment",
			setupMock: func(m serviceMocks) {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking("req-1", slot), nil)

				m.repo.EXPECT().
					UpdateChecked(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(int64(0), nil)
			},
			wantErr:  true,
			wantKind: failure.KindAlreadyProcessed,
		},
		{
			name:      "feedback is mandatory",
			feedback:  "   ",
			setupMock: func(m serviceMocks) {},
			wantErr:   true,
			wantKind:  failure.KindValidation,
		},
		{
			name:     "request already decided",
			feedback: "too late",
			setupMock: func(m serviceMocks) {
				decided := pendingBooking("req-1", slot)
				decided.Status = model.StatusApproved

				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(decided, nil)
			},
			wantErr:  true,
			wantKind: failure.KindAlreadyProcessed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, m := newService(ctrl)
			tt.setupMock(m)

			err := svc.Reject(testContext(), "req-1", dto.DecisionRequest{Feedback: tt.feedback})

			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantKind != "" {
					assert.True(t, failure.IsKind(err, tt.wantKind), "expected kind %s, got %s", tt.wantKind, failure.GetKind(err))
				}
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestReservationService_Cancel(t *testing.T) {
	_, slot := futureSlot(t)

	confirmedEntry := func() scheduleModel.ScheduleEntry {
		return scheduleModel.ScheduleEntry{
			ID:        "entry-1",
			RequestID: "req-1",
			RoomID:    "room-1",
			Date:      slot.Date,
			StartTime: slot.Start,
			EndTime:   slot.End,
			Status:    scheduleModel.StatusConfirmed,
		}
	}

	tests := []struct {
		name      string
		reason    string
		setupMock func(m serviceMocks)
		wantErr   bool
		wantKind  failure.Kind
	}{
		{
			name:   "successful cancellation",
			reason: "class moved online",
			setupMock: func(m serviceMocks) {
				approved := pendingBooking("req-1", slot)
				approved.Status = model.StatusApproved

				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(approved, nil)

				m.schedules.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(confirmedEntry(), nil)

				m.schedules.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				m.repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
		},
		{
			name:      "reason is mandatory",
			reason:    "",
			setupMock: func(m serviceMocks) {},
			wantErr:   true,
			wantKind:  failure.KindValidation,
		},
		{
			name:   "pending request cannot be cancelled",
			reason: "change of plans",
			setupMock: func(m serviceMocks) {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking("req-1", slot), nil)
			},
			wantErr:  true,
			wantKind: failure.KindInvalidTransition,
		},
		{
			name:   "lapsed booking cannot be cancelled",
			reason: "change of plans",
			setupMock: func(m serviceMocks) {
				approved := pendingBooking("req-1", slot)
				approved.Status = model.StatusApproved

				entry := confirmedEntry()
				entry.StartTime = timezone.Now().Add(-2 * time.Hour)
				entry.EndTime = timezone.Now().Add(-time.Hour)

				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(approved, nil)

				m.schedules.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(entry, nil)
			},
			wantErr:  true,
			wantKind: failure.KindInvalidTransition,
		},
		{
			name:   "missing schedule entry",
			reason: "change of plans",
			setupMock: func(m serviceMocks) {
				approved := pendingBooking("req-1", slot)
				approved.Status = model.StatusApproved

				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(approved, nil)

				m.schedules.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(scheduleModel.ScheduleEntry{}, nil)
			},
			wantErr:  true,
			wantKind: failure.KindInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, m := newService(ctrl)
			tt.setupMock(m)

			err := svc.Cancel(testContext(), "req-1", dto.CancelRequest{Reason: tt.reason})

			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantKind != "" {
					assert.True(t, failure.IsKind(err, tt.wantKind), "expected kind %s, got %s", tt.wantKind, failure.GetKind(err))
				}
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestReservationService_ExpireOverdue(t *testing.T) {
	_, slot := futureSlot(t)

	t.Run("expires every overdue request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newService(ctrl)

		first := pendingBooking("req-1", slot)
		second := pendingBooking("req-2", slot)

		m.repo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]model.ReservationRequest{first, second}, nil)

		m.repo.EXPECT().
			UpdateChecked(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(int64(1), nil).
			Times(2)

		expired, err := svc.ExpireOverdue(testContext())

		assert.NoError(t, err)
		assert.Equal(t, 2, expired)
	})

	t.Run("a request decided mid-sweep is left alone", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newService(ctrl)

		first := pendingBooking("req-1", slot)
		second := pendingBooking("req-2", slot)

		m.repo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]model.ReservationRequest{first, second}, nil)

		gomock.InOrder(
			m.repo.EXPECT().
				UpdateChecked(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(int64(0), nil),
			m.repo.EXPECT().
				UpdateChecked(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(int64(1), nil),
		)

		expired, err := svc.ExpireOverdue(testContext())

		assert.NoError(t, err)
		assert.Equal(t, 1, expired)
	})

	t.Run("a failing update does not stop the sweep", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newService(ctrl)

		first := pendingBooking("req-1", slot)
		second := pendingBooking("req-2", slot)

		m.repo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]model.ReservationRequest{first, second}, nil)

		gomock.InOrder(
			m.repo.EXPECT().
				UpdateChecked(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(int64(0), errors.New("write failed")),
			m.repo.EXPECT().
				UpdateChecked(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(int64(1), nil),
		)

		expired, err := svc.ExpireOverdue(testContext())

		assert.NoError(t, err)
		assert.Equal(t, 1, expired)
	})

	t.Run("second run finds nothing pending", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newService(ctrl)

		m.repo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, nil)

		expired, err := svc.ExpireOverdue(testContext())

		assert.NoError(t, err)
		assert.Equal(t, 0, expired)
	})
}

func TestReservationService_RepairSchedules(t *testing.T) {
	_, slot := futureSlot(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newService(ctrl)

	covered := pendingBooking("req-1", slot)
	covered.Status = model.StatusApproved
	orphaned := pendingBooking("req-2", slot)
	orphaned.Status = model.StatusApproved

	m.repo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.ReservationRequest{covered, orphaned}, nil)

	gomock.InOrder(
		m.schedules.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(true, nil),
		// The orphan gets its entry back; ensure runs the existence check again
		// before inserting.
		m.schedules.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(false, nil),
		m.schedules.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(false, nil),
	)

	m.schedules.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return(nil)

	repaired, err := svc.RepairSchedules(testContext())

	assert.NoError(t, err)
	assert.Equal(t, 1, repaired)
}

func TestReservationService_Purge(t *testing.T) {
	_, slot := futureSlot(t)

	tests := []struct {
		name      string
		setupMock func(m serviceMocks)
		wantErr   bool
		wantKind  failure.Kind
	}{
		{
			name: "purges a terminal request and its schedule entry",
			setupMock: func(m serviceMocks) {
				cancelled := pendingBooking("req-1", slot)
				cancelled.Status = model.StatusCancelled

				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(cancelled, nil)

				gomock.InOrder(
					m.schedules.EXPECT().
						Delete(gomock.Any(), gomock.Any()).
						Return(nil),
					m.repo.EXPECT().
						Delete(gomock.Any(), gomock.Any()).
						Return(nil),
				)
			},
		},
		{
			name: "pending request cannot be purged",
			setupMock: func(m serviceMocks) {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking("req-1", slot), nil)
			},
			wantErr:  true,
			wantKind: failure.KindInvalidTransition,
		},
		{
			name: "approved request cannot be purged",
			setupMock: func(m serviceMocks) {
				approved := pendingBooking("req-1", slot)
				approved.Status = model.StatusApproved

				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(approved, nil)
			},
			wantErr:  true,
			wantKind: failure.KindInvalidTransition,
		},
		{
			name: "request not found",
			setupMock: func(m serviceMocks) {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.ReservationRequest{}, nil)
			},
			wantErr:  true,
			wantKind: failure.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, m := newService(ctrl)
			tt.setupMock(m)

			err := svc.Purge(testContext(), "req-1")

			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantKind != "" {
					assert.True(t, failure.IsKind(err, tt.wantKind), "expected kind %s, got %s", tt.wantKind, failure.GetKind(err))
				}
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestReservationService_Get(t *testing.T) {
	_, slot := futureSlot(t)

	tests := []struct {
		name      string
		setupMock func(m serviceMocks)
		wantErr   bool
		wantID    string
	}{
		{
			name: "cache hit skips the store",
			setupMock: func(m serviceMocks) {
				m.cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
		},
		{
			name: "cache miss falls back to the store",
			setupMock: func(m serviceMocks) {
				m.cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pendingBooking("req-1", slot), nil)
			},
			wantID: "req-1",
		},
		{
			name: "not found",
			setupMock: func(m serviceMocks) {
				m.cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.ReservationRequest{}, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, m := newService(ctrl)
			tt.setupMock(m)

			res, err := svc.Get(testContext(), "req-1")

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			if tt.wantID != "" {
				assert.Equal(t, tt.wantID, res.ID)
			}
		})
	}
}
