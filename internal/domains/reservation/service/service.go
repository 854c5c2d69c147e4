package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"classbook/config"
	"classbook/infras/otel"
	"classbook/internal/domains/reservation/model"
	"classbook/internal/domains/reservation/model/dto"
	"classbook/internal/domains/reservation/repository"
	roomModel "classbook/internal/domains/room/model"
	roomRepo "classbook/internal/domains/room/repository"
	scheduleModel "classbook/internal/domains/schedule/model"
	scheduleRepo "classbook/internal/domains/schedule/repository"
	"classbook/internal/fanout"
	"classbook/internal/notify"
	"classbook/shared"
	"classbook/shared/cache"
	"classbook/shared/constant"
	gDto "classbook/shared/dto"
	"classbook/shared/failure"
	gModel "classbook/shared/model"
	"classbook/shared/retry"
	"classbook/shared/timeslot"
	"classbook/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetReservation    = "reservation:get"
	cacheGetAllReservation = "reservation:gets"
	cacheCountReservation  = "reservation:count"
	cacheGetAllSchedule    = "schedule:gets"
)

const expiredFeedback = "request expired before a decision was made"

type Reservation interface {
	Submit(ctx context.Context, req dto.SubmitReservationRequest) (dto.ReservationResponse, error)
	Get(ctx context.Context, id string) (dto.ReservationResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetReservationsResponse, error)
	Count(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Approve(ctx context.Context, id string, req dto.DecisionRequest) error
	Reject(ctx context.Context, id string, req dto.DecisionRequest) error
	Cancel(ctx context.Context, id string, req dto.CancelRequest) error
	ExpireOverdue(ctx context.Context) (int, error)
	RepairSchedules(ctx context.Context) (int, error)
	Purge(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo      repository.Reservation
	schedules scheduleRepo.Schedule
	rooms     roomRepo.Room
	detector  Detector
	notifier  notify.Notifier
	publisher fanout.Publisher
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
	policy    retry.Policy
}

func New(
	repo repository.Reservation,
	schedules scheduleRepo.Schedule,
	rooms roomRepo.Room,
	detector Detector,
	notifier notify.Notifier,
	publisher fanout.Publisher,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Reservation {
	return &serviceImpl{
		repo:      repo,
		schedules: schedules,
		rooms:     rooms,
		detector:  detector,
		notifier:  notifier,
		publisher: publisher,
		cfg:       cfg,
		cache:     cache,
		otel:      otel,
		policy:    retry.DefaultStorePolicy(),
	}
}

func (s *serviceImpl) Submit(ctx context.Context, req dto.SubmitReservationRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Submit")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	userEmail, _ := ctx.Value(constant.ContextKeyUserEmail).(string)

	slot, err := req.Slot()
	if err != nil {
		return res, err
	}

	if timeslot.InPast(slot, timezone.Now()) {
		return res, failure.BadRequestFromString("cannot book a time slot in the past")
	}

	roomExists, err := s.rooms.Exist(ctx, shared.FilterByID(req.RoomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if room exists")

		return res, fmt.Errorf("failed to check if room exists: %w", err)
	}

	if !roomExists {
		return res, failure.BadRequestFromString("room does not exist")
	}

	// An offline client retrying a submission after a crash resends the same
	// idempotency key; return the request it already created.
	if req.IdempotencyKey != "" {
		existing, err := s.repo.Get(ctx, idempotencyFilter(userID, req.IdempotencyKey))
		if err != nil {
			log.Error().Err(err).Msg("failed to check idempotency key")

			return res, fmt.Errorf("failed to check idempotency key: %w", err)
		}

		if existing.ID != constant.Empty {
			res.FromModel(existing)

			return res, nil
		}
	}

	// Advisory only: the store may lag, so Approve re-runs this check
	// authoritatively before committing.
	conflict, err := s.detector.HasConflict(ctx, req.RoomID, slot, constant.Empty)
	if err != nil {
		log.Error().Err(err).Msg("failed to run submission conflict pre-check")

		return res, fmt.Errorf("failed to run conflict pre-check: %w", err)
	}

	if conflict {
		return res, failure.Conflict("requested slot overlaps an existing booking for this room")
	}

	booking := req.ToModel(userID, userEmail, slot)

	if err = s.repo.Insert(ctx, booking); err != nil {
		log.Error().Err(err).Msg("failed to create reservation request")

		return res, fmt.Errorf("failed to create reservation request: %w", err)
	}

	// Read back the committed record so the caller sees exactly what was stored.
	created, err := s.repo.Get(ctx, shared.FilterByID(booking.ID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to read back created reservation request")

		return res, fmt.Errorf("failed to read back reservation request: %w", err)
	}

	s.afterWrite(ctx, fanout.Created(fanout.CollectionRequests, booking.ID), []notify.Notification{{
		RecipientID: notify.RecipientApprovers,
		Kind:        notify.KindSubmitted,
		Message:     fmt.Sprintf("new reservation request for room %s on %s", booking.RoomID, req.Date),
		Context:     map[string]string{"request_id": booking.ID},
	}})

	res.FromModel(created)

	return res, nil
}

func (s *serviceImpl) Approve(ctx context.Context, id string, req dto.DecisionRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Approve")
	defer scope.End()
	defer scope.TraceIfError(err)

	actor, _ := ctx.Value(constant.ContextKeyUserID).(string)

	booking, err := s.pendingRequest(ctx, id)
	if err != nil {
		return err
	}

	slot := timeslot.FromInstants(booking.Date, booking.StartTime, booking.EndTime)
	if timeslot.InPast(slot, timezone.Now()) {
		return failure.BadRequestFromString("request window has elapsed; the expiry sweep will retire it")
	}

	// The authoritative check: re-run the detector against current state,
	// excluding the request itself, immediately before committing. Two racing
	// approvals for overlapping slots resolve here, with the later writer
	// observing the earlier one's committed state.
	var conflict bool

	err = retry.Do(ctx, s.policy, func(ctx context.Context) error {
		var detectErr error
		conflict, detectErr = s.detector.HasConflict(ctx, booking.RoomID, slot, booking.ID)

		return detectErr
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to run authoritative conflict re-check")

		return fmt.Errorf("failed to run conflict re-check: %w", err)
	}

	if conflict {
		return failure.Conflict("room was taken while deciding; pick another room or time")
	}

	patch := model.DecisionPatch(model.StatusApproved, strings.TrimSpace(req.Feedback), actor)

	// Compare-and-set on the pending status: if a competing decision (or the
	// expiry sweep) committed between the read and this write, zero rows
	// match and nothing changes.
	affected, err := s.repo.UpdateChecked(ctx, patch.Fields(actor), pendingGuardFilter(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to approve reservation request")

		return fmt.Errorf("failed to approve reservation request: %w", err)
	}

	if affected == 0 {
		return failure.AlreadyProcessed("request was already decided; refresh the list")
	}

	if err = s.ensureScheduleEntry(ctx, booking, actor); err != nil {
		if failure.IsKind(err, failure.KindConflictAtApproval) {
			// The store's exclusion constraint caught an overlap committed
			// after the re-check; undo the status flip so the request stays
			// decidable.
			s.revertToPending(ctx, id, actor)

			return failure.Conflict("room was taken while deciding; pick another room or time")
		}

		return err
	}

	s.afterWrite(ctx, fanout.Updated(fanout.CollectionRequests, id), []notify.Notification{{
		RecipientID: booking.RequesterID,
		Kind:        notify.KindApproved,
		Message:     fmt.Sprintf("your reservation for room %s on %s was approved", booking.RoomID, timeslot.FormatDate(booking.Date)),
		Context:     map[string]string{"request_id": id, "feedback": req.Feedback},
	}})

	return nil
}

func (s *serviceImpl) Reject(ctx context.Context, id string, req dto.DecisionRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Reject")
	defer scope.End()
	defer scope.TraceIfError(err)

	actor, _ := ctx.Value(constant.ContextKeyUserID).(string)

	feedback := strings.TrimSpace(req.Feedback)
	if feedback == constant.Empty {
		return failure.BadRequestFromString("feedback is required when rejecting a request")
	}

	if len(feedback) > constant.FeedbackMaxLength {
		return failure.BadRequestFromString(fmt.Sprintf("feedback must be at most %d characters", constant.FeedbackMaxLength))
	}

	booking, err := s.pendingRequest(ctx, id)
	if err != nil {
		return err
	}

	patch := model.DecisionPatch(model.StatusRejected, feedback, actor)

	affected, err := s.repo.UpdateChecked(ctx, patch.Fields(actor), pendingGuardFilter(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to reject reservation request")

		return fmt.Errorf("failed to reject reservation request: %w", err)
	}

	if affected == 0 {
		return failure.AlreadyProcessed("request was already decided; refresh the list")
	}

	s.afterWrite(ctx, fanout.Updated(fanout.CollectionRequests, id), []notify.Notification{{
		RecipientID: booking.RequesterID,
		Kind:        notify.KindRejected,
		Message:     fmt.Sprintf("your reservation for room %s on %s was rejected: %s", booking.RoomID, timeslot.FormatDate(booking.Date), feedback),
		Context:     map[string]string{"request_id": id, "feedback": feedback},
	}})

	return nil
}

func (s *serviceImpl) Cancel(ctx context.Context, id string, req dto.CancelRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	actor, _ := ctx.Value(constant.ContextKeyUserID).(string)

	reason := strings.TrimSpace(req.Reason)
	if reason == constant.Empty {
		return failure.BadRequestFromString("a reason is required when cancelling a booking")
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation request")

		return fmt.Errorf("failed to get reservation request: %w", err)
	}

	if booking.ID == constant.Empty {
		return failure.NotFound("reservation request not found")
	}

	if !model.CanTransition(booking.Status, model.StatusCancelled) {
		return failure.InvalidTransition(fmt.Sprintf("cannot cancel a %s request", booking.Status))
	}

	entry, err := s.schedules.Get(ctx, requestIDFilter(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to get confirmed schedule entry")

		return fmt.Errorf("failed to get confirmed schedule entry: %w", err)
	}

	if entry.ID == constant.Empty || entry.Status != scheduleModel.StatusConfirmed {
		return failure.InvalidTransition("no confirmed schedule entry to cancel for this request")
	}

	if timeslot.Lapsed(timeslot.FromInstants(entry.Date, entry.StartTime, entry.EndTime), timezone.Now()) {
		return failure.InvalidTransition("booking has already lapsed and cannot be cancelled")
	}

	scheduleFields := map[string]any{
		scheduleModel.FieldStatus:       scheduleModel.StatusCancelled,
		scheduleModel.FieldCancelReason: reason,
		constant.FieldModifiedAt:        timezone.Now(),
		constant.FieldModifiedBy:        actor,
	}
	if err = s.schedules.Update(ctx, scheduleFields, shared.FilterByID(entry.ID, scheduleModel.FieldID, scheduleModel.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to cancel schedule entry")

		return fmt.Errorf("failed to cancel schedule entry: %w", err)
	}

	patch := model.DecisionPatch(model.StatusCancelled, reason, actor)
	if err = s.repo.Update(ctx, patch.Fields(actor), shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to mirror cancellation to reservation request")

		return fmt.Errorf("failed to mirror cancellation: %w", err)
	}

	s.afterWrite(ctx, fanout.Updated(fanout.CollectionSchedules, entry.ID), []notify.Notification{{
		RecipientID: booking.RequesterID,
		Kind:        notify.KindCancelled,
		Message:     fmt.Sprintf("your booking for room %s on %s was cancelled: %s", booking.RoomID, timeslot.FormatDate(booking.Date), reason),
		Context:     map[string]string{"request_id": id, "reason": reason},
	}})

	s.publishAsync(ctx, fanout.Updated(fanout.CollectionRequests, id))

	return nil
}

// ExpireOverdue retires every pending request whose start instant has
// passed. Idempotent: a second run over the same data finds nothing pending.
func (s *serviceImpl) ExpireOverdue(ctx context.Context) (expired int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ExpireOverdue")
	defer scope.End()
	defer scope.TraceIfError(err)

	overdue, err := s.repo.GetAll(ctx, gDto.QueryParams{}, overdueFilter(timezone.Now()))
	if err != nil {
		log.Error().Err(err).Msg("failed to list overdue reservation requests")

		return 0, fmt.Errorf("failed to list overdue requests: %w", err)
	}

	for _, booking := range overdue {
		patch := model.DecisionPatch(model.StatusExpired, expiredFeedback, "system")

		affected, err := s.repo.UpdateChecked(ctx, patch.Fields("system"), pendingGuardFilter(booking.ID))
		if err != nil {
			log.Error().Err(err).Str("request_id", booking.ID).Msg("failed to expire reservation request")

			continue
		}

		// Zero rows means a decision landed between the listing and this
		// write; the request is no longer ours to expire.
		if affected == 0 {
			continue
		}

		expired++

		s.afterWrite(ctx, fanout.Updated(fanout.CollectionRequests, booking.ID), []notify.Notification{{
			RecipientID: booking.RequesterID,
			Kind:        notify.KindExpired,
			Message:     fmt.Sprintf("your reservation request for room %s expired before a decision", booking.RoomID),
			Context:     map[string]string{"request_id": booking.ID},
		}})
	}

	return expired, nil
}

// RepairSchedules recreates schedule entries missing after a crash between
// the approval write and the schedule write.
func (s *serviceImpl) RepairSchedules(ctx context.Context) (repaired int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RepairSchedules")
	defer scope.End()
	defer scope.TraceIfError(err)

	approved, err := s.repo.GetAll(ctx, gDto.QueryParams{}, statusFilter(model.StatusApproved))
	if err != nil {
		log.Error().Err(err).Msg("failed to list approved reservation requests")

		return 0, fmt.Errorf("failed to list approved requests: %w", err)
	}

	for _, booking := range approved {
		exists, err := s.schedules.Exist(ctx, requestIDFilter(booking.ID))
		if err != nil {
			log.Error().Err(err).Str("request_id", booking.ID).Msg("failed to check schedule entry")

			continue
		}

		if exists {
			continue
		}

		if err := s.ensureScheduleEntry(ctx, booking, "system"); err != nil {
			log.Error().Err(err).Str("request_id", booking.ID).Msg("failed to repair schedule entry")

			continue
		}

		repaired++
	}

	return repaired, nil
}

func (s *serviceImpl) Purge(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Purge")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation request")

		return fmt.Errorf("failed to get reservation request: %w", err)
	}

	if booking.ID == constant.Empty {
		return failure.NotFound("reservation request not found")
	}

	if !model.IsTerminal(booking.Status) {
		return failure.InvalidTransition("only rejected, cancelled or expired requests can be purged")
	}

	// Cascade: drop the dependent schedule entry first so the room never
	// appears held by a purged request.
	if err = s.schedules.Delete(ctx, requestIDFilter(id)); err != nil {
		log.Error().Err(err).Msg("failed to delete dependent schedule entries")

		return fmt.Errorf("failed to delete dependent schedule entries: %w", err)
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to purge reservation request")

		return fmt.Errorf("failed to purge reservation request: %w", err)
	}

	s.publishAsync(ctx, fanout.Deleted(fanout.CollectionRequests, id))
	s.invalidateAsync(ctx, id)

	return nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetReservation, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation request")

		return res, fmt.Errorf("failed to get reservation request: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("reservation request not found")
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservation to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllReservation, params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	total, err := s.Count(ctx, params, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation requests")

		return res, fmt.Errorf("failed to get reservation requests: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservations to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountReservation, params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count reservation requests")

		return res, fmt.Errorf("failed to count reservation requests: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservation count to cache")
		}
	}()

	return res, nil
}

// pendingRequest loads a request and enforces the decision precondition.
func (s *serviceImpl) pendingRequest(ctx context.Context, id string) (model.ReservationRequest, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation request")

		return booking, fmt.Errorf("failed to get reservation request: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound("reservation request not found")
	}

	if booking.Status != model.StatusPending {
		return booking, failure.AlreadyProcessed(fmt.Sprintf("request was already decided (status: %s); refresh the list", booking.Status))
	}

	return booking, nil
}

// ensureScheduleEntry creates the confirmed schedule entry exactly once. A
// retried approval that already produced an entry is a no-op here.
func (s *serviceImpl) ensureScheduleEntry(ctx context.Context, booking model.ReservationRequest, actor string) error {
	exists, err := s.schedules.Exist(ctx, requestIDFilter(booking.ID))
	if err != nil {
		log.Error().Err(err).Msg("failed to check existing schedule entry")

		return fmt.Errorf("failed to check existing schedule entry: %w", err)
	}

	if exists {
		return nil
	}

	now := timezone.Now()
	entry := scheduleModel.ScheduleEntry{
		ID:            uuid.NewString(),
		RequestID:     booking.ID,
		RoomID:        booking.RoomID,
		RequesterID:   booking.RequesterID,
		RequesterName: booking.RequesterName,
		Date:          booking.Date,
		StartTime:     booking.StartTime,
		EndTime:       booking.EndTime,
		Purpose:       booking.Purpose,
		Status:        scheduleModel.StatusConfirmed,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  actor,
			ModifiedBy: actor,
		},
	}

	err = retry.Do(ctx, s.policy, func(ctx context.Context) error {
		return s.schedules.Insert(ctx, entry)
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create confirmed schedule entry")

		return fmt.Errorf("failed to create confirmed schedule entry: %w", err)
	}

	s.publishAsync(ctx, fanout.Created(fanout.CollectionSchedules, entry.ID))

	return nil
}

// afterWrite handles the post-commit side effects of a transition: cache
// invalidation, the change stream event and the notification list. All
// fire-and-forget; failures are logged, never surfaced.
func (s *serviceImpl) afterWrite(ctx context.Context, event fanout.ChangeEvent, notifications []notify.Notification) {
	s.publishAsync(ctx, event)
	s.invalidateAsync(ctx, event.RecordID)

	go func() {
		c := context.WithoutCancel(ctx)

		notify.Dispatch(c, s.notifier, notifications)
	}()
}

func (s *serviceImpl) publishAsync(ctx context.Context, event fanout.ChangeEvent) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.publisher.Publish(c, event); err != nil {
			log.Error().Err(err).Str("collection", event.Collection).Msg("failed to publish change event")
		}
	}()
}

func (s *serviceImpl) invalidateAsync(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetReservation, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete reservation from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllReservation)
		shared.InvalidateCaches(c, s.cache, cacheCountReservation)
		shared.InvalidateCaches(c, s.cache, cacheGetAllSchedule)
	}()
}

// revertToPending rolls a status flip back when the schedule write behind it
/// lost to a concurrently committed overlap. Best effort: the repair pass
// re-resolves anything this misses.
func (s *serviceImpl) revertToPending(ctx context.Context, id, actor string) {
	fields := model.StatusPatch(model.StatusPending).Fields(actor)
	if err := s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Str("request_id", id).Msg("failed to revert request to pending after schedule conflict")
	}
}

func pendingGuardFilter(id string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Operator: gDto.FilterOperatorEq, Value: id, Table: model.TableName},
			gDto.Filter{Field: model.FieldStatus, Operator: gDto.FilterOperatorEq, Value: model.StatusPending, Table: model.TableName},
		},
	}
}

func idempotencyFilter(userID, key string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldRequesterID, Operator: gDto.FilterOperatorEq, Value: userID, Table: model.TableName},
			gDto.Filter{Field: model.FieldIdempotencyKey, Operator: gDto.FilterOperatorEq, Value: key, Table: model.TableName},
		},
	}
}

func requestIDFilter(requestID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: scheduleModel.FieldRequestID, Operator: gDto.FilterOperatorEq, Value: requestID, Table: scheduleModel.TableName},
		},
	}
}

func statusFilter(status string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldStatus, Operator: gDto.FilterOperatorEq, Value: status, Table: model.TableName},
		},
	}
}

func overdueFilter(now time.Time) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldStatus, Operator: gDto.FilterOperatorEq, Value: model.StatusPending, Table: model.TableName},
			gDto.Filter{Field: model.FieldStartTime, Operator: gDto.FilterOperatorLessEq, Value: now, Table: model.TableName},
		},
	}
}
