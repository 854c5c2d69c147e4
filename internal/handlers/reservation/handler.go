package reservation

import (
	"net/http"

	"classbook/infras/otel"
	"classbook/internal/bulk"
	"classbook/internal/domains/reservation/model"
	"classbook/internal/domains/reservation/model/dto"
	"classbook/internal/domains/reservation/service"
	"classbook/shared/constant"
	gDto "classbook/shared/dto"
	"classbook/shared/validator"
	"classbook/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service     service.Reservation
	coordinator *bulk.Coordinator
	otel        otel.Otel
}

func New(service service.Reservation, coordinator *bulk.Coordinator, otel otel.Otel) Handler {
	return Handler{
		service:     service,
		coordinator: coordinator,
		otel:        otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/reservations", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.SubmitReservation)
		routerGroup.Get("/", handler.GetReservations)
		routerGroup.Get("/mine", handler.GetMyReservations)
		routerGroup.Get("/{id}", handler.GetReservationByID)
		routerGroup.Post("/{id}/approve", handler.ApproveReservation)
		routerGroup.Post("/{id}/reject", handler.RejectReservation)
		routerGroup.Post("/{id}/cancel", handler.CancelReservation)
		routerGroup.Post("/bulk", handler.BulkDecide)
		routerGroup.Delete("/{id}", handler.PurgeReservation)
	})
}

// SubmitReservation submits a new reservation request.
// @Summary Submit a reservation request
// @Description Submit a booking request for a room and time slot. The request enters the approval queue as pending.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param request body dto.SubmitReservationRequest true "Submit Reservation Request"
// @Success 201 {object} response.Data[dto.ReservationResponse] "Created reservation request"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations [post]
// @Security BearerAuth
func (handler *Handler) SubmitReservation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SubmitReservation")
	defer scope.End()

	req := dto.SubmitReservationRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	if req.IdempotencyKey == constant.Empty {
		req.IdempotencyKey = request.Header.Get(constant.RequestHeaderIdempotencyKey)
	}

	res, err := handler.service.Submit(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to submit reservation request")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Reservation request submitted")

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetReservations retrieves reservation requests.
// @Summary Get reservation requests
// @Description Retrieve reservation requests with optional filtering and pagination.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param room_id query string false "Filter by room"
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Data[dto.GetReservationsResponse] "List of reservation requests"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations [get]
// @Security BearerAuth
func (handler *Handler) GetReservations(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReservations")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	filterGroup := reservationFilter(request)

	res, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get reservation requests")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// GetMyReservations retrieves the caller's own reservation requests.
// @Summary Get my reservation requests
// @Description Retrieve the requests submitted by the authenticated user.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Data[dto.GetReservationsResponse] "List of reservation requests"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/mine [get]
// @Security BearerAuth
func (handler *Handler) GetMyReservations(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyReservations")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	filterGroup := reservationFilter(request)
	filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
		Field:    model.FieldRequesterID,
		Operator: gDto.FilterOperatorEq,
		Value:    userID,
		Table:    model.TableName,
	})

	res, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get own reservation requests")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// GetReservationByID retrieves a reservation request by ID.
// @Summary Get a reservation request by ID
// @Tags Reservation
// @Accept json
// @Produce json
// @Param id path string true "Reservation Request ID"
// @Success 200 {object} response.Data[dto.ReservationResponse] "Reservation request details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetReservationByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReservationByID")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	res, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get reservation request")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// ApproveReservation approves a pending reservation request.
// @Summary Approve a reservation request
// @Description Approve a pending request. The slot is re-checked against current bookings before the approval commits.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param id path string true "Reservation Request ID"
// @Param request body dto.DecisionRequest false "Optional feedback"
// @Success 200 {object} response.Message "Reservation approved"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/{id}/approve [post]
// @Security BearerAuth
func (handler *Handler) ApproveReservation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ApproveReservation")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	req := dto.DecisionRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	if err := handler.service.Approve(ctx, id, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to approve reservation request")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Reservation request approved")

	response.WithMessage(writer, http.StatusOK, "Reservation approved")
}

// RejectReservation rejects a pending reservation request.
// @Summary Reject a reservation request
// @Description Reject a pending request. Feedback is mandatory and delivered to the requester.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param id path string true "Reservation Request ID"
// @Param request body dto.DecisionRequest true "Feedback"
// @Success 200 {object} response.Message "Reservation rejected"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/{id}/reject [post]
// @Security BearerAuth
func (handler *Handler) RejectReservation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RejectReservation")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	req := dto.DecisionRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	if err := handler.service.Reject(ctx, id, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to reject reservation request")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Reservation request rejected")

	response.WithMessage(writer, http.StatusOK, "Reservation rejected")
}

// CancelReservation cancels an approved booking.
// @Summary Cancel an approved booking
// @Description Cancel an approved booking with a mandatory reason. The confirmed schedule entry is cancelled and the request mirrored.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param id path string true "Reservation Request ID"
// @Param request body dto.CancelRequest true "Cancellation reason"
// @Success 200 {object} response.Message "Reservation cancelled"
// @Failure 400 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/{id}/cancel [post]
// @Security BearerAuth
func (handler *Handler) CancelReservation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelReservation")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	req := dto.CancelRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	if err := handler.service.Cancel(ctx, id, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to cancel reservation")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Reservation cancelled")

	response.WithMessage(writer, http.StatusOK, "Reservation cancelled")
}

// BulkDecide applies a batch of approve/reject decisions.
// @Summary Apply bulk decisions
// @Description Apply a list of approve/reject decisions with bounded concurrency. Items fail independently; the report lists every outcome.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param request body bulk.BulkRequest true "Bulk decisions"
// @Success 200 {object} response.Data[bulk.Report] "Per-item results"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/bulk [post]
// @Security BearerAuth
func (handler *Handler) BulkDecide(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".BulkDecide")
	defer scope.End()

	req := bulk.BulkRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	report := handler.coordinator.Run(ctx, req.Decisions, func(processed, total int) {
		log.Debug().Int("processed", processed).Int("total", total).Msg("bulk decision progress")
	})

	scope.AddEvent("Bulk decisions applied")

	response.WithJSON(writer, http.StatusOK, report)
}

// PurgeReservation removes a terminal-state reservation request.
// @Summary Purge a reservation request
// @Description Delete a rejected, cancelled or expired request and its dependent schedule entries.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param id path string true "Reservation Request ID"
// @Success 200 {object} response.Message "Reservation purged"
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/{id} [delete]
// @Security BearerAuth
func (handler *Handler) PurgeReservation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".PurgeReservation")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	if err := handler.service.Purge(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to purge reservation request")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Reservation request purged")

	response.WithMessage(writer, http.StatusOK, "Reservation purged")
}

func reservationFilter(request *http.Request) gDto.FilterGroup {
	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if roomID := request.URL.Query().Get(model.FieldRoomID); roomID != constant.Empty {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldRoomID,
			Operator: gDto.FilterOperatorEq,
			Value:    roomID,
			Table:    model.TableName,
		})
	}

	if date := request.URL.Query().Get(model.FieldDate); date != constant.Empty {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldDate,
			Operator: gDto.FilterOperatorEq,
			Value:    date,
			Table:    model.TableName,
		})
	}

	if status := request.URL.Query().Get(model.FieldStatus); status != constant.Empty {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    status,
			Table:    model.TableName,
		})
	}

	return filterGroup
}
