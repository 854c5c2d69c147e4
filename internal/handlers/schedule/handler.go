package schedule

import (
	"net/http"

	"classbook/infras/otel"
	"classbook/internal/domains/schedule/model"
	"classbook/internal/domains/schedule/service"
	"classbook/shared/constant"
	gDto "classbook/shared/dto"
	"classbook/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Schedule
	otel    otel.Otel
}

func New(service service.Schedule, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/schedules", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetSchedules)
		routerGroup.Get("/{id}", handler.GetScheduleByID)
	})
}

// GetSchedules retrieves confirmed schedule entries.
// @Summary Get confirmed schedules
// @Description Retrieve confirmed schedule entries with optional filtering by room, date and status.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param room_id query string false "Filter by room"
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Data[dto.GetSchedulesResponse] "List of schedule entries"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/schedules [get]
// @Security BearerAuth
func (handler *Handler) GetSchedules(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSchedules")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

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

	res, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get schedule entries")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// GetScheduleByID retrieves a schedule entry by ID.
// @Summary Get a schedule entry by ID
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Schedule Entry ID"
// @Success 200 {object} response.Data[dto.ScheduleResponse] "Schedule entry details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/schedules/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetScheduleByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetScheduleByID")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	res, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get schedule entry")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}
