package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"

	"classbook/infras/otel"
	"classbook/internal/fanout"
	"classbook/shared/constant"
	"classbook/shared/failure"
	"classbook/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	hub  *fanout.Hub
	otel otel.Otel
}

func New(hub *fanout.Hub, otel otel.Otel) Handler {
	return Handler{
		hub:  hub,
		otel: otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/streams", func(routerGroup chi.Router) {
		routerGroup.Get("/{collection}", handler.Stream)
	})
}

// Stream pushes live snapshots of one collection over server-sent events.
// @Summary Stream a collection
// @Description Open a server-sent events stream delivering the current snapshot immediately and a fresh one after every change. Faculty see their own records plus public ones; admins see everything.
// @Tags Stream
// @Produce text/event-stream
// @Param collection path string true "Collection" Enums(requests, schedules, rooms)
// @Success 200 {string} string "event stream"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/streams/{collection} [get]
// @Security BearerAuth
func (handler *Handler) Stream(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Stream")
	defer scope.End()

	collection := chi.URLParam(request, "collection")
	if !slices.Contains(handler.hub.Collections(), collection) {
		err := failure.BadRequestFromString("unknown collection: " + collection)
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	flusher, ok := writer.(http.Flusher)
	if !ok {
		err := failure.InternalError(fmt.Errorf("streaming unsupported by the underlying writer"))
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeEventStream)
	writer.Header().Set("Cache-Control", "no-cache")
	writer.Header().Set("Connection", "keep-alive")
	writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	// One buffered slot per event type; the pump never blocks on a slow client
	// longer than one snapshot.
	snapshots := make(chan []fanout.Record, 1)
	errs := make(chan error, 1)

	session := handler.hub.NewSession()
	defer session.Teardown()

	err := session.Activate(ctx, fanout.Identity{UserID: userID, Role: role}, map[string]fanout.Listener{
		collection: {
			OnSnapshot: func(records []fanout.Record) {
				select {
				case snapshots <- records:
				default:
				}
			},
			OnError: func(err error) {
				select {
				case errs <- err:
				default:
				}
			},
		},
	})
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("collection", collection).Msg("failed to activate stream session")

		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case records := <-snapshots:
			writeEvent(writer, flusher, "snapshot", records)
		case streamErr := <-errs:
			log.Error().Err(streamErr).Str("collection", collection).Msg("stream error")
			writeEvent(writer, flusher, "error", map[string]string{"error": streamErr.Error()})
		}
	}
}

func writeEvent(writer http.ResponseWriter, flusher http.Flusher, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal stream event")

		return
	}

	fmt.Fprintf(writer, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
