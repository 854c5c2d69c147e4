package test

import (
	"net/http"

	"classbook/transport/http/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct{}

func New() Handler {
	return Handler{}
}

func (h *Handler) Router(r chi.Router) {
	r.Route("/health", func(routerGroup chi.Router) {
		routerGroup.Get("/", h.Health)
	})
}

// Health reports liveness.
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} response.Message
// @Router /v1/health [get]
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	response.WithMessage(w, http.StatusOK, "ok")
}
