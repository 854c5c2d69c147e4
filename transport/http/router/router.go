package router

import (
	"classbook/internal/handlers/auth"
	"classbook/internal/handlers/reservation"
	"classbook/internal/handlers/room"
	"classbook/internal/handlers/schedule"
	"classbook/internal/handlers/stream"
	"classbook/internal/handlers/test"
	"classbook/internal/handlers/user"
	"classbook/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Auth        auth.Handler
	User        user.Handler
	Room        room.Handler
	Reservation reservation.Handler
	Schedule    schedule.Handler
	Stream      stream.Handler
	Test        test.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	AuthRole       middleware.AuthRole
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		routerGroup.Use(r.AuthRole.Auth)
		routerGroup.Use(r.AuthRole.RBAC)

		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.User.Router(routerGroup)
		r.DomainHandlers.Room.Router(routerGroup)
		r.DomainHandlers.Reservation.Router(routerGroup)
		r.DomainHandlers.Schedule.Router(routerGroup)
		r.DomainHandlers.Stream.Router(routerGroup)
		r.DomainHandlers.Test.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers, authRole middleware.AuthRole) Router {
	return Router{
		DomainHandlers: domainHandlers,
		AuthRole:       authRole,
	}
}
