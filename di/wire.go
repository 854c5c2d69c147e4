//go:build wireinject
// +build wireinject

package di

import (
	"classbook/config"
	"classbook/infras/jwt"
	"classbook/infras/kafka"
	"classbook/infras/otel"
	"classbook/infras/postgres"
	"classbook/infras/redis"
	"classbook/internal/bulk"
	"classbook/internal/fanout"
	"classbook/internal/notify"
	"classbook/internal/sweep"
	"classbook/permissions"
	"classbook/shared/cache"
	"classbook/transport/http"
	"classbook/transport/http/middleware"
	"classbook/transport/http/router"

	reservationRepository "classbook/internal/domains/reservation/repository"
	reservationService "classbook/internal/domains/reservation/service"
	roomRepository "classbook/internal/domains/room/repository"
	roomService "classbook/internal/domains/room/service"
	scheduleRepository "classbook/internal/domains/schedule/repository"
	scheduleService "classbook/internal/domains/schedule/service"
	userRepository "classbook/internal/domains/user/repository"
	userService "classbook/internal/domains/user/service"

	authService "classbook/internal/domains/auth/service"

	authHandler "classbook/internal/handlers/auth"
	reservationHandler "classbook/internal/handlers/reservation"
	roomHandler "classbook/internal/handlers/room"
	scheduleHandler "classbook/internal/handlers/schedule"
	streamHandler "classbook/internal/handlers/stream"
	testHandler "classbook/internal/handlers/test"
	userHandler "classbook/internal/handlers/user"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var eventing = wire.NewSet(
	fanout.NewRedisStream,
	wire.Bind(new(fanout.Publisher), new(*fanout.RedisStream)),
	wire.Bind(new(fanout.Stream), new(*fanout.RedisStream)),
	fanout.NewHub,
	notify.New,
)

var reservationDomain = wire.NewSet(
	reservationRepository.New,
	reservationService.NewDetector,
	reservationService.New,
	provideCoordinator,
	sweep.NewRunner,
)

var scheduleDomain = wire.NewSet(
	scheduleRepository.New,
	scheduleService.New,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
)

var authDomain = wire.NewSet(
	authService.New,
)

var domains = wire.NewSet(
	reservationDomain,
	scheduleDomain,
	roomDomain,
	userDomain,
	authDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	roomHandler.New,
	reservationHandler.New,
	scheduleHandler.New,
	streamHandler.New,
	testHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		eventing,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
