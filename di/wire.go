//go:build wireinject
// +build wireinject

package di

import (
	"hemobook/config"
	"hemobook/infras/kafka"
	"hemobook/infras/otel"
	"hemobook/infras/postgres"
	"hemobook/infras/redis"
	"hemobook/internal/events"
	appointmentHandler "hemobook/internal/handlers/appointment"
	bloodRequestHandler "hemobook/internal/handlers/bloodrequest"
	capacityHandler "hemobook/internal/handlers/capacity"
	donationHandler "hemobook/internal/handlers/donation"
	"hemobook/shared/cache"
	"hemobook/transport/http"
	"hemobook/transport/http/middleware"
	"hemobook/transport/http/router"

	appointmentRepository "hemobook/internal/domains/appointment/repository"
	appointmentService "hemobook/internal/domains/appointment/service"
	bloodRequestRepository "hemobook/internal/domains/bloodrequest/repository"
	bloodRequestService "hemobook/internal/domains/bloodrequest/service"
	capacityRepository "hemobook/internal/domains/capacity/repository"
	capacityService "hemobook/internal/domains/capacity/service"
	donationRepository "hemobook/internal/domains/donation/repository"
	donationService "hemobook/internal/domains/donation/service"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	redis.NewReservationLocker,
	kafka.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	events.NewPublisher,
)

var capacityDomain = wire.NewSet(
	capacityRepository.New,
	capacityService.New,
)

var appointmentDomain = wire.NewSet(
	appointmentRepository.New,
	appointmentService.New,
)

var donationDomain = wire.NewSet(
	donationRepository.New,
	donationService.New,
)

var bloodRequestDomain = wire.NewSet(
	bloodRequestRepository.New,
	bloodRequestService.New,
)

var domains = wire.NewSet(
	capacityDomain,
	appointmentDomain,
	donationDomain,
	bloodRequestDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	capacityHandler.New,
	appointmentHandler.New,
	donationHandler.New,
	bloodRequestHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}

func InitializeSweeper() appointmentService.Appointment {
	wire.Build(
		configurations,
		infrastructures,
		sharedHelpers,
		appointmentDomain,
		capacityRepository.New,
	)

	return nil
}
