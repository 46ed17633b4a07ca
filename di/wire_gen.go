// Code generated by Wire. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package di

import (
	"github.com/google/wire"
	"hemobook/config"
	"hemobook/infras/kafka"
	"hemobook/infras/otel"
	"hemobook/infras/postgres"
	"hemobook/infras/redis"
	repository2 "hemobook/internal/domains/appointment/repository"
	service2 "hemobook/internal/domains/appointment/service"
	repository4 "hemobook/internal/domains/bloodrequest/repository"
	service4 "hemobook/internal/domains/bloodrequest/service"
	"hemobook/internal/domains/capacity/repository"
	"hemobook/internal/domains/capacity/service"
	repository3 "hemobook/internal/domains/donation/repository"
	service3 "hemobook/internal/domains/donation/service"
	"hemobook/internal/events"
	"hemobook/internal/handlers/appointment"
	"hemobook/internal/handlers/bloodrequest"
	"hemobook/internal/handlers/capacity"
	"hemobook/internal/handlers/donation"
	"hemobook/shared/cache"
	"hemobook/transport/http"
	"hemobook/transport/http/middleware"
	"hemobook/transport/http/router"
)

// Injectors from wire.go:

func InitializeService() *http.HTTP {
	configConfig := config.Get()
	connection := postgres.New(configConfig)
	otelOtel := otel.New(configConfig)
	repositoryCapacity := repository.New(connection, otelOtel)
	client := redis.New(configConfig)
	redisCache := cache.NewRedisCache(client, otelOtel)
	serviceCapacity := service.New(repositoryCapacity, configConfig, redisCache, otelOtel)
	handler := capacity.New(serviceCapacity, otelOtel)
	repositoryAppointment := repository2.New(connection, otelOtel)
	reservationLocker := redis.NewReservationLocker(client, configConfig)
	kafkaClient := kafka.New(configConfig)
	publisher := events.NewPublisher(kafkaClient, configConfig, otelOtel)
	serviceAppointment := service2.New(repositoryAppointment, repositoryCapacity, configConfig, reservationLocker, publisher, otelOtel)
	appointmentHandler := appointment.New(serviceAppointment, otelOtel)
	repositoryDonation := repository3.New(connection, otelOtel)
	serviceDonation := service3.New(repositoryDonation, repositoryAppointment, publisher, otelOtel)
	donationHandler := donation.New(serviceDonation, otelOtel)
	bloodRequest := repository4.New(connection, otelOtel)
	serviceBloodRequest := service4.New(bloodRequest, serviceAppointment, configConfig, publisher, otelOtel)
	bloodrequestHandler := bloodrequest.New(serviceBloodRequest, otelOtel)
	domainHandlers := router.DomainHandlers{
		Capacity:     handler,
		Appointment:  appointmentHandler,
		Donation:     donationHandler,
		BloodRequest: bloodrequestHandler,
	}
	routerRouter := router.New(domainHandlers)
	appMiddleware := middleware.NewAppMiddleware(otelOtel, configConfig, redisCache)
	httpHTTP := http.New(configConfig, routerRouter, appMiddleware)
	return httpHTTP
}

func InitializeSweeper() service2.Appointment {
	configConfig := config.Get()
	connection := postgres.New(configConfig)
	otelOtel := otel.New(configConfig)
	repositoryAppointment := repository2.New(connection, otelOtel)
	repositoryCapacity := repository.New(connection, otelOtel)
	client := redis.New(configConfig)
	reservationLocker := redis.NewReservationLocker(client, configConfig)
	kafkaClient := kafka.New(configConfig)
	publisher := events.NewPublisher(kafkaClient, configConfig, otelOtel)
	serviceAppointment := service2.New(repositoryAppointment, repositoryCapacity, configConfig, reservationLocker, publisher, otelOtel)
	return serviceAppointment
}

// wire.go:

var configurations = wire.NewSet(config.Get)

var infrastructures = wire.NewSet(postgres.New, otel.New, redis.New, redis.NewReservationLocker, kafka.New)

var middlewares = wire.NewSet(middleware.NewAppMiddleware)

var sharedHelpers = wire.NewSet(cache.NewRedisCache, events.NewPublisher)

var capacityDomain = wire.NewSet(repository.New, service.New)

var appointmentDomain = wire.NewSet(repository2.New, service2.New)

var donationDomain = wire.NewSet(repository3.New, service3.New)

var bloodRequestDomain = wire.NewSet(repository4.New, service4.New)

var domains = wire.NewSet(
	capacityDomain,
	appointmentDomain,
	donationDomain,
	bloodRequestDomain,
)

var routing = wire.NewSet(wire.Struct(new(router.DomainHandlers), "*"), capacity.New, appointment.New, donation.New, bloodrequest.New, router.New)
