package router

import (
	"hemobook/internal/handlers/appointment"
	"hemobook/internal/handlers/bloodrequest"
	"hemobook/internal/handlers/capacity"
	"hemobook/internal/handlers/donation"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Capacity     capacity.Handler
	Appointment  appointment.Handler
	Donation     donation.Handler
	BloodRequest bloodrequest.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Capacity.Router(routerGroup)
		r.DomainHandlers.Appointment.Router(routerGroup)
		r.DomainHandlers.Donation.Router(routerGroup)
		r.DomainHandlers.BloodRequest.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
