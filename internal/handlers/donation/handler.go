package donation

import (
	"net/http"

	"hemobook/infras/otel"
	"hemobook/internal/domains/donation/model/dto"
	"hemobook/internal/domains/donation/service"
	"hemobook/shared/constant"
	"hemobook/shared/validator"
	"hemobook/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

const requestParamAppointmentID = "appointmentID"

type Handler struct {
	service service.Donation
	otel    otel.Otel
}

func New(service service.Donation, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/donations", func(routerGroup chi.Router) {
		routerGroup.Get("/{id}", handler.GetDonationByID)
		routerGroup.Get("/by-appointment/{appointmentID}", handler.GetDonationByAppointment)
		routerGroup.Post("/{id}/health-check", handler.RecordHealthCheck)
		routerGroup.Post("/{id}/start", handler.StartDonation)
		routerGroup.Post("/{id}/complete", handler.CompleteDonation)
		routerGroup.Post("/{id}/complication", handler.RecordComplication)
	})
}

// GetDonationByID retrieves a donation event by its ID.
// @Summary Get a donation event by ID
// @Description Retrieve a donation event by its unique identifier.
// @Tags Donation
// @Accept json
// @Produce json
// @Param id path string true "Donation Event ID"
// @Success 200 {object} response.Data[dto.DonationEventResponse] "Donation event details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/donations/{id} [get]
func (handler *Handler) GetDonationByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetDonationByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	donation, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get donation event by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Donation event retrieved successfully")

	response.WithJSON(w, http.StatusOK, donation)
}

// GetDonationByAppointment retrieves the donation event opened for an appointment.
// @Summary Get a donation event by appointment
// @Description Retrieve the donation event created when the given appointment was checked in.
// @Tags Donation
// @Accept json
// @Produce json
// @Param appointmentID path string true "Appointment ID"
// @Success 200 {object} response.Data[dto.DonationEventResponse] "Donation event details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/donations/by-appointment/{appointmentID} [get]
func (handler *Handler) GetDonationByAppointment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetDonationByAppointment")
	defer scope.End()

	appointmentID := chi.URLParam(r, requestParamAppointmentID)

	donation, err := handler.service.GetByAppointment(ctx, appointmentID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get donation event by appointment")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Donation event retrieved successfully")

	response.WithJSON(w, http.StatusOK, donation)
}

// RecordHealthCheck records pre-donation screening results.
// @Summary Record a health check
// @Description Record screening results, passing or rejecting the donation event.
// @Tags Donation
// @Accept json
// @Produce json
// @Param id path string true "Donation Event ID"
// @Param request body dto.HealthCheckRequest true "Health Check Request"
// @Success 200 {object} response.Data[dto.DonationEventResponse] "Health check recorded successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/donations/{id}/health-check [post]
func (handler *Handler) RecordHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RecordHealthCheck")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.HealthCheckRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	donation, err := handler.service.RecordHealthCheck(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to record health check")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Health check recorded successfully by user " + user)

	response.WithJSON(w, http.StatusOK, donation)
}

// StartDonation marks a screened donation event as in progress.
// @Summary Start a donation
// @Description Move a donation event that passed screening into progress.
// @Tags Donation
// @Accept json
// @Produce json
// @Param id path string true "Donation Event ID"
// @Param request body dto.StartDonationRequest true "Start Donation Request"
// @Success 200 {object} response.Data[dto.DonationEventResponse] "Donation started successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/donations/{id}/start [post]
func (handler *Handler) StartDonation(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".StartDonation")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.StartDonationRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	donation, err := handler.service.StartDonation(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to start donation")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Donation started successfully by user " + user)

	response.WithJSON(w, http.StatusOK, donation)
}

// CompleteDonation closes a donation event with its collection results.
// @Summary Complete a donation
// @Description Record collection results and close both the donation event and its appointment.
// @Tags Donation
// @Accept json
// @Produce json
// @Param id path string true "Donation Event ID"
// @Param request body dto.CompleteDonationRequest true "Complete Donation Request"
// @Success 200 {object} response.Data[dto.DonationEventResponse] "Donation completed successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/donations/{id}/complete [post]
func (handler *Handler) CompleteDonation(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CompleteDonation")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.CompleteDonationRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	donation, err := handler.service.CompleteDonation(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to complete donation")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Donation completed successfully by user " + user)

	response.WithJSON(w, http.StatusOK, donation)
}

// RecordComplication closes a donation event that ended with a complication.
// @Summary Record a complication
// @Description Record a donation complication, failing the event and its appointment.
// @Tags Donation
// @Accept json
// @Produce json
// @Param id path string true "Donation Event ID"
// @Param request body dto.ComplicationRequest true "Complication Request"
// @Success 200 {object} response.Data[dto.DonationEventResponse] "Complication recorded successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/donations/{id}/complication [post]
func (handler *Handler) RecordComplication(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RecordComplication")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.ComplicationRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	donation, err := handler.service.RecordComplication(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to record complication")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Complication recorded successfully by user " + user)

	response.WithJSON(w, http.StatusOK, donation)
}
