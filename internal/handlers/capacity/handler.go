package capacity

import (
	"net/http"
	"time"

	"hemobook/infras/otel"
	"hemobook/internal/domains/capacity/model/dto"
	"hemobook/internal/domains/capacity/service"
	"hemobook/shared/constant"
	"hemobook/shared/failure"
	"hemobook/shared/timezone"
	"hemobook/shared/validator"
	"hemobook/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

const (
	queryParamLocationID = "location_id"
	queryParamWeekStart  = "week_start"
)

type Handler struct {
	service service.Capacity
	otel    otel.Otel
}

func New(service service.Capacity, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/capacity-slots", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.DefineSlot)
		routerGroup.Get("/schedule", handler.GetWeekSchedule)
		routerGroup.Get("/grid", handler.GetWeekGrid)
		routerGroup.Get("/{id}", handler.GetSlotByID)
		routerGroup.Delete("/{id}", handler.DeactivateSlot)
	})
}

// DefineSlot handles the creation of a new capacity slot rule.
// @Summary Define a capacity slot
// @Description Define a recurring capacity slot for a donation location.
// @Tags Capacity
// @Accept json
// @Produce json
// @Param request body dto.DefineSlotRequest true "Define Slot Request"
// @Success 201 {object} response.Data[dto.SlotResponse] "Slot defined successfully"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/capacity-slots [post]
func (handler *Handler) DefineSlot(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DefineSlot")
	defer scope.End()

	req := dto.DefineSlotRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	slot, err := handler.service.DefineSlot(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to define capacity slot")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Capacity slot defined successfully by user " + user)

	response.WithJSON(w, http.StatusCreated, slot)
}

// GetWeekSchedule lists the slot rules covering one week for a location.
// @Summary Get week schedule
// @Description List capacity slot rules that cover the requested week for a location.
// @Tags Capacity
// @Accept json
// @Produce json
// @Param location_id query string true "Location ID"
// @Param week_start query string true "Week start date (YYYY-MM-DD, a Monday)"
// @Success 200 {object} response.Data[dto.WeekScheduleResponse] "Week schedule"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/capacity-slots/schedule [get]
func (handler *Handler) GetWeekSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetWeekSchedule")
	defer scope.End()

	locationID, weekStart, err := weekQuery(r)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse week schedule query")

		response.WithError(w, err)

		return
	}

	schedule, err := handler.service.ListWeek(ctx, locationID, weekStart)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get week schedule")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Week schedule retrieved successfully")

	response.WithJSON(w, http.StatusOK, schedule)
}

// GetWeekGrid resolves the bookable hour grid for one week at a location.
// @Summary Get week grid
// @Description Resolve the 7-day by hour-window availability grid for a location.
// @Tags Capacity
// @Accept json
// @Produce json
// @Param location_id query string true "Location ID"
// @Param week_start query string true "Week start date (YYYY-MM-DD, a Monday)"
// @Success 200 {object} response.Data[dto.GridResponse] "Availability grid"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/capacity-slots/grid [get]
func (handler *Handler) GetWeekGrid(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetWeekGrid")
	defer scope.End()

	locationID, weekStart, err := weekQuery(r)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse week grid query")

		response.WithError(w, err)

		return
	}

	grid, err := handler.service.ResolveGrid(ctx, locationID, weekStart, timezone.Now())
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to resolve week grid")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Week grid resolved successfully")

	response.WithJSON(w, http.StatusOK, grid)
}

// GetSlotByID retrieves a capacity slot by its ID.
// @Summary Get a capacity slot by ID
// @Description Retrieve a capacity slot by its unique identifier.
// @Tags Capacity
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} response.Data[dto.SlotResponse] "Slot details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/capacity-slots/{id} [get]
func (handler *Handler) GetSlotByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSlotByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	slot, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get capacity slot by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Capacity slot retrieved successfully")

	response.WithJSON(w, http.StatusOK, slot)
}

// DeactivateSlot retires a capacity slot without deleting its history.
// @Summary Deactivate a capacity slot
// @Description Deactivate a capacity slot so it stops accepting new appointments.
// @Tags Capacity
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} response.Message "Slot deactivated successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/capacity-slots/{id} [delete]
func (handler *Handler) DeactivateSlot(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeactivateSlot")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Deactivate(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to deactivate capacity slot")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Capacity slot deactivated successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Capacity slot deactivated successfully")
}

func weekQuery(r *http.Request) (locationID string, weekStart time.Time, err error) {
	locationID = r.URL.Query().Get(queryParamLocationID)
	if locationID == "" {
		return locationID, weekStart, failure.BadRequestFromString("location_id is required") // nolint:wrapcheck
	}

	rawWeekStart := r.URL.Query().Get(queryParamWeekStart)
	if rawWeekStart == "" {
		return locationID, weekStart, failure.BadRequestFromString("week_start is required") // nolint:wrapcheck
	}

	weekStart, err = timezone.Parse(constant.DateOnlyLayout, rawWeekStart)
	if err != nil {
		return locationID, weekStart, failure.BadRequestFromString("week_start must be formatted as YYYY-MM-DD") // nolint:wrapcheck
	}

	return locationID, weekStart, nil
}
