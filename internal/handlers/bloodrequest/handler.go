package bloodrequest

import (
	"net/http"

	"hemobook/infras/otel"
	"hemobook/internal/domains/bloodrequest/model/dto"
	"hemobook/internal/domains/bloodrequest/service"
	"hemobook/shared/constant"
	"hemobook/shared/validator"
	"hemobook/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.BloodRequest
	otel    otel.Otel
}

func New(service service.BloodRequest, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/blood-requests", func(routerGroup chi.Router) {
		routerGroup.Get("/{id}", handler.GetBloodRequestByID)
		routerGroup.Post("/{id}/assign-donors", handler.AssignDonors)
	})
}

// GetBloodRequestByID retrieves a blood request by its ID.
// @Summary Get a blood request by ID
// @Description Retrieve a blood request by its unique identifier.
// @Tags BloodRequest
// @Accept json
// @Produce json
// @Param id path string true "Blood Request ID"
// @Success 200 {object} response.Data[dto.BloodRequestResponse] "Blood request details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/blood-requests/{id} [get]
func (handler *Handler) GetBloodRequestByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBloodRequestByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	bloodRequest, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get blood request by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Blood request retrieved successfully")

	response.WithJSON(w, http.StatusOK, bloodRequest)
}

// AssignDonors books staff assignments for a batch of donors.
// @Summary Assign donors to a blood request
// @Description Book one staff-assigned appointment per donor against a capacity slot. Partial success is reported per donor.
// @Tags BloodRequest
// @Accept json
// @Produce json
// @Param id path string true "Blood Request ID"
// @Param request body dto.AssignDonorsRequest true "Assign Donors Request"
// @Success 200 {object} response.Data[dto.AssignDonorsResponse] "Assignment results"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/blood-requests/{id}/assign-donors [post]
func (handler *Handler) AssignDonors(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".AssignDonors")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.AssignDonorsRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	result, err := handler.service.AssignDonors(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to assign donors")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Donors assigned successfully by user " + user)

	response.WithJSON(w, http.StatusOK, result)
}
