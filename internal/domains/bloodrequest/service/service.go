package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"hemobook/config"
	"hemobook/infras/otel"
	appointmentModel "hemobook/internal/domains/appointment/model"
	appointmentDto "hemobook/internal/domains/appointment/model/dto"
	appointmentService "hemobook/internal/domains/appointment/service"
	"hemobook/internal/domains/bloodrequest/model"
	"hemobook/internal/domains/bloodrequest/model/dto"
	"hemobook/internal/domains/bloodrequest/repository"
	"hemobook/internal/events"
	"hemobook/shared"
	"hemobook/shared/constant"
	"hemobook/shared/failure"
	"hemobook/shared/timezone"
)

type BloodRequest interface {
	Get(ctx context.Context, id string) (dto.BloodRequestResponse, error)
	AssignDonors(ctx context.Context, requestID string, req dto.AssignDonorsRequest) (dto.AssignDonorsResponse, error)
}

type serviceImpl struct {
	repo         repository.BloodRequest
	appointments appointmentService.Appointment
	cfg          *config.Config
	events       events.Publisher
	otel         otel.Otel
}

func New(
	repo repository.BloodRequest,
	appointments appointmentService.Appointment,
	cfg *config.Config,
	publisher events.Publisher,
	otel otel.Otel,
) BloodRequest {
	return &serviceImpl{
		repo:         repo,
		appointments: appointments,
		cfg:          cfg,
		events:       publisher,
		otel:         otel,
	}
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BloodRequestResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".BloodRequestGet")
	defer scope.End()
	defer scope.TraceIfError(err)

	request, err := s.bloodRequest(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(request)

	return res, nil
}

// AssignDonors books one staff assignment per donor against the chosen slot.
// Donors are processed independently: one donor's failure never aborts the
// rest. With at least one success the request rolls up to processing; with
// none it is left untouched and a single aggregated error is returned.
func (s *serviceImpl) AssignDonors(ctx context.Context, requestID string, req dto.AssignDonorsRequest) (res dto.AssignDonorsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".BloodRequestAssignDonors")
	defer scope.End()
	defer scope.TraceIfError(err)

	request, err := s.bloodRequest(ctx, requestID)
	if err != nil {
		return res, err
	}

	expireHours := s.cfg.Scheduling.RegularExpireHours
	if request.Urgency == model.UrgencyEmergency {
		expireHours = s.cfg.Scheduling.EmergencyExpireHours
	}

	res.BloodRequestID = request.ID
	res.RequestStatus = string(request.Status)
	res.Successes = make([]appointmentDto.AppointmentResponse, 0, len(req.DonorIDs))
	res.Failures = make([]dto.AssignmentFailure, 0)

	for _, donorID := range req.DonorIDs {
		create := appointmentDto.CreateAppointmentRequest{
			DonorID:               donorID,
			LocationID:            req.LocationID,
			BloodGroupID:          request.BloodGroupID,
			ComponentTypeID:       request.ComponentTypeID,
			CapacitySlotID:        req.CapacitySlotID,
			PreferredDate:         req.PreferredDate,
			RequestType:           string(appointmentModel.RequestTypeStaffAssignment),
			IsUrgent:              request.Urgency.IsUrgentTier(),
			Priority:              req.Priority,
			RelatedBloodRequestID: &request.ID,
			AutoExpireHours:       &expireHours,
		}

		appointment, createErr := s.appointments.Create(ctx, create)
		if createErr != nil {
			log.Warn().Err(createErr).
				Str("bloodRequestID", request.ID).
				Str("donorID", donorID).
				Msg("donor assignment failed")

			res.Failures = append(res.Failures, dto.AssignmentFailure{
				DonorID: donorID,
				Error:   createErr.Error(),
				Kind:    failure.GetKind(createErr),
			})

			continue
		}

		res.Successes = append(res.Successes, appointment)
	}

	if len(res.Successes) == 0 {
		return res, failure.BadRequestFromString(fmt.Sprintf("all %d donor assignments failed", len(res.Failures))) // nolint:wrapcheck
	}

	if err = s.markProcessing(ctx, request, len(res.Successes)); err != nil {
		return res, err
	}

	res.RequestStatus = string(model.StatusProcessing)

	return res, nil
}

func (s *serviceImpl) bloodRequest(ctx context.Context, id string) (model.BloodRequest, error) {
	request, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to get blood request")

		return request, fmt.Errorf("failed to get blood request: %w", err)
	}

	if request.ID == constant.Empty {
		return request, failure.NotFound("blood request not found") // nolint:wrapcheck
	}

	return request, nil
}

func (s *serviceImpl) markProcessing(ctx context.Context, request model.BloodRequest, assigned int) error {
	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	now := timezone.Now()
	note := fmt.Sprintf("assigned %d donor(s)", assigned)

	updatedFields := map[string]any{
		model.FieldStatus:        model.StatusProcessing,
		model.FieldNotes:         note,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: user,
	}

	err := s.repo.Update(ctx, updatedFields, shared.FilterByID(request.ID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("id", request.ID).Msg("failed to advance blood request to processing")

		return fmt.Errorf("failed to advance blood request to processing: %w", err)
	}

	statusEvent := events.BloodRequestStatusEvent{
		BloodRequestID: request.ID,
		Status:         string(model.StatusProcessing),
		Note:           note,
	}

	go s.events.BloodRequestStatusChanged(context.WithoutCancel(ctx), statusEvent)

	return nil
}
