package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"hemobook/infras/otel"
	appointmentModel "hemobook/internal/domains/appointment/model"
	appointmentRepo "hemobook/internal/domains/appointment/repository"
	"hemobook/internal/domains/donation/model"
	"hemobook/internal/domains/donation/model/dto"
	"hemobook/internal/domains/donation/repository"
	"hemobook/internal/events"
	"hemobook/shared"
	"hemobook/shared/constant"
	"hemobook/shared/failure"
	"hemobook/shared/timezone"
)

type Donation interface {
	Get(ctx context.Context, id string) (dto.DonationEventResponse, error)
	GetByAppointment(ctx context.Context, appointmentID string) (dto.DonationEventResponse, error)
	RecordHealthCheck(ctx context.Context, id string, req dto.HealthCheckRequest) (dto.DonationEventResponse, error)
	StartDonation(ctx context.Context, id string, req dto.StartDonationRequest) (dto.DonationEventResponse, error)
	CompleteDonation(ctx context.Context, id string, req dto.CompleteDonationRequest) (dto.DonationEventResponse, error)
	RecordComplication(ctx context.Context, id string, req dto.ComplicationRequest) (dto.DonationEventResponse, error)
}

type serviceImpl struct {
	repo         repository.Donation
	appointments appointmentRepo.Appointment
	events       events.Publisher
	otel         otel.Otel
}

func New(repo repository.Donation, appointments appointmentRepo.Appointment, publisher events.Publisher, otel otel.Otel) Donation {
	return &serviceImpl{
		repo:         repo,
		appointments: appointments,
		events:       publisher,
		otel:         otel,
	}
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.DonationEventResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".DonationGet")
	defer scope.End()
	defer scope.TraceIfError(err)

	event, err := s.event(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(event)

	return res, nil
}

func (s *serviceImpl) GetByAppointment(ctx context.Context, appointmentID string) (res dto.DonationEventResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".DonationGetByAppointment")
	defer scope.End()
	defer scope.TraceIfError(err)

	event, err := s.repo.Get(ctx, shared.FilterByID(appointmentID, model.FieldAppointmentRequestID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("appointmentID", appointmentID).Msg("failed to get donation event")

		return res, fmt.Errorf("failed to get donation event: %w", err)
	}

	if event.ID == constant.Empty {
		return res, failure.NotFound("donation event not found") // nolint:wrapcheck
	}

	res.FromModel(event)

	return res, nil
}

// RecordHealthCheck stores the screening outcome. An ineligible donor closes
// both the event and its parent appointment in one transaction; there is no
// separate reject step afterwards.
func (s *serviceImpl) RecordHealthCheck(ctx context.Context, id string, req dto.HealthCheckRequest) (res dto.DonationEventResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".DonationRecordHealthCheck")
	defer scope.End()
	defer scope.TraceIfError(err)

	eligible := *req.IsEligible
	if !eligible && (req.RejectionReason == nil || *req.RejectionReason == constant.Empty) {
		return res, failure.BadRequestFromString("rejection_reason is mandatory for an ineligible donor") // nolint:wrapcheck
	}

	target := model.StatusHealthCheckPassed
	if !eligible {
		target = model.StatusRejected
	}

	event, err := s.transitionable(ctx, id, target)
	if err != nil {
		return res, err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	now := timezone.Now()

	eventFields := map[string]any{
		model.FieldStatus:               target,
		model.FieldVerifiedBloodGroupID: req.VerifiedBloodGroupID,
		model.FieldIsEligible:           eligible,
		model.FieldHealthCheckAt:        now,
		constant.FieldModifiedAt:        now,
		constant.FieldModifiedBy:        user,
	}

	putVital(eventFields, model.FieldBloodPressure, req.BloodPressure)
	putVital(eventFields, model.FieldTemperature, req.Temperature)
	putVital(eventFields, model.FieldHemoglobinLevel, req.HemoglobinLevel)
	putVital(eventFields, model.FieldWeight, req.Weight)
	putVital(eventFields, model.FieldHeight, req.Height)

	if eligible {
		return s.applyEventUpdate(ctx, event, eventFields)
	}

	eventFields[model.FieldRejectionReason] = *req.RejectionReason

	appointmentFields := map[string]any{
		appointmentModel.FieldStatus:          appointmentModel.StatusFailed,
		appointmentModel.FieldRejectionReason: *req.RejectionReason,
		constant.FieldModifiedAt:              now,
		constant.FieldModifiedBy:              user,
	}

	return s.applyTerminalUpdate(ctx, event, eventFields, appointmentFields)
}

func (s *serviceImpl) StartDonation(ctx context.Context, id string, req dto.StartDonationRequest) (res dto.DonationEventResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".DonationStart")
	defer scope.End()
	defer scope.TraceIfError(err)

	event, err := s.transitionable(ctx, id, model.StatusInProgress)
	if err != nil {
		return res, err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	now := timezone.Now()

	eventFields := map[string]any{
		model.FieldStatus:        model.StatusInProgress,
		model.FieldStartedAt:     now,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: user,
	}

	if req.Notes != nil {
		eventFields[model.FieldNotes] = *req.Notes
	}

	return s.applyEventUpdate(ctx, event, eventFields)
}

// CompleteDonation closes the event and its parent appointment together and
// hands the collected units off to inventory.
func (s *serviceImpl) CompleteDonation(ctx context.Context, id string, req dto.CompleteDonationRequest) (res dto.DonationEventResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".DonationComplete")
	defer scope.End()
	defer scope.TraceIfError(err)

	event, err := s.transitionable(ctx, id, model.StatusCompleted)
	if err != nil {
		return res, err
	}

	donationDate, err := timezone.Parse(constant.DateOnlyLayout, req.DonationDate)
	if err != nil {
		return res, failure.BadRequestFromString(fmt.Sprintf("invalid donation date: %v", err)) // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	now := timezone.Now()

	// quantity_units is staff-declared, never recomputed from the donated
	// volume.
	eventFields := map[string]any{
		model.FieldStatus:          model.StatusCompleted,
		model.FieldDonationDate:    donationDate,
		model.FieldQuantityDonated: req.QuantityDonated,
		model.FieldQuantityUnits:   req.QuantityUnits,
		constant.FieldModifiedAt:   now,
		constant.FieldModifiedBy:   user,
	}

	if req.Notes != nil {
		eventFields[model.FieldNotes] = *req.Notes
	}

	appointmentFields := map[string]any{
		appointmentModel.FieldStatus: appointmentModel.StatusCompleted,
		constant.FieldModifiedAt:     now,
		constant.FieldModifiedBy:     user,
	}

	res, err = s.applyTerminalUpdate(ctx, event, eventFields, appointmentFields)
	if err != nil {
		return res, err
	}

	s.publishUnitsCollected(ctx, event, req.QuantityDonated, req.QuantityUnits)

	return res, nil
}

// RecordComplication is the alternate terminal step from in_progress. Any
// usable yield is still offered to inventory.
func (s *serviceImpl) RecordComplication(ctx context.Context, id string, req dto.ComplicationRequest) (res dto.DonationEventResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".DonationRecordComplication")
	defer scope.End()
	defer scope.TraceIfError(err)

	event, err := s.transitionable(ctx, id, model.StatusFailed)
	if err != nil {
		return res, err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	now := timezone.Now()

	eventFields := map[string]any{
		model.FieldStatus:           model.StatusFailed,
		model.FieldComplicationType: req.ComplicationType,
		model.FieldComplicationDesc: req.Description,
		model.FieldQuantityDonated:  req.CollectedAmount,
		model.FieldQuantityUnits:    req.QuantityUnits,
		model.FieldIsUsable:         *req.IsUsable,
		model.FieldActionTaken:      req.ActionTaken,
		constant.FieldModifiedAt:    now,
		constant.FieldModifiedBy:    user,
	}

	appointmentFields := map[string]any{
		appointmentModel.FieldStatus: appointmentModel.StatusFailed,
		constant.FieldModifiedAt:     now,
		constant.FieldModifiedBy:     user,
	}

	res, err = s.applyTerminalUpdate(ctx, event, eventFields, appointmentFields)
	if err != nil {
		return res, err
	}

	if *req.IsUsable && req.CollectedAmount > 0 {
		s.publishUnitsCollected(ctx, event, req.CollectedAmount, req.QuantityUnits)
	}

	return res, nil
}

func (s *serviceImpl) event(ctx context.Context, id string) (model.DonationEvent, error) {
	event, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to get donation event")

		return event, fmt.Errorf("failed to get donation event: %w", err)
	}

	if event.ID == constant.Empty {
		return event, failure.NotFound("donation event not found") // nolint:wrapcheck
	}

	return event, nil
}

func (s *serviceImpl) transitionable(ctx context.Context, id string, target model.Status) (model.DonationEvent, error) {
	event, err := s.event(ctx, id)
	if err != nil {
		return event, err
	}

	if !event.Status.CanTransitionTo(target) {
		return event, failure.InvalidTransition(model.EntityName, string(event.Status), string(target)) // nolint:wrapcheck
	}

	return event, nil
}

func (s *serviceImpl) applyEventUpdate(ctx context.Context, event model.DonationEvent, eventFields map[string]any) (res dto.DonationEventResponse, err error) {
	err = s.repo.Update(ctx, eventFields, shared.FilterByID(event.ID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("id", event.ID).Msg("failed to update donation event")

		return res, fmt.Errorf("failed to update donation event: %w", err)
	}

	applyEventFields(&event, eventFields)
	res.FromModel(event)

	return res, nil
}

func (s *serviceImpl) applyTerminalUpdate(ctx context.Context, event model.DonationEvent, eventFields, appointmentFields map[string]any) (res dto.DonationEventResponse, err error) {
	err = s.repo.UpdateWithAppointment(
		ctx,
		eventFields,
		shared.FilterByID(event.ID, model.FieldID, model.TableName),
		appointmentFields,
		shared.FilterByID(event.AppointmentRequestID, appointmentModel.FieldID, appointmentModel.TableName),
	)
	if err != nil {
		log.Error().Err(err).Str("id", event.ID).Msg("failed to close donation event")

		return res, fmt.Errorf("failed to close donation event: %w", err)
	}

	applyEventFields(&event, eventFields)
	res.FromModel(event)

	return res, nil
}

// publishUnitsCollected resolves the blood group and component from the
// parent appointment, preferring the verified blood group from screening.
func (s *serviceImpl) publishUnitsCollected(ctx context.Context, event model.DonationEvent, quantityDonated float64, quantityUnits int) {
	appointment, err := s.appointments.Get(ctx, shared.FilterByID(event.AppointmentRequestID, appointmentModel.FieldID, appointmentModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("appointmentID", event.AppointmentRequestID).Msg("failed to resolve appointment for units-collected event")

		return
	}

	bloodGroupID := appointment.BloodGroupID
	if event.VerifiedBloodGroupID != nil && *event.VerifiedBloodGroupID != constant.Empty {
		bloodGroupID = *event.VerifiedBloodGroupID
	}

	collected := events.UnitsCollectedEvent{
		DonationEventID: event.ID,
		DonorID:         event.DonorID,
		BloodGroupID:    bloodGroupID,
		ComponentTypeID: appointment.ComponentTypeID,
		QuantityDonated: quantityDonated,
		QuantityUnits:   quantityUnits,
	}

	go s.events.UnitsCollected(context.WithoutCancel(ctx), collected)
}

func putVital[T any](fields map[string]any, column string, value *T) {
	if value != nil {
		fields[column] = *value
	}
}

func applyEventFields(event *model.DonationEvent, fields map[string]any) {
	for column, value := range fields {
		switch column {
		case model.FieldStatus:
			event.Status, _ = value.(model.Status)
		case model.FieldBloodPressure:
			setPtr(&event.BloodPressure, value)
		case model.FieldTemperature:
			setPtr(&event.Temperature, value)
		case model.FieldHemoglobinLevel:
			setPtr(&event.HemoglobinLevel, value)
		case model.FieldWeight:
			setPtr(&event.Weight, value)
		case model.FieldHeight:
			setPtr(&event.Height, value)
		case model.FieldVerifiedBloodGroupID:
			setPtr(&event.VerifiedBloodGroupID, value)
		case model.FieldIsEligible:
			setPtr(&event.IsEligible, value)
		case model.FieldRejectionReason:
			setPtr(&event.RejectionReason, value)
		case model.FieldHealthCheckAt:
			setPtr(&event.HealthCheckAt, value)
		case model.FieldStartedAt:
			setPtr(&event.StartedAt, value)
		case model.FieldDonationDate:
			setPtr(&event.DonationDate, value)
		case model.FieldQuantityDonated:
			setPtr(&event.QuantityDonated, value)
		case model.FieldQuantityUnits:
			setPtr(&event.QuantityUnits, value)
		case model.FieldComplicationType:
			setPtr(&event.ComplicationType, value)
		case model.FieldComplicationDesc:
			setPtr(&event.ComplicationDesc, value)
		case model.FieldIsUsable:
			setPtr(&event.IsUsable, value)
		case model.FieldActionTaken:
			setPtr(&event.ActionTaken, value)
		case model.FieldNotes:
			setPtr(&event.Notes, value)
		case constant.FieldModifiedAt:
			if v, ok := value.(time.Time); ok {
				event.ModifiedAt = v
			}
		case constant.FieldModifiedBy:
			if v, ok := value.(string); ok {
				event.ModifiedBy = v
			}
		}
	}
}

func setPtr[T any](dst **T, value any) {
	if v, ok := value.(T); ok {
		*dst = &v
	}
}
