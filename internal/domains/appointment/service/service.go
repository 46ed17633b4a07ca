package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hemobook/config"
	"hemobook/infras/otel"
	"hemobook/infras/redis"
	"hemobook/internal/domains/appointment/model"
	"hemobook/internal/domains/appointment/model/dto"
	"hemobook/internal/domains/appointment/repository"
	capacityModel "hemobook/internal/domains/capacity/model"
	capacityRepo "hemobook/internal/domains/capacity/repository"
	donationModel "hemobook/internal/domains/donation/model"
	"hemobook/internal/events"
	"hemobook/shared"
	"hemobook/shared/constant"
	gDto "hemobook/shared/dto"
	"hemobook/shared/failure"
	gModel "hemobook/shared/model"
	"hemobook/shared/timezone"
)

type Appointment interface {
	Create(ctx context.Context, req dto.CreateAppointmentRequest) (dto.AppointmentResponse, error)
	Approve(ctx context.Context, id string, req dto.ApproveAppointmentRequest) (dto.AppointmentResponse, error)
	Reject(ctx context.Context, id string, req dto.RejectAppointmentRequest) (dto.AppointmentResponse, error)
	Cancel(ctx context.Context, id string, req dto.CancelAppointmentRequest) (dto.AppointmentResponse, error)
	CheckIn(ctx context.Context, id string) (dto.AppointmentResponse, error)
	DonorRespond(ctx context.Context, id string, req dto.DonorRespondRequest) (dto.AppointmentResponse, error)
	Get(ctx context.Context, id string) (dto.AppointmentResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetAppointmentsResponse, error)
	ExpireStale(ctx context.Context) (int, error)
}

type serviceImpl struct {
	repo     repository.Appointment
	capacity capacityRepo.Capacity
	cfg      *config.Config
	locker   redis.ReservationLocker
	events   events.Publisher
	otel     otel.Otel
}

func New(
	repo repository.Appointment,
	capacity capacityRepo.Capacity,
	cfg *config.Config,
	locker redis.ReservationLocker,
	publisher events.Publisher,
	otel otel.Otel,
) Appointment {
	return &serviceImpl{
		repo:     repo,
		capacity: capacity,
		cfg:      cfg,
		locker:   locker,
		events:   publisher,
		otel:     otel,
	}
}

// Create books an appointment against a concrete (slot, date). The capacity
// check and the insert run inside the per-(slot, date) reservation lock so
// concurrent requests can never overshoot the slot's total capacity.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateAppointmentRequest) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AppointmentCreate")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	slot, err := s.bookableSlot(ctx, req.CapacitySlotID, req.PreferredDate)
	if err != nil {
		return res, err
	}

	appointment, err := req.ToModel(user, string(slot.TimeSlot))
	if err != nil {
		return res, failure.BadRequestFromString(fmt.Sprintf("invalid preferred date: %v", err)) // nolint:wrapcheck
	}

	err = s.reserve(ctx, slot, appointment)
	if err != nil {
		return res, err
	}

	if appointment.IsUrgent {
		s.publishUrgentAssignment(ctx, appointment)
	}

	res.FromModel(appointment)

	return res, nil
}

func (s *serviceImpl) Approve(ctx context.Context, id string, req dto.ApproveAppointmentRequest) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AppointmentApprove")
	defer scope.End()
	defer scope.TraceIfError(err)

	appointment, err := s.actionable(ctx, id, model.StatusApproved)
	if err != nil {
		return res, err
	}

	if appointment.RequestType == model.RequestTypeStaffAssignment &&
		(appointment.DonorAccepted == nil || !*appointment.DonorAccepted) {
		return res, failure.BadRequestFromString("donor has not accepted this assignment yet") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	now := timezone.Now()

	updatedFields := map[string]any{
		model.FieldStatus:              model.StatusApproved,
		model.FieldReviewedByUserID:    user,
		model.FieldReviewedAt:          now,
		model.FieldConfirmedDate:       appointment.PreferredDate,
		model.FieldConfirmedLocationID: appointment.LocationID,
		constant.FieldModifiedAt:       now,
		constant.FieldModifiedBy:       user,
	}

	if req.Note != nil {
		updatedFields[model.FieldReviewNote] = *req.Note
	}

	return s.applyTransition(ctx, appointment, updatedFields)
}

func (s *serviceImpl) Reject(ctx context.Context, id string, req dto.RejectAppointmentRequest) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AppointmentReject")
	defer scope.End()
	defer scope.TraceIfError(err)

	appointment, err := s.actionable(ctx, id, model.StatusRejected)
	if err != nil {
		return res, err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	now := timezone.Now()

	updatedFields := map[string]any{
		model.FieldStatus:           model.StatusRejected,
		model.FieldRejectionReason:  req.Reason,
		model.FieldReviewedByUserID: user,
		model.FieldReviewedAt:       now,
		constant.FieldModifiedAt:    now,
		constant.FieldModifiedBy:    user,
	}

	return s.applyTransition(ctx, appointment, updatedFields)
}

func (s *serviceImpl) Cancel(ctx context.Context, id string, req dto.CancelAppointmentRequest) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AppointmentCancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	appointment, err := s.actionable(ctx, id, model.StatusCancelled)
	if err != nil {
		return res, err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	now := timezone.Now()

	updatedFields := map[string]any{
		model.FieldStatus:             model.StatusCancelled,
		model.FieldCancellationReason: req.Reason,
		constant.FieldModifiedAt:      now,
		constant.FieldModifiedBy:      user,
	}

	return s.applyTransition(ctx, appointment, updatedFields)
}

// CheckIn moves an approved appointment to checked_in and creates its pending
// donation event in the same transaction.
func (s *serviceImpl) CheckIn(ctx context.Context, id string) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AppointmentCheckIn")
	defer scope.End()
	defer scope.TraceIfError(err)

	appointment, err := s.actionable(ctx, id, model.StatusCheckedIn)
	if err != nil {
		return res, err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	now := timezone.Now()

	updatedFields := map[string]any{
		model.FieldStatus:        model.StatusCheckedIn,
		model.FieldCheckedInAt:   now,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: user,
	}

	event := donationModel.DonationEvent{
		ID:                   uuid.NewString(),
		AppointmentRequestID: appointment.ID,
		DonorID:              appointment.DonorID,
		Status:               donationModel.StatusPending,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}

	err = s.repo.UpdateWithEvent(ctx, updatedFields, shared.FilterByID(id, model.FieldID, model.TableName), event)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to check in appointment")

		return res, fmt.Errorf("failed to check in appointment: %w", err)
	}

	applyFields(&appointment, updatedFields)
	res.FromModel(appointment)

	return res, nil
}

// DonorRespond answers the donor-response gate of a staff assignment. A
// decline behaves like a rejection with a fixed reason.
func (s *serviceImpl) DonorRespond(ctx context.Context, id string, req dto.DonorRespondRequest) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AppointmentDonorRespond")
	defer scope.End()
	defer scope.TraceIfError(err)

	appointment, err := s.freshAppointment(ctx, id)
	if err != nil {
		return res, err
	}

	if !appointment.AwaitingDonorResponse() {
		if appointment.RequestType != model.RequestTypeStaffAssignment {
			return res, failure.BadRequestFromString("only staff assignments take a donor response") // nolint:wrapcheck
		}

		return res, failure.InvalidTransition(model.EntityName, string(appointment.Status), "donor response") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	now := timezone.Now()

	updatedFields := map[string]any{
		model.FieldDonorAccepted: *req.Accepted,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: user,
	}

	if req.Notes != nil {
		updatedFields[model.FieldDonorResponseNotes] = *req.Notes
	}

	if !*req.Accepted {
		updatedFields[model.FieldStatus] = model.StatusRejected
		updatedFields[model.FieldRejectionReason] = model.DonorDeclinedReason
	}

	return s.applyTransition(ctx, appointment, updatedFields)
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AppointmentGet")
	defer scope.End()
	defer scope.TraceIfError(err)

	appointment, err := s.freshAppointment(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(appointment)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetAppointmentsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AppointmentGetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count appointments")

		return res, fmt.Errorf("failed to count appointments: %w", err)
	}

	appointments, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list appointments")

		return res, fmt.Errorf("failed to list appointments: %w", err)
	}

	now := timezone.Now()

	res.Appointments = make([]dto.AppointmentResponse, len(appointments))
	for i, appointment := range appointments {
		// Stale requests read as expired immediately. The sweeper persists
		// the flip.
		if appointment.IsStale(now) {
			appointment.Status = model.StatusExpired
		}

		res.Appointments[i].FromModel(appointment)
	}

	res.TotalData = total
	res.TotalPage = shared.CalculateTotalPage(total, params.Limit)

	return res, nil
}

// ExpireStale flips every pending request past its deadline to expired and
// returns how many were flipped.
func (s *serviceImpl) ExpireStale(ctx context.Context) (expired int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AppointmentExpireStale")
	defer scope.End()
	defer scope.TraceIfError(err)

	now := timezone.Now()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldStatus,
				Operator: gDto.FilterOperatorEq,
				Value:    model.StatusPending,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldExpiresAt,
				Operator: gDto.FilterOperatorLessEq,
				Value:    now,
				Table:    model.TableName,
			},
		},
	}

	expired, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count stale appointments")

		return 0, fmt.Errorf("failed to count stale appointments: %w", err)
	}

	if expired == 0 {
		return 0, nil
	}

	updatedFields := map[string]any{
		model.FieldStatus:        model.StatusExpired,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: constant.SweeperActor,
	}

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to expire stale appointments")

		return 0, fmt.Errorf("failed to expire stale appointments: %w", err)
	}

	return expired, nil
}

// bookableSlot loads a slot and verifies it can take a booking on the given
// date: active, date inside its range on its own weekday, start hour not past.
func (s *serviceImpl) bookableSlot(ctx context.Context, slotID, preferredDate string) (capacityModel.CapacitySlot, error) {
	slot, err := s.capacity.Get(ctx, shared.FilterByID(slotID, capacityModel.FieldID, capacityModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("slotID", slotID).Msg("failed to get capacity slot")

		return slot, fmt.Errorf("failed to get capacity slot: %w", err)
	}

	if slot.ID == constant.Empty {
		return slot, failure.NotFound("capacity slot not found") // nolint:wrapcheck
	}

	if !slot.IsActive {
		return slot, failure.SlotUnavailable("capacity slot has been deactivated") // nolint:wrapcheck
	}

	date, err := timezone.Parse(constant.DateOnlyLayout, preferredDate)
	if err != nil {
		return slot, failure.BadRequestFromString(fmt.Sprintf("invalid preferred date: %v", err)) // nolint:wrapcheck
	}

	if !slot.CoversDate(date) {
		return slot, failure.SlotUnavailable("capacity slot does not cover the preferred date") // nolint:wrapcheck
	}

	if slot.StartTimeOn(date, timezone.GetLocation()).Before(timezone.Now()) {
		return slot, failure.BadRequestFromString("preferred date and hour window are in the past") // nolint:wrapcheck
	}

	return slot, nil
}

// reserve runs count-then-insert under the reservation lock. Lock contention
// is retried a bounded number of times, then reported as exhausted capacity.
func (s *serviceImpl) reserve(ctx context.Context, slot capacityModel.CapacitySlot, appointment model.AppointmentRequest) error {
	reservation := func(ctx context.Context) error {
		count, err := s.repo.Count(ctx, activeReservationFilter(slot.ID, appointment.PreferredDate))
		if err != nil {
			log.Error().Err(err).Msg("failed to count slot reservations")

			return fmt.Errorf("failed to count slot reservations: %w", err)
		}

		if count >= slot.TotalCapacity {
			return failure.CapacityExhausted("no capacity remains for this slot and date") // nolint:wrapcheck
		}

		if err = s.repo.Insert(ctx, appointment); err != nil {
			log.Error().Err(err).Msg("failed to create appointment")

			return fmt.Errorf("failed to create appointment: %w", err)
		}

		return nil
	}

	var err error
	for attempt := 0; attempt <= s.cfg.Scheduling.ReserveMaxRetry; attempt++ {
		err = s.locker.WithReservationLock(ctx, slot.ID, appointment.PreferredDate, reservation)
		if !errors.Is(err, redis.ErrLockNotAcquired) {
			return err
		}

		time.Sleep(time.Duration(s.cfg.Scheduling.ReserveRetryWaitMillis) * time.Millisecond)
	}

	log.Warn().Str("slotID", slot.ID).Msg("reservation lock contention exhausted retries")

	return failure.CapacityExhausted("slot is under heavy contention, retry with another slot") // nolint:wrapcheck
}

// freshAppointment loads an appointment and applies lazy expiry: a stale
// pending request is flipped to expired before the caller sees it.
func (s *serviceImpl) freshAppointment(ctx context.Context, id string) (model.AppointmentRequest, error) {
	appointment, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to get appointment")

		return appointment, fmt.Errorf("failed to get appointment: %w", err)
	}

	if appointment.ID == constant.Empty {
		return appointment, failure.NotFound("appointment not found") // nolint:wrapcheck
	}

	now := timezone.Now()
	if !appointment.IsStale(now) {
		return appointment, nil
	}

	updatedFields := map[string]any{
		model.FieldStatus:        model.StatusExpired,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: constant.SweeperActor,
	}

	if err = s.repo.Update(ctx, updatedFields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to expire stale appointment")

		return appointment, fmt.Errorf("failed to expire stale appointment: %w", err)
	}

	appointment.Status = model.StatusExpired

	return appointment, nil
}

// actionable loads an appointment and asserts the target transition is legal
// for its current status.
func (s *serviceImpl) actionable(ctx context.Context, id string, target model.Status) (model.AppointmentRequest, error) {
	appointment, err := s.freshAppointment(ctx, id)
	if err != nil {
		return appointment, err
	}

	if !appointment.Status.CanTransitionTo(target) {
		return appointment, failure.InvalidTransition(model.EntityName, string(appointment.Status), string(target)) // nolint:wrapcheck
	}

	return appointment, nil
}

func (s *serviceImpl) applyTransition(ctx context.Context, appointment model.AppointmentRequest, updatedFields map[string]any) (res dto.AppointmentResponse, err error) {
	err = s.repo.Update(ctx, updatedFields, shared.FilterByID(appointment.ID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("id", appointment.ID).Msg("failed to update appointment")

		return res, fmt.Errorf("failed to update appointment: %w", err)
	}

	applyFields(&appointment, updatedFields)
	res.FromModel(appointment)

	return res, nil
}

func (s *serviceImpl) publishUrgentAssignment(ctx context.Context, appointment model.AppointmentRequest) {
	event := events.UrgentAssignmentEvent{
		AppointmentRequestID: appointment.ID,
		DonorID:              appointment.DonorID,
		LocationID:           appointment.LocationID,
		Priority:             appointment.Priority,
	}

	if appointment.RelatedBloodRequestID != nil {
		event.BloodRequestID = *appointment.RelatedBloodRequestID
	}

	go s.events.UrgentAssignment(context.WithoutCancel(ctx), event)
}

// activeReservationFilter matches the appointments holding a reservation on
// (slot, date): every non-terminal status. Terminal statuses release their
// reservation implicitly by falling out of this count.
func activeReservationFilter(slotID string, date time.Time) gDto.FilterGroup {
	statuses := make([]string, len(model.NonTerminalStatuses))
	for i, status := range model.NonTerminalStatuses {
		statuses[i] = string(status)
	}

	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldCapacitySlotID,
				Operator: gDto.FilterOperatorEq,
				Value:    slotID,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldPreferredDate,
				Operator: gDto.FilterOperatorEq,
				Value:    date,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldStatus,
				Operator: gDto.FilterOperatorIn,
				Value:    statuses,
				Table:    model.TableName,
			},
		},
	}
}

// applyFields mirrors a column update onto the in-memory model so responses
// reflect what was written without a re-read.
func applyFields(appointment *model.AppointmentRequest, fields map[string]any) {
	for column, value := range fields {
		switch column {
		case model.FieldStatus:
			appointment.Status, _ = value.(model.Status)
		case model.FieldReviewedByUserID:
			if v, ok := value.(string); ok {
				appointment.ReviewedByUserID = &v
			}
		case model.FieldReviewedAt:
			if v, ok := value.(time.Time); ok {
				appointment.ReviewedAt = &v
			}
		case model.FieldReviewNote:
			if v, ok := value.(string); ok {
				appointment.ReviewNote = &v
			}
		case model.FieldRejectionReason:
			if v, ok := value.(string); ok {
				appointment.RejectionReason = &v
			}
		case model.FieldCancellationReason:
			if v, ok := value.(string); ok {
				appointment.CancellationReason = &v
			}
		case model.FieldConfirmedDate:
			if v, ok := value.(time.Time); ok {
				appointment.ConfirmedDate = &v
			}
		case model.FieldConfirmedLocationID:
			if v, ok := value.(string); ok {
				appointment.ConfirmedLocationID = &v
			}
		case model.FieldCheckedInAt:
			if v, ok := value.(time.Time); ok {
				appointment.CheckedInAt = &v
			}
		case model.FieldDonorAccepted:
			if v, ok := value.(bool); ok {
				appointment.DonorAccepted = &v
			}
		case model.FieldDonorResponseNotes:
			if v, ok := value.(string); ok {
				appointment.DonorResponseNotes = &v
			}
		case constant.FieldModifiedAt:
			if v, ok := value.(time.Time); ok {
				appointment.ModifiedAt = v
			}
		case constant.FieldModifiedBy:
			if v, ok := value.(string); ok {
				appointment.ModifiedBy = v
			}
		}
	}
}
