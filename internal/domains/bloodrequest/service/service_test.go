package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"hemobook/config"
	"hemobook/infras/otel/mocks"
	appointmentDto "hemobook/internal/domains/appointment/model/dto"
	appointmentServiceMocks "hemobook/internal/domains/appointment/service/mocks"
	bloodRequestMocks "hemobook/internal/domains/bloodrequest/mocks"
	"hemobook/internal/domains/bloodrequest/model"
	"hemobook/internal/domains/bloodrequest/model/dto"
	"hemobook/internal/domains/bloodrequest/service"
	"hemobook/internal/events"
	eventMocks "hemobook/internal/events/mocks"
	"hemobook/shared/failure"
)

type bloodRequestMockSet struct {
	repo         *bloodRequestMocks.MockBloodRequest
	appointments *appointmentServiceMocks.MockAppointment
	events       *eventMocks.MockPublisher
}

func newBloodRequestService(t *testing.T) (service.BloodRequest, bloodRequestMockSet) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	set := bloodRequestMockSet{
		repo:         bloodRequestMocks.NewMockBloodRequest(ctrl),
		appointments: appointmentServiceMocks.NewMockAppointment(ctrl),
		events:       eventMocks.NewMockPublisher(ctrl),
	}

	cfg := &config.Config{}
	cfg.Scheduling.EmergencyExpireHours = 24
	cfg.Scheduling.RegularExpireHours = 72

	svc := service.New(set.repo, set.appointments, cfg, set.events, mocks.NewOtel())

	return svc, set
}

func pendingBloodRequest(urgency model.Urgency) model.BloodRequest {
	return model.BloodRequest{
		ID:              "br-1",
		BloodGroupID:    "bg-opos",
		ComponentTypeID: "ct-whole",
		QuantityUnits:   3,
		Urgency:         urgency,
		Status:          model.StatusPending,
	}
}

func assignRequest(donorIDs ...string) dto.AssignDonorsRequest {
	return dto.AssignDonorsRequest{
		DonorIDs:       donorIDs,
		LocationID:     "loc-1",
		CapacitySlotID: "slot-1",
		PreferredDate:  "2026-09-07",
		Priority:       2,
	}
}

func TestBloodRequestGet(t *testing.T) {
	t.Run("returns the blood request", func(t *testing.T) {
		svc, set := newBloodRequestService(t)
		ctx := context.Background()

		set.repo.EXPECT().
			Get(ctx, gomock.Any()).
			Return(pendingBloodRequest(model.UrgencyUrgent), nil)

		res, err := svc.Get(ctx, "br-1")

		assert.NoError(t, err)
		assert.Equal(t, "br-1", res.ID)
		assert.Equal(t, string(model.UrgencyUrgent), res.Urgency)
		assert.Equal(t, string(model.StatusPending), res.Status)
	})

	t.Run("unknown id yields not found", func(t *testing.T) {
		svc, set := newBloodRequestService(t)
		ctx := context.Background()

		set.repo.EXPECT().
			Get(ctx, gomock.Any()).
			Return(model.BloodRequest{}, nil)

		_, err := svc.Get(ctx, "br-missing")

		assert.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindNotFound))
	})

	t.Run("repository error is propagated", func(t *testing.T) {
		svc, set := newBloodRequestService(t)
		ctx := context.Background()

		set.repo.EXPECT().
			Get(ctx, gomock.Any()).
			Return(model.BloodRequest{}, errors.New("connection reset"))

		_, err := svc.Get(ctx, "br-1")

		assert.Error(t, err)
	})
}

func TestBloodRequestAssignDonors(t *testing.T) {
	t.Run("partial capacity keeps the batch going", func(t *testing.T) {
		svc, set := newBloodRequestService(t)
		ctx := context.Background()

		set.repo.EXPECT().
			Get(ctx, gomock.Any()).
			Return(pendingBloodRequest(model.UrgencyUrgent), nil)

		gomock.InOrder(
			set.appointments.EXPECT().
				Create(ctx, gomock.Any()).
				Return(appointmentDto.AppointmentResponse{ID: "appt-1", DonorID: "donor-1"}, nil),
			set.appointments.EXPECT().
				Create(ctx, gomock.Any()).
				Return(appointmentDto.AppointmentResponse{ID: "appt-2", DonorID: "donor-2"}, nil),
			set.appointments.EXPECT().
				Create(ctx, gomock.Any()).
				Return(appointmentDto.AppointmentResponse{}, failure.CapacityExhausted("slot is fully booked for the requested date")),
		)

		set.repo.EXPECT().
			Update(ctx, gomock.Any(), gomock.Any()).
			Do(func(_ context.Context, updatedFields map[string]any, _ any) {
				assert.Equal(t, model.StatusProcessing, updatedFields[model.FieldStatus])
				assert.Equal(t, "assigned 2 donor(s)", updatedFields[model.FieldNotes])
			}).
			Return(nil)

		published := make(chan events.BloodRequestStatusEvent, 1)
		set.events.EXPECT().
			BloodRequestStatusChanged(gomock.Any(), gomock.Any()).
			Do(func(_ context.Context, event events.BloodRequestStatusEvent) {
				published <- event
			})

		res, err := svc.AssignDonors(ctx, "br-1", assignRequest("donor-1", "donor-2", "donor-3"))

		assert.NoError(t, err)
		assert.Equal(t, "br-1", res.BloodRequestID)
		assert.Equal(t, string(model.StatusProcessing), res.RequestStatus)
		assert.Len(t, res.Successes, 2)
		assert.Len(t, res.Failures, 1)
		assert.Equal(t, "donor-3", res.Failures[0].DonorID)
		assert.Equal(t, failure.KindCapacityExhausted, res.Failures[0].Kind)

		select {
		case event := <-published:
			assert.Equal(t, "br-1", event.BloodRequestID)
			assert.Equal(t, string(model.StatusProcessing), event.Status)
		case <-time.After(time.Second):
			t.Fatal("expected a blood request status event")
		}
	})

	t.Run("emergency urgency shortens the expiry window", func(t *testing.T) {
		svc, set := newBloodRequestService(t)
		ctx := context.Background()

		set.repo.EXPECT().
			Get(ctx, gomock.Any()).
			Return(pendingBloodRequest(model.UrgencyEmergency), nil)

		var captured appointmentDto.CreateAppointmentRequest
		set.appointments.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, req appointmentDto.CreateAppointmentRequest) (appointmentDto.AppointmentResponse, error) {
				captured = req

				return appointmentDto.AppointmentResponse{ID: "appt-1", DonorID: "donor-1"}, nil
			})

		set.repo.EXPECT().Update(ctx, gomock.Any(), gomock.Any()).Return(nil)
		set.events.EXPECT().BloodRequestStatusChanged(gomock.Any(), gomock.Any()).AnyTimes()

		_, err := svc.AssignDonors(ctx, "br-1", assignRequest("donor-1"))

		assert.NoError(t, err)
		assert.True(t, captured.IsUrgent)
		if assert.NotNil(t, captured.AutoExpireHours) {
			assert.Equal(t, 24, *captured.AutoExpireHours)
		}
		if assert.NotNil(t, captured.RelatedBloodRequestID) {
			assert.Equal(t, "br-1", *captured.RelatedBloodRequestID)
		}
		assert.Equal(t, "bg-opos", captured.BloodGroupID)
		assert.Equal(t, "ct-whole", captured.ComponentTypeID)
	})

	t.Run("regular urgency uses the longer expiry window", func(t *testing.T) {
		svc, set := newBloodRequestService(t)
		ctx := context.Background()

		set.repo.EXPECT().
			Get(ctx, gomock.Any()).
			Return(pendingBloodRequest(model.UrgencyRegular), nil)

		var captured appointmentDto.CreateAppointmentRequest
		set.appointments.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, req appointmentDto.CreateAppointmentRequest) (appointmentDto.AppointmentResponse, error) {
				captured = req

				return appointmentDto.AppointmentResponse{ID: "appt-1", DonorID: "donor-1"}, nil
			})

		set.repo.EXPECT().Update(ctx, gomock.Any(), gomock.Any()).Return(nil)
		set.events.EXPECT().BloodRequestStatusChanged(gomock.Any(), gomock.Any()).AnyTimes()

		_, err := svc.AssignDonors(ctx, "br-1", assignRequest("donor-1"))

		assert.NoError(t, err)
		assert.False(t, captured.IsUrgent)
		if assert.NotNil(t, captured.AutoExpireHours) {
			assert.Equal(t, 72, *captured.AutoExpireHours)
		}
	})

	t.Run("all assignments failing leaves the request untouched", func(t *testing.T) {
		svc, set := newBloodRequestService(t)
		ctx := context.Background()

		set.repo.EXPECT().
			Get(ctx, gomock.Any()).
			Return(pendingBloodRequest(model.UrgencyUrgent), nil)

		set.appointments.EXPECT().
			Create(ctx, gomock.Any()).
			Return(appointmentDto.AppointmentResponse{}, failure.CapacityExhausted("slot is fully booked for the requested date")).
			Times(2)

		res, err := svc.AssignDonors(ctx, "br-1", assignRequest("donor-1", "donor-2"))

		assert.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindValidation))
		assert.Empty(t, res.Successes)
		assert.Len(t, res.Failures, 2)
		assert.Equal(t, string(model.StatusPending), res.RequestStatus)
	})

	t.Run("blood request not found", func(t *testing.T) {
		svc, set := newBloodRequestService(t)
		ctx := context.Background()

		set.repo.EXPECT().
			Get(ctx, gomock.Any()).
			Return(model.BloodRequest{}, nil)

		_, err := svc.AssignDonors(ctx, "br-missing", assignRequest("donor-1"))

		assert.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindNotFound))
	})

	t.Run("rollup update failure is returned", func(t *testing.T) {
		svc, set := newBloodRequestService(t)
		ctx := context.Background()

		set.repo.EXPECT().
			Get(ctx, gomock.Any()).
			Return(pendingBloodRequest(model.UrgencyUrgent), nil)

		set.appointments.EXPECT().
			Create(ctx, gomock.Any()).
			Return(appointmentDto.AppointmentResponse{ID: "appt-1", DonorID: "donor-1"}, nil)

		set.repo.EXPECT().
			Update(ctx, gomock.Any(), gomock.Any()).
			Return(errors.New("deadlock detected"))

		_, err := svc.AssignDonors(ctx, "br-1", assignRequest("donor-1"))

		assert.Error(t, err)
	})
}
