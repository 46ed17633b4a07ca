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
	"hemobook/infras/redis"
	redisMocks "hemobook/infras/redis/mocks"
	appointmentMocks "hemobook/internal/domains/appointment/mocks"
	"hemobook/internal/domains/appointment/model"
	"hemobook/internal/domains/appointment/model/dto"
	"hemobook/internal/domains/appointment/service"
	capacityMocks "hemobook/internal/domains/capacity/mocks"
	capacityModel "hemobook/internal/domains/capacity/model"
	"hemobook/internal/events"
	eventMocks "hemobook/internal/events/mocks"
	"hemobook/shared/constant"
	"hemobook/shared/failure"
	"hemobook/shared/timezone"
)

type appointmentMockSet struct {
	repo     *appointmentMocks.MockAppointment
	capacity *capacityMocks.MockCapacity
	locker   *redisMocks.MockReservationLocker
	events   *eventMocks.MockPublisher
}

func newAppointmentService(t *testing.T) (service.Appointment, appointmentMockSet) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	set := appointmentMockSet{
		repo:     appointmentMocks.NewMockAppointment(ctrl),
		capacity: capacityMocks.NewMockCapacity(ctrl),
		locker:   redisMocks.NewMockReservationLocker(ctrl),
		events:   eventMocks.NewMockPublisher(ctrl),
	}

	cfg := &config.Config{}
	cfg.Scheduling.ReserveMaxRetry = 2
	cfg.Scheduling.ReserveRetryWaitMillis = 0

	svc := service.New(set.repo, set.capacity, cfg, set.locker, set.events, mocks.NewOtel())

	return svc, set
}

func runLockedSection() func(ctx context.Context, slotID string, date time.Time, fn func(ctx context.Context) error) error {
	return func(ctx context.Context, slotID string, date time.Time, fn func(ctx context.Context) error) error {
		return fn(ctx)
	}
}

func bookableTestSlot() capacityModel.CapacitySlot {
	future := timezone.Now().AddDate(0, 1, 0)
	dayOfWeek := int(future.Weekday())

	return capacityModel.CapacitySlot{
		ID:            "slot-1",
		LocationID:    "loc-1",
		DayOfWeek:     dayOfWeek,
		TimeSlot:      capacityModel.TimeSlotMorning,
		StartHour:     9,
		EndHour:       10,
		TotalCapacity: 2,
		EffectiveDate: timezone.Now().AddDate(0, 0, -7),
		ExpiryDate:    timezone.Now().AddDate(1, 0, 0),
		IsActive:      true,
	}
}

func createRequestFor(slot capacityModel.CapacitySlot) dto.CreateAppointmentRequest {
	future := timezone.Now().AddDate(0, 1, 0)

	return dto.CreateAppointmentRequest{
		DonorID:         "donor-1",
		LocationID:      slot.LocationID,
		BloodGroupID:    "bg-1",
		ComponentTypeID: "ct-1",
		CapacitySlotID:  slot.ID,
		PreferredDate:   timezone.Format(future, constant.DateOnlyLayout),
		RequestType:     string(model.RequestTypeDonorInitiated),
		Priority:        3,
	}
}

func TestAppointmentService_Create(t *testing.T) {
	slot := bookableTestSlot()

	t.Run("successful booking", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		set.capacity.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(slot, nil)

		set.locker.EXPECT().
			WithReservationLock(gomock.Any(), slot.ID, gomock.Any(), gomock.Any()).
			DoAndReturn(runLockedSection())

		set.repo.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			Return(1, nil)

		set.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			Return(nil)

		ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "donor-1")
		res, err := svc.Create(ctx, createRequestFor(slot))

		assert.NoError(t, err)
		assert.Equal(t, string(model.StatusPending), res.Status)
		assert.Equal(t, slot.ID, res.CapacitySlotID)
		assert.Equal(t, string(capacityModel.TimeSlotMorning), res.PreferredTimeSlot)
	})

	t.Run("capacity exhausted", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		set.capacity.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(slot, nil)

		set.locker.EXPECT().
			WithReservationLock(gomock.Any(), slot.ID, gomock.Any(), gomock.Any()).
			DoAndReturn(runLockedSection())

		set.repo.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			Return(slot.TotalCapacity, nil)

		_, err := svc.Create(context.Background(), createRequestFor(slot))

		assert.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindCapacityExhausted))
	})

	t.Run("create succeeds again after a terminal release", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		tight := slot
		tight.TotalCapacity = 1

		set.capacity.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(tight, nil).
			Times(2)

		set.locker.EXPECT().
			WithReservationLock(gomock.Any(), tight.ID, gomock.Any(), gomock.Any()).
			DoAndReturn(runLockedSection()).
			Times(2)

		// First attempt sees the reservation held, second sees it released
		// by a reject.
		gomock.InOrder(
			set.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil),
			set.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil),
		)

		set.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			Return(nil)

		_, err := svc.Create(context.Background(), createRequestFor(tight))
		assert.True(t, failure.IsKind(err, failure.KindCapacityExhausted))

		_, err = svc.Create(context.Background(), createRequestFor(tight))
		assert.NoError(t, err)
	})

	t.Run("lock contention exhausts retries", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		set.capacity.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(slot, nil)

		set.locker.EXPECT().
			WithReservationLock(gomock.Any(), slot.ID, gomock.Any(), gomock.Any()).
			Return(redis.ErrLockNotAcquired).
			Times(3)

		_, err := svc.Create(context.Background(), createRequestFor(slot))

		assert.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindCapacityExhausted))
	})

	t.Run("deactivated slot", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		inactive := slot
		inactive.IsActive = false

		set.capacity.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(inactive, nil)

		_, err := svc.Create(context.Background(), createRequestFor(slot))

		assert.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindSlotUnavailable))
	})

	t.Run("slot does not cover the preferred weekday", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		offDay := slot
		offDay.DayOfWeek = (offDay.DayOfWeek + 1) % 7

		set.capacity.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(offDay, nil)

		_, err := svc.Create(context.Background(), createRequestFor(slot))

		assert.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindSlotUnavailable))
	})

	t.Run("slot not found", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		set.capacity.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(capacityModel.CapacitySlot{}, nil)

		_, err := svc.Create(context.Background(), createRequestFor(slot))

		assert.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindNotFound))
	})

	t.Run("urgent booking publishes a notification", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		set.capacity.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(slot, nil)

		set.locker.EXPECT().
			WithReservationLock(gomock.Any(), slot.ID, gomock.Any(), gomock.Any()).
			DoAndReturn(runLockedSection())

		set.repo.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			Return(0, nil)

		set.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			Return(nil)

		published := make(chan struct{})
		set.events.EXPECT().
			UrgentAssignment(gomock.Any(), gomock.Any()).
			Do(func(ctx context.Context, event events.UrgentAssignmentEvent) {
				assert.Equal(t, 3, event.Priority)
				close(published)
			})

		req := createRequestFor(slot)
		req.RequestType = string(model.RequestTypeStaffAssignment)
		req.IsUrgent = true

		_, err := svc.Create(context.Background(), req)
		assert.NoError(t, err)

		select {
		case <-published:
		case <-time.After(time.Second):
			t.Fatal("urgent assignment event was not published")
		}
	})
}

func pendingAppointment(requestType model.RequestType) model.AppointmentRequest {
	return model.AppointmentRequest{
		ID:                "appt-1",
		DonorID:           "donor-1",
		LocationID:        "loc-1",
		BloodGroupID:      "bg-1",
		ComponentTypeID:   "ct-1",
		CapacitySlotID:    "slot-1",
		PreferredDate:     timezone.Now().AddDate(0, 0, 7),
		PreferredTimeSlot: "morning",
		RequestType:       requestType,
		Status:            model.StatusPending,
		Priority:          3,
	}
}

func TestAppointmentService_Approve(t *testing.T) {
	t.Run("approves a pending donor request", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(pendingAppointment(model.RequestTypeDonorInitiated), nil)

		set.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "staff-1")
		res, err := svc.Approve(ctx, "appt-1", dto.ApproveAppointmentRequest{})

		assert.NoError(t, err)
		assert.Equal(t, string(model.StatusApproved), res.Status)
		assert.NotNil(t, res.ReviewedByUserID)
		assert.Equal(t, "staff-1", *res.ReviewedByUserID)
		assert.NotNil(t, res.ConfirmedDate)
	})

	t.Run("staff assignment requires donor acceptance", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(pendingAppointment(model.RequestTypeStaffAssignment), nil)

		_, err := svc.Approve(context.Background(), "appt-1", dto.ApproveAppointmentRequest{})

		assert.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindValidation))
	})

	t.Run("accepted staff assignment approves", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		accepted := true
		appointment := pendingAppointment(model.RequestTypeStaffAssignment)
		appointment.DonorAccepted = &accepted

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(appointment, nil)

		set.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		_, err := svc.Approve(context.Background(), "appt-1", dto.ApproveAppointmentRequest{})

		assert.NoError(t, err)
	})

	t.Run("approve from a terminal status", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		rejected := pendingAppointment(model.RequestTypeDonorInitiated)
		rejected.Status = model.StatusRejected

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(rejected, nil)

		_, err := svc.Approve(context.Background(), "appt-1", dto.ApproveAppointmentRequest{})

		assert.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindInvalidTransition))
	})

	t.Run("stale pending request expires instead of approving", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		stale := pendingAppointment(model.RequestTypeStaffAssignment)
		expiresAt := timezone.Now().Add(-time.Hour)
		stale.ExpiresAt = &expiresAt

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(stale, nil)

		// The lazy expiry flip is persisted before the transition check.
		set.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, fields map[string]any, filter any) error {
				assert.Equal(t, model.StatusExpired, fields[model.FieldStatus])
				return nil
			})

		_, err := svc.Approve(context.Background(), "appt-1", dto.ApproveAppointmentRequest{})

		assert.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindInvalidTransition))
	})
}

func TestAppointmentService_Reject(t *testing.T) {
	t.Run("rejects a pending request with a reason", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(pendingAppointment(model.RequestTypeDonorInitiated), nil)

		set.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "staff-1")
		res, err := svc.Reject(ctx, "appt-1", dto.RejectAppointmentRequest{Reason: "ineligible"})

		assert.NoError(t, err)
		assert.Equal(t, string(model.StatusRejected), res.Status)
		assert.NotNil(t, res.RejectionReason)
		assert.Equal(t, "ineligible", *res.RejectionReason)
	})

	t.Run("reject from approved is illegal", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		approved := pendingAppointment(model.RequestTypeDonorInitiated)
		approved.Status = model.StatusApproved

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(approved, nil)

		_, err := svc.Reject(context.Background(), "appt-1", dto.RejectAppointmentRequest{Reason: "too late"})

		assert.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindInvalidTransition))
	})
}

func TestAppointmentService_Cancel(t *testing.T) {
	tests := []struct {
		name    string
		status  model.Status
		wantErr bool
	}{
		{name: "cancel from pending", status: model.StatusPending},
		{name: "cancel from approved", status: model.StatusApproved},
		{name: "cancel from checked_in is illegal", status: model.StatusCheckedIn, wantErr: true},
		{name: "cancel from completed is illegal", status: model.StatusCompleted, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, set := newAppointmentService(t)

			appointment := pendingAppointment(model.RequestTypeDonorInitiated)
			appointment.Status = tt.status

			set.repo.EXPECT().
				Get(gomock.Any(), gomock.Any()).
				Return(appointment, nil)

			if !tt.wantErr {
				set.repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			}

			_, err := svc.Cancel(context.Background(), "appt-1", dto.CancelAppointmentRequest{Reason: "schedule conflict"})

			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, failure.IsKind(err, failure.KindInvalidTransition))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAppointmentService_CheckIn(t *testing.T) {
	t.Run("check-in creates the donation event transactionally", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		approved := pendingAppointment(model.RequestTypeDonorInitiated)
		approved.Status = model.StatusApproved

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(approved, nil)

		set.repo.EXPECT().
			UpdateWithEvent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "staff-1")
		res, err := svc.CheckIn(ctx, "appt-1")

		assert.NoError(t, err)
		assert.Equal(t, string(model.StatusCheckedIn), res.Status)
		assert.NotNil(t, res.CheckedInAt)
	})

	t.Run("check-in from pending is illegal", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(pendingAppointment(model.RequestTypeDonorInitiated), nil)

		_, err := svc.CheckIn(context.Background(), "appt-1")

		assert.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindInvalidTransition))
	})
}

func TestAppointmentService_DonorRespond(t *testing.T) {
	accepted := true
	declined := false

	t.Run("donor accepts", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(pendingAppointment(model.RequestTypeStaffAssignment), nil)

		set.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		res, err := svc.DonorRespond(context.Background(), "appt-1", dto.DonorRespondRequest{Accepted: &accepted})

		assert.NoError(t, err)
		assert.Equal(t, string(model.StatusPending), res.Status)
		assert.NotNil(t, res.DonorAccepted)
		assert.True(t, *res.DonorAccepted)
	})

	t.Run("donor declines", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(pendingAppointment(model.RequestTypeStaffAssignment), nil)

		set.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		res, err := svc.DonorRespond(context.Background(), "appt-1", dto.DonorRespondRequest{Accepted: &declined})

		assert.NoError(t, err)
		assert.Equal(t, string(model.StatusRejected), res.Status)
		assert.NotNil(t, res.RejectionReason)
		assert.Equal(t, model.DonorDeclinedReason, *res.RejectionReason)
	})

	t.Run("donor-initiated requests take no donor response", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(pendingAppointment(model.RequestTypeDonorInitiated), nil)

		_, err := svc.DonorRespond(context.Background(), "appt-1", dto.DonorRespondRequest{Accepted: &accepted})

		assert.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindValidation))
	})

	t.Run("already answered", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		answered := pendingAppointment(model.RequestTypeStaffAssignment)
		answered.DonorAccepted = &accepted

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(answered, nil)

		_, err := svc.DonorRespond(context.Background(), "appt-1", dto.DonorRespondRequest{Accepted: &declined})

		assert.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindInvalidTransition))
	})
}

func TestAppointmentService_Get(t *testing.T) {
	t.Run("stale pending reads as expired immediately", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		stale := pendingAppointment(model.RequestTypeStaffAssignment)
		expiresAt := timezone.Now().Add(-time.Minute)
		stale.ExpiresAt = &expiresAt

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(stale, nil)

		set.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		res, err := svc.Get(context.Background(), "appt-1")

		assert.NoError(t, err)
		assert.Equal(t, string(model.StatusExpired), res.Status)
	})

	t.Run("not found", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.AppointmentRequest{}, nil)

		_, err := svc.Get(context.Background(), "missing")

		assert.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindNotFound))
	})

	t.Run("repository error", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.AppointmentRequest{}, errors.New("database error"))

		_, err := svc.Get(context.Background(), "appt-1")

		assert.Error(t, err)
	})
}

func TestAppointmentService_ExpireStale(t *testing.T) {
	t.Run("flips every stale pending request", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		set.repo.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			Return(3, nil)

		set.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, fields map[string]any, filter any) error {
				assert.Equal(t, model.StatusExpired, fields[model.FieldStatus])
				assert.Equal(t, constant.SweeperActor, fields[constant.FieldModifiedBy])
				return nil
			})

		expired, err := svc.ExpireStale(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 3, expired)
	})

	t.Run("nothing stale", func(t *testing.T) {
		svc, set := newAppointmentService(t)

		set.repo.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			Return(0, nil)

		expired, err := svc.ExpireStale(context.Background())

		assert.NoError(t, err)
		assert.Zero(t, expired)
	})
}
