package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"hemobook/infras/otel/mocks"
	appointmentMocks "hemobook/internal/domains/appointment/mocks"
	appointmentModel "hemobook/internal/domains/appointment/model"
	donationMocks "hemobook/internal/domains/donation/mocks"
	"hemobook/internal/domains/donation/model"
	"hemobook/internal/domains/donation/model/dto"
	"hemobook/internal/domains/donation/service"
	"hemobook/internal/events"
	eventMocks "hemobook/internal/events/mocks"
	"hemobook/shared/failure"
	"hemobook/shared/timezone"
)

type donationMockSet struct {
	repo         *donationMocks.MockDonation
	appointments *appointmentMocks.MockAppointment
	events       *eventMocks.MockPublisher
}

func newDonationService(t *testing.T) (service.Donation, donationMockSet) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	set := donationMockSet{
		repo:         donationMocks.NewMockDonation(ctrl),
		appointments: appointmentMocks.NewMockAppointment(ctrl),
		events:       eventMocks.NewMockPublisher(ctrl),
	}

	svc := service.New(set.repo, set.appointments, set.events, mocks.NewOtel())

	return svc, set
}

func eventInStatus(status model.Status) model.DonationEvent {
	return model.DonationEvent{
		ID:                   "event-1",
		AppointmentRequestID: "appt-1",
		DonorID:              "donor-1",
		Status:               status,
	}
}

func parentAppointment() appointmentModel.AppointmentRequest {
	return appointmentModel.AppointmentRequest{
		ID:              "appt-1",
		DonorID:         "donor-1",
		BloodGroupID:    "bg-original",
		ComponentTypeID: "ct-1",
		Status:          appointmentModel.StatusCheckedIn,
	}
}

func eligibleHealthCheck() dto.HealthCheckRequest {
	eligible := true
	pressure := "120/80"
	hemoglobin := 13.5

	return dto.HealthCheckRequest{
		BloodPressure:        &pressure,
		HemoglobinLevel:      &hemoglobin,
		VerifiedBloodGroupID: "bg-verified",
		IsEligible:           &eligible,
	}
}

func TestDonationService_RecordHealthCheck(t *testing.T) {
	t.Run("eligible donor passes, appointment stays open", func(t *testing.T) {
		svc, set := newDonationService(t)

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(eventInStatus(model.StatusPending), nil)

		set.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, fields map[string]any, filter any) error {
				assert.Equal(t, model.StatusHealthCheckPassed, fields[model.FieldStatus])
				assert.Equal(t, "bg-verified", fields[model.FieldVerifiedBloodGroupID])
				return nil
			})

		res, err := svc.RecordHealthCheck(context.Background(), "event-1", eligibleHealthCheck())

		assert.NoError(t, err)
		assert.Equal(t, string(model.StatusHealthCheckPassed), res.Status)
		assert.NotNil(t, res.VerifiedBloodGroupID)
		assert.Equal(t, "bg-verified", *res.VerifiedBloodGroupID)
	})

	t.Run("ineligible donor closes event and appointment in one call", func(t *testing.T) {
		svc, set := newDonationService(t)

		ineligible := false
		reason := "Low Hemoglobin"
		req := eligibleHealthCheck()
		req.IsEligible = &ineligible
		req.RejectionReason = &reason

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(eventInStatus(model.StatusPending), nil)

		set.repo.EXPECT().
			UpdateWithAppointment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, eventFields map[string]any, eventFilter any, appointmentFields map[string]any, appointmentFilter any) error {
				assert.Equal(t, model.StatusRejected, eventFields[model.FieldStatus])
				assert.Equal(t, reason, eventFields[model.FieldRejectionReason])
				assert.Equal(t, appointmentModel.StatusFailed, appointmentFields[appointmentModel.FieldStatus])
				return nil
			})

		res, err := svc.RecordHealthCheck(context.Background(), "event-1", req)

		assert.NoError(t, err)
		assert.Equal(t, string(model.StatusRejected), res.Status)
	})

	t.Run("ineligible without a reason is rejected up front", func(t *testing.T) {
		svc, _ := newDonationService(t)

		ineligible := false
		req := eligibleHealthCheck()
		req.IsEligible = &ineligible

		_, err := svc.RecordHealthCheck(context.Background(), "event-1", req)

		assert.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindValidation))
	})

	t.Run("checked_in behaves like pending", func(t *testing.T) {
		svc, set := newDonationService(t)

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(eventInStatus(model.StatusCheckedIn), nil)

		set.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		_, err := svc.RecordHealthCheck(context.Background(), "event-1", eligibleHealthCheck())

		assert.NoError(t, err)
	})
}

func TestDonationService_StartDonation(t *testing.T) {
	t.Run("starts from health_check_passed", func(t *testing.T) {
		svc, set := newDonationService(t)

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(eventInStatus(model.StatusHealthCheckPassed), nil)

		set.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		res, err := svc.StartDonation(context.Background(), "event-1", dto.StartDonationRequest{})

		assert.NoError(t, err)
		assert.Equal(t, string(model.StatusInProgress), res.Status)
	})

	t.Run("start before the health check is illegal", func(t *testing.T) {
		svc, set := newDonationService(t)

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(eventInStatus(model.StatusPending), nil)

		_, err := svc.StartDonation(context.Background(), "event-1", dto.StartDonationRequest{})

		assert.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindInvalidTransition))
	})
}

func TestDonationService_CompleteDonation(t *testing.T) {
	completeReq := dto.CompleteDonationRequest{
		DonationDate:    "2026-09-01",
		QuantityDonated: 450,
		QuantityUnits:   1,
	}

	t.Run("completes event and appointment, publishes units collected", func(t *testing.T) {
		svc, set := newDonationService(t)

		withBloodGroup := eventInStatus(model.StatusInProgress)
		verified := "bg-verified"
		withBloodGroup.VerifiedBloodGroupID = &verified

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(withBloodGroup, nil)

		set.repo.EXPECT().
			UpdateWithAppointment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, eventFields map[string]any, eventFilter any, appointmentFields map[string]any, appointmentFilter any) error {
				// Volume and units are stored exactly as entered.
				assert.Equal(t, 450.0, eventFields[model.FieldQuantityDonated])
				assert.Equal(t, 1, eventFields[model.FieldQuantityUnits])
				assert.Equal(t, appointmentModel.StatusCompleted, appointmentFields[appointmentModel.FieldStatus])
				return nil
			})

		set.appointments.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(parentAppointment(), nil)

		published := make(chan events.UnitsCollectedEvent, 1)
		set.events.EXPECT().
			UnitsCollected(gomock.Any(), gomock.Any()).
			Do(func(ctx context.Context, event events.UnitsCollectedEvent) {
				published <- event
			})

		res, err := svc.CompleteDonation(context.Background(), "event-1", completeReq)

		assert.NoError(t, err)
		assert.Equal(t, string(model.StatusCompleted), res.Status)

		select {
		case event := <-published:
			assert.Equal(t, "bg-verified", event.BloodGroupID)
			assert.Equal(t, "ct-1", event.ComponentTypeID)
			assert.Equal(t, 450.0, event.QuantityDonated)
			assert.Equal(t, 1, event.QuantityUnits)
		case <-time.After(time.Second):
			t.Fatal("units-collected event was not published")
		}
	})

	t.Run("complete on a pending event is illegal and leaves it unchanged", func(t *testing.T) {
		svc, set := newDonationService(t)

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(eventInStatus(model.StatusPending), nil)

		_, err := svc.CompleteDonation(context.Background(), "event-1", completeReq)

		assert.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindInvalidTransition))
	})

	t.Run("transactional close failure surfaces", func(t *testing.T) {
		svc, set := newDonationService(t)

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(eventInStatus(model.StatusInProgress), nil)

		set.repo.EXPECT().
			UpdateWithAppointment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("tx error"))

		_, err := svc.CompleteDonation(context.Background(), "event-1", completeReq)

		assert.Error(t, err)
	})
}

func TestDonationService_RecordComplication(t *testing.T) {
	usable := true
	discarded := false

	t.Run("usable yield is still offered to inventory", func(t *testing.T) {
		svc, set := newDonationService(t)

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(eventInStatus(model.StatusInProgress), nil)

		set.repo.EXPECT().
			UpdateWithAppointment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, eventFields map[string]any, eventFilter any, appointmentFields map[string]any, appointmentFilter any) error {
				assert.Equal(t, model.StatusFailed, eventFields[model.FieldStatus])
				assert.Equal(t, appointmentModel.StatusFailed, appointmentFields[appointmentModel.FieldStatus])
				return nil
			})

		set.appointments.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(parentAppointment(), nil)

		published := make(chan events.UnitsCollectedEvent, 1)
		set.events.EXPECT().
			UnitsCollected(gomock.Any(), gomock.Any()).
			Do(func(ctx context.Context, event events.UnitsCollectedEvent) {
				published <- event
			})

		req := dto.ComplicationRequest{
			ComplicationType: "vasovagal reaction",
			Description:      "donor fainted mid-collection",
			CollectedAmount:  200,
			QuantityUnits:    1,
			IsUsable:         &usable,
			ActionTaken:      "collection stopped, donor monitored",
		}

		res, err := svc.RecordComplication(context.Background(), "event-1", req)

		assert.NoError(t, err)
		assert.Equal(t, string(model.StatusFailed), res.Status)

		select {
		case event := <-published:
			assert.Equal(t, 200.0, event.QuantityDonated)
		case <-time.After(time.Second):
			t.Fatal("units-collected event was not published")
		}
	})

	t.Run("unusable yield publishes nothing", func(t *testing.T) {
		svc, set := newDonationService(t)

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(eventInStatus(model.StatusInProgress), nil)

		set.repo.EXPECT().
			UpdateWithAppointment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		req := dto.ComplicationRequest{
			ComplicationType: "contamination",
			Description:      "bag seal failed",
			CollectedAmount:  150,
			IsUsable:         &discarded,
			ActionTaken:      "unit discarded",
		}

		_, err := svc.RecordComplication(context.Background(), "event-1", req)

		assert.NoError(t, err)
	})

	t.Run("zero collected amount publishes nothing even when usable", func(t *testing.T) {
		svc, set := newDonationService(t)

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(eventInStatus(model.StatusInProgress), nil)

		set.repo.EXPECT().
			UpdateWithAppointment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		req := dto.ComplicationRequest{
			ComplicationType: "needle issue",
			Description:      "collection never started",
			CollectedAmount:  0,
			IsUsable:         &usable,
			ActionTaken:      "rescheduled",
		}

		_, err := svc.RecordComplication(context.Background(), "event-1", req)

		assert.NoError(t, err)
	})
}

// Every documented operation against every state. From any non-terminal state
// exactly the legal operations succeed; everything else is an invalid
// transition.
func TestDonationWorkflow_TransitionMatrix(t *testing.T) {
	type operation struct {
		name string
		run  func(svc service.Donation) error
	}

	eligible := true
	usable := false

	operations := []operation{
		{
			name: "recordHealthCheck",
			run: func(svc service.Donation) error {
				_, err := svc.RecordHealthCheck(context.Background(), "event-1", dto.HealthCheckRequest{
					VerifiedBloodGroupID: "bg-1",
					IsEligible:           &eligible,
				})
				return err
			},
		},
		{
			name: "startDonation",
			run: func(svc service.Donation) error {
				_, err := svc.StartDonation(context.Background(), "event-1", dto.StartDonationRequest{})
				return err
			},
		},
		{
			name: "completeDonation",
			run: func(svc service.Donation) error {
				_, err := svc.CompleteDonation(context.Background(), "event-1", dto.CompleteDonationRequest{
					DonationDate:    "2026-09-01",
					QuantityDonated: 450,
					QuantityUnits:   1,
				})
				return err
			},
		},
		{
			name: "recordComplication",
			run: func(svc service.Donation) error {
				_, err := svc.RecordComplication(context.Background(), "event-1", dto.ComplicationRequest{
					ComplicationType: "reaction",
					Description:      "adverse reaction",
					IsUsable:         &usable,
					ActionTaken:      "stopped",
				})
				return err
			},
		},
	}

	legal := map[model.Status]map[string]bool{
		model.StatusPending:           {"recordHealthCheck": true},
		model.StatusCheckedIn:         {"recordHealthCheck": true},
		model.StatusHealthCheckPassed: {"startDonation": true},
		model.StatusInProgress:        {"completeDonation": true, "recordComplication": true},
		model.StatusRejected:          {},
		model.StatusCompleted:         {},
		model.StatusFailed:            {},
	}

	for status, allowed := range legal {
		for _, op := range operations {
			t.Run(string(status)+"/"+op.name, func(t *testing.T) {
				svc, set := newDonationService(t)

				set.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(eventInStatus(status), nil)

				if allowed[op.name] {
					set.repo.EXPECT().
						Update(gomock.Any(), gomock.Any(), gomock.Any()).
						Return(nil).
						AnyTimes()
					set.repo.EXPECT().
						UpdateWithAppointment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
						Return(nil).
						AnyTimes()
					set.appointments.EXPECT().
						Get(gomock.Any(), gomock.Any()).
						Return(parentAppointment(), nil).
						AnyTimes()
					set.events.EXPECT().
						UnitsCollected(gomock.Any(), gomock.Any()).
						AnyTimes()

					assert.NoError(t, op.run(svc))
				} else {
					err := op.run(svc)
					assert.Error(t, err)
					assert.True(t, failure.IsKind(err, failure.KindInvalidTransition))
				}
			})
		}
	}
}

func TestDonationService_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc, set := newDonationService(t)

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(eventInStatus(model.StatusPending), nil)

		res, err := svc.Get(context.Background(), "event-1")

		assert.NoError(t, err)
		assert.Equal(t, "event-1", res.ID)
	})

	t.Run("not found", func(t *testing.T) {
		svc, set := newDonationService(t)

		set.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.DonationEvent{}, nil)

		_, err := svc.Get(context.Background(), "missing")

		assert.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindNotFound))
	})
}

func TestDonationService_GetByAppointment(t *testing.T) {
	svc, set := newDonationService(t)

	event := eventInStatus(model.StatusPending)
	event.Metadata.CreatedAt = timezone.Now()

	set.repo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(event, nil)

	res, err := svc.GetByAppointment(context.Background(), "appt-1")

	assert.NoError(t, err)
	assert.Equal(t, "appt-1", res.AppointmentRequestID)
}
