package model

import (
	"time"

	"hemobook/shared/model"
)

const (
	TableName  = "donation_events"
	EntityName = "donation event"

	FieldID                   = "id"
	FieldAppointmentRequestID = "appointment_request_id"
	FieldDonorID              = "donor_id"
	FieldStatus               = "status"
	FieldBloodPressure        = "blood_pressure"
	FieldTemperature          = "temperature"
	FieldHemoglobinLevel      = "hemoglobin_level"
	FieldWeight               = "weight"
	FieldHeight               = "height"
	FieldVerifiedBloodGroupID = "verified_blood_group_id"
	FieldIsEligible           = "is_eligible"
	FieldRejectionReason      = "rejection_reason"
	FieldHealthCheckAt        = "health_check_at"
	FieldStartedAt            = "started_at"
	FieldDonationDate         = "donation_date"
	FieldQuantityDonated      = "quantity_donated"
	FieldQuantityUnits        = "quantity_units"
	FieldComplicationType     = "complication_type"
	FieldComplicationDesc     = "complication_description"
	FieldIsUsable             = "is_usable"
	FieldActionTaken          = "action_taken"
	FieldNotes                = "notes"
)

type Status string

const (
	StatusPending           Status = "pending"
	StatusCheckedIn         Status = "checked_in"
	StatusHealthCheckPassed Status = "health_check_passed"
	StatusRejected          Status = "rejected"
	StatusInProgress        Status = "in_progress"
	StatusCompleted         Status = "completed"
	StatusFailed            Status = "failed"
)

// checked_in exists in stored history but behaves exactly like pending: both
// sit before the health check. New events are created as pending.
var transitions = map[Status][]Status{
	StatusPending:           {StatusHealthCheckPassed, StatusRejected},
	StatusCheckedIn:         {StatusHealthCheckPassed, StatusRejected},
	StatusHealthCheckPassed: {StatusInProgress},
	StatusInProgress:        {StatusCompleted, StatusFailed},
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}

	return false
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// DonationEvent accumulates the collection history of one appointment. Step
// payloads fill their own columns and never overwrite earlier ones.
type DonationEvent struct {
	ID                   string     `db:"id"`
	AppointmentRequestID string     `db:"appointment_request_id"`
	DonorID              string     `db:"donor_id"`
	Status               Status     `db:"status"`
	BloodPressure        *string    `db:"blood_pressure"`
	Temperature          *float64   `db:"temperature"`
	HemoglobinLevel      *float64   `db:"hemoglobin_level"`
	Weight               *float64   `db:"weight"`
	Height               *float64   `db:"height"`
	VerifiedBloodGroupID *string    `db:"verified_blood_group_id"`
	IsEligible           *bool      `db:"is_eligible"`
	RejectionReason      *string    `db:"rejection_reason"`
	HealthCheckAt        *time.Time `db:"health_check_at"`
	StartedAt            *time.Time `db:"started_at"`
	DonationDate         *time.Time `db:"donation_date"`
	QuantityDonated      *float64   `db:"quantity_donated"`
	QuantityUnits        *int       `db:"quantity_units"`
	ComplicationType     *string    `db:"complication_type"`
	ComplicationDesc     *string    `db:"complication_description"`
	IsUsable             *bool      `db:"is_usable"`
	ActionTaken          *string    `db:"action_taken"`
	Notes                *string    `db:"notes"`
	model.Metadata
}
