package dto

import (
	"time"

	"hemobook/internal/domains/donation/model"
	"hemobook/shared/constant"
	gDto "hemobook/shared/dto"
	"hemobook/shared/timezone"
)

// Vitals are stored exactly as entered, no unit conversion.
type HealthCheckRequest struct {
	BloodPressure        *string  `json:"blood_pressure"          validate:"omitempty,max=16"`
	Temperature          *float64 `json:"temperature"             validate:"omitempty,gt=0"`
	HemoglobinLevel      *float64 `json:"hemoglobin_level"        validate:"omitempty,gt=0"`
	Weight               *float64 `json:"weight"                  validate:"omitempty,gt=0"`
	Height               *float64 `json:"height"                  validate:"omitempty,gt=0"`
	VerifiedBloodGroupID string   `json:"verified_blood_group_id" validate:"required,max=64"`
	IsEligible           *bool    `json:"is_eligible"             validate:"required"`
	RejectionReason      *string  `json:"rejection_reason"        validate:"omitempty,max=500"`
}

type StartDonationRequest struct {
	Notes *string `json:"notes" validate:"omitempty,max=500"`
}

type CompleteDonationRequest struct {
	DonationDate    string  `json:"donation_date"    validate:"required"`
	QuantityDonated float64 `json:"quantity_donated" validate:"gt=0"`
	QuantityUnits   int     `json:"quantity_units"   validate:"gte=1"`
	Notes           *string `json:"notes"            validate:"omitempty,max=500"`
}

type ComplicationRequest struct {
	ComplicationType string  `json:"complication_type" validate:"required,max=100"`
	Description      string  `json:"description"       validate:"required,max=1000"`
	CollectedAmount  float64 `json:"collected_amount"  validate:"gte=0"`
	QuantityUnits    int     `json:"quantity_units"    validate:"gte=0"`
	IsUsable         *bool   `json:"is_usable"         validate:"required"`
	ActionTaken      string  `json:"action_taken"      validate:"required,max=500"`
}

type DonationEventResponse struct {
	ID                   string   `json:"id"`
	AppointmentRequestID string   `json:"appointment_request_id"`
	DonorID              string   `json:"donor_id"`
	Status               string   `json:"status"`
	BloodPressure        *string  `json:"blood_pressure,omitempty"`
	Temperature          *float64 `json:"temperature,omitempty"`
	HemoglobinLevel      *float64 `json:"hemoglobin_level,omitempty"`
	Weight               *float64 `json:"weight,omitempty"`
	Height               *float64 `json:"height,omitempty"`
	VerifiedBloodGroupID *string  `json:"verified_blood_group_id,omitempty"`
	IsEligible           *bool    `json:"is_eligible,omitempty"`
	RejectionReason      *string  `json:"rejection_reason,omitempty"`
	HealthCheckAt        *string  `json:"health_check_at,omitempty"`
	StartedAt            *string  `json:"started_at,omitempty"`
	DonationDate         *string  `json:"donation_date,omitempty"`
	QuantityDonated      *float64 `json:"quantity_donated,omitempty"`
	QuantityUnits        *int     `json:"quantity_units,omitempty"`
	ComplicationType     *string  `json:"complication_type,omitempty"`
	ComplicationDesc     *string  `json:"complication_description,omitempty"`
	IsUsable             *bool    `json:"is_usable,omitempty"`
	ActionTaken          *string  `json:"action_taken,omitempty"`
	Notes                *string  `json:"notes,omitempty"`
	gDto.Metadata
}

func (r *DonationEventResponse) FromModel(mod model.DonationEvent) {
	r.ID = mod.ID
	r.AppointmentRequestID = mod.AppointmentRequestID
	r.DonorID = mod.DonorID
	r.Status = string(mod.Status)
	r.BloodPressure = mod.BloodPressure
	r.Temperature = mod.Temperature
	r.HemoglobinLevel = mod.HemoglobinLevel
	r.Weight = mod.Weight
	r.Height = mod.Height
	r.VerifiedBloodGroupID = mod.VerifiedBloodGroupID
	r.IsEligible = mod.IsEligible
	r.RejectionReason = mod.RejectionReason
	r.HealthCheckAt = formatTimePtr(mod.HealthCheckAt, constant.DateFormat)
	r.StartedAt = formatTimePtr(mod.StartedAt, constant.DateFormat)
	r.DonationDate = formatTimePtr(mod.DonationDate, constant.DateOnlyLayout)
	r.QuantityDonated = mod.QuantityDonated
	r.QuantityUnits = mod.QuantityUnits
	r.ComplicationType = mod.ComplicationType
	r.ComplicationDesc = mod.ComplicationDesc
	r.IsUsable = mod.IsUsable
	r.ActionTaken = mod.ActionTaken
	r.Notes = mod.Notes
	r.Metadata.FromModel(mod.Metadata)
}

func formatTimePtr(t *time.Time, layout string) *string {
	if t == nil {
		return nil
	}

	formatted := timezone.Format(*t, layout)

	return &formatted
}
