package dto

import (
	appointmentDto "hemobook/internal/domains/appointment/model/dto"
	"hemobook/internal/domains/bloodrequest/model"
	gDto "hemobook/shared/dto"
)

type AssignDonorsRequest struct {
	DonorIDs       []string `json:"donor_ids"        validate:"required,min=1,dive,required,max=64"`
	LocationID     string   `json:"location_id"      validate:"required,max=64"`
	CapacitySlotID string   `json:"capacity_slot_id" validate:"required,max=64"`
	PreferredDate  string   `json:"preferred_date"   validate:"required"`
	Priority       int      `json:"priority"         validate:"gte=1,lte=5"`
}

// AssignmentFailure carries one donor's failure without aborting the rest of
// the batch.
type AssignmentFailure struct {
	DonorID string `json:"donor_id"`
	Error   string `json:"error"`
	Kind    string `json:"kind"`
}

type AssignDonorsResponse struct {
	BloodRequestID string                               `json:"blood_request_id"`
	RequestStatus  string                               `json:"request_status"`
	Successes      []appointmentDto.AppointmentResponse `json:"successes"`
	Failures       []AssignmentFailure                  `json:"failures"`
}

type BloodRequestResponse struct {
	ID              string  `json:"id"`
	BloodGroupID    string  `json:"blood_group_id"`
	ComponentTypeID string  `json:"component_type_id"`
	QuantityUnits   int     `json:"quantity_units"`
	Urgency         string  `json:"urgency"`
	Status          string  `json:"status"`
	Notes           *string `json:"notes,omitempty"`
	gDto.Metadata
}

func (r *BloodRequestResponse) FromModel(mod model.BloodRequest) {
	r.ID = mod.ID
	r.BloodGroupID = mod.BloodGroupID
	r.ComponentTypeID = mod.ComponentTypeID
	r.QuantityUnits = mod.QuantityUnits
	r.Urgency = string(mod.Urgency)
	r.Status = string(mod.Status)
	r.Notes = mod.Notes
	r.Metadata.FromModel(mod.Metadata)
}
