package model

import (
	"hemobook/shared/model"
)

const (
	TableName  = "blood_requests"
	EntityName = "blood request"

	FieldID              = "id"
	FieldBloodGroupID    = "blood_group_id"
	FieldComponentTypeID = "component_type_id"
	FieldQuantityUnits   = "quantity_units"
	FieldUrgency         = "urgency"
	FieldStatus          = "status"
	FieldNotes           = "notes"
)

type Urgency string

const (
	UrgencyEmergency Urgency = "emergency"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyRegular   Urgency = "regular"
)

// IsUrgentTier reports whether assignments spawned from this request carry
// the urgent flag.
func (u Urgency) IsUrgentTier() bool {
	return u == UrgencyEmergency || u == UrgencyUrgent
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusFulfilled  Status = "fulfilled"
	StatusCancelled  Status = "cancelled"
)

type BloodRequest struct {
	ID              string  `db:"id"`
	BloodGroupID    string  `db:"blood_group_id"`
	ComponentTypeID string  `db:"component_type_id"`
	QuantityUnits   int     `db:"quantity_units"`
	Urgency         Urgency `db:"urgency"`
	Status          Status  `db:"status"`
	Notes           *string `db:"notes"`
	model.Metadata
}
