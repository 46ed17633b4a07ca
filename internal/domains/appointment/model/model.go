package model

import (
	"time"

	"hemobook/shared/model"
)

const (
	TableName  = "appointment_requests"
	EntityName = "appointment request"

	FieldID                   = "id"
	FieldDonorID              = "donor_id"
	FieldLocationID           = "location_id"
	FieldBloodGroupID         = "blood_group_id"
	FieldComponentTypeID      = "component_type_id"
	FieldCapacitySlotID       = "capacity_slot_id"
	FieldPreferredDate        = "preferred_date"
	FieldPreferredTimeSlot    = "preferred_time_slot"
	FieldRequestType          = "request_type"
	FieldInitiatedByUserID    = "initiated_by_user_id"
	FieldStatus               = "status"
	FieldIsUrgent             = "is_urgent"
	FieldPriority             = "priority"
	FieldRelatedBloodRequest  = "related_blood_request_id"
	FieldAutoExpireHours      = "auto_expire_hours"
	FieldExpiresAt            = "expires_at"
	FieldDonorAccepted        = "donor_accepted"
	FieldDonorResponseNotes   = "donor_response_notes"
	FieldReviewedByUserID     = "reviewed_by_user_id"
	FieldReviewedAt           = "reviewed_at"
	FieldReviewNote           = "review_note"
	FieldRejectionReason      = "rejection_reason"
	FieldCancellationReason   = "cancellation_reason"
	FieldConfirmedDate        = "confirmed_date"
	FieldConfirmedLocationID  = "confirmed_location_id"
	FieldCheckedInAt          = "checked_in_at"

	DonorDeclinedReason = "donor declined"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
	StatusCheckedIn Status = "checked_in"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// NonTerminalStatuses are the statuses that hold a capacity reservation.
// Reservation release is implicit: a request in any other status no longer
// counts against its slot.
var NonTerminalStatuses = []Status{StatusPending, StatusApproved, StatusCheckedIn}

var transitions = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusRejected, StatusCancelled, StatusExpired},
	StatusApproved:  {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn: {StatusCompleted, StatusFailed},
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

type RequestType string

const (
	RequestTypeDonorInitiated  RequestType = "donor_initiated"
	RequestTypeStaffAssignment RequestType = "staff_assignment"
)

type AppointmentRequest struct {
	ID                    string      `db:"id"`
	DonorID               string      `db:"donor_id"`
	LocationID            string      `db:"location_id"`
	BloodGroupID          string      `db:"blood_group_id"`
	ComponentTypeID       string      `db:"component_type_id"`
	CapacitySlotID        string      `db:"capacity_slot_id"`
	PreferredDate         time.Time   `db:"preferred_date"`
	PreferredTimeSlot     string      `db:"preferred_time_slot"`
	RequestType           RequestType `db:"request_type"`
	InitiatedByUserID     string      `db:"initiated_by_user_id"`
	Status                Status      `db:"status"`
	IsUrgent              bool        `db:"is_urgent"`
	Priority              int         `db:"priority"`
	RelatedBloodRequestID *string     `db:"related_blood_request_id"`
	AutoExpireHours       *int        `db:"auto_expire_hours"`
	ExpiresAt             *time.Time  `db:"expires_at"`
	DonorAccepted         *bool       `db:"donor_accepted"`
	DonorResponseNotes    *string     `db:"donor_response_notes"`
	ReviewedByUserID      *string     `db:"reviewed_by_user_id"`
	ReviewedAt            *time.Time  `db:"reviewed_at"`
	ReviewNote            *string     `db:"review_note"`
	RejectionReason       *string     `db:"rejection_reason"`
	CancellationReason    *string     `db:"cancellation_reason"`
	ConfirmedDate         *time.Time  `db:"confirmed_date"`
	ConfirmedLocationID   *string     `db:"confirmed_location_id"`
	CheckedInAt           *time.Time  `db:"checked_in_at"`
	model.Metadata
}

// IsStale reports whether a pending request has outlived its auto-expire
// deadline at the given instant.
func (a *AppointmentRequest) IsStale(now time.Time) bool {
	return a.Status == StatusPending && a.ExpiresAt != nil && a.ExpiresAt.Before(now)
}

// AwaitingDonorResponse reports whether the donor-response gate is still
// open: a staff assignment the donor has not answered yet.
func (a *AppointmentRequest) AwaitingDonorResponse() bool {
	return a.RequestType == RequestTypeStaffAssignment &&
		a.Status == StatusPending &&
		a.DonorAccepted == nil
}
