package dto

import (
	"time"

	"github.com/google/uuid"

	"hemobook/internal/domains/appointment/model"
	"hemobook/shared/constant"
	gDto "hemobook/shared/dto"
	gModel "hemobook/shared/model"
	"hemobook/shared/timezone"
)

type CreateAppointmentRequest struct {
	DonorID               string  `json:"donor_id"                 validate:"required,max=64"`
	LocationID            string  `json:"location_id"              validate:"required,max=64"`
	BloodGroupID          string  `json:"blood_group_id"           validate:"required,max=64"`
	ComponentTypeID       string  `json:"component_type_id"        validate:"required,max=64"`
	CapacitySlotID        string  `json:"capacity_slot_id"         validate:"required,max=64"`
	PreferredDate         string  `json:"preferred_date"           validate:"required"`
	RequestType           string  `json:"request_type"             validate:"required,oneof=donor_initiated staff_assignment"`
	IsUrgent              bool    `json:"is_urgent"`
	Priority              int     `json:"priority"                 validate:"gte=1,lte=5"`
	RelatedBloodRequestID *string `json:"related_blood_request_id" validate:"omitempty,max=64"`
	AutoExpireHours       *int    `json:"auto_expire_hours"        validate:"omitempty,gte=1"`
}

func (c *CreateAppointmentRequest) ToModel(user, timeSlot string) (model.AppointmentRequest, error) {
	preferred, err := timezone.Parse(constant.DateOnlyLayout, c.PreferredDate)
	if err != nil {
		return model.AppointmentRequest{}, err
	}

	now := timezone.Now()

	appointment := model.AppointmentRequest{
		ID:                    uuid.NewString(),
		DonorID:               c.DonorID,
		LocationID:            c.LocationID,
		BloodGroupID:          c.BloodGroupID,
		ComponentTypeID:       c.ComponentTypeID,
		CapacitySlotID:        c.CapacitySlotID,
		PreferredDate:         preferred,
		PreferredTimeSlot:     timeSlot,
		RequestType:           model.RequestType(c.RequestType),
		InitiatedByUserID:     user,
		Status:                model.StatusPending,
		IsUrgent:              c.IsUrgent,
		Priority:              c.Priority,
		RelatedBloodRequestID: c.RelatedBloodRequestID,
		AutoExpireHours:       c.AutoExpireHours,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}

	if c.AutoExpireHours != nil {
		expiresAt := now.Add(time.Duration(*c.AutoExpireHours) * time.Hour)
		appointment.ExpiresAt = &expiresAt
	}

	return appointment, nil
}

type ApproveAppointmentRequest struct {
	Note *string `json:"note" validate:"omitempty,max=500"`
}

type RejectAppointmentRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type DonorRespondRequest struct {
	Accepted *bool   `json:"accepted" validate:"required"`
	Notes    *string `json:"notes"    validate:"omitempty,max=500"`
}

type AppointmentResponse struct {
	ID                    string  `json:"id"`
	DonorID               string  `json:"donor_id"`
	LocationID            string  `json:"location_id"`
	BloodGroupID          string  `json:"blood_group_id"`
	ComponentTypeID       string  `json:"component_type_id"`
	CapacitySlotID        string  `json:"capacity_slot_id"`
	PreferredDate         string  `json:"preferred_date"`
	PreferredTimeSlot     string  `json:"preferred_time_slot"`
	RequestType           string  `json:"request_type"`
	InitiatedByUserID     string  `json:"initiated_by_user_id"`
	Status                string  `json:"status"`
	IsUrgent              bool    `json:"is_urgent"`
	Priority              int     `json:"priority"`
	RelatedBloodRequestID *string `json:"related_blood_request_id,omitempty"`
	AutoExpireHours       *int    `json:"auto_expire_hours,omitempty"`
	ExpiresAt             *string `json:"expires_at,omitempty"`
	DonorAccepted         *bool   `json:"donor_accepted,omitempty"`
	DonorResponseNotes    *string `json:"donor_response_notes,omitempty"`
	ReviewedByUserID      *string `json:"reviewed_by_user_id,omitempty"`
	ReviewedAt            *string `json:"reviewed_at,omitempty"`
	ReviewNote            *string `json:"review_note,omitempty"`
	RejectionReason       *string `json:"rejection_reason,omitempty"`
	CancellationReason    *string `json:"cancellation_reason,omitempty"`
	ConfirmedDate         *string `json:"confirmed_date,omitempty"`
	ConfirmedLocationID   *string `json:"confirmed_location_id,omitempty"`
	CheckedInAt           *string `json:"checked_in_at,omitempty"`
	gDto.Metadata
}

func (r *AppointmentResponse) FromModel(mod model.AppointmentRequest) {
	r.ID = mod.ID
	r.DonorID = mod.DonorID
	r.LocationID = mod.LocationID
	r.BloodGroupID = mod.BloodGroupID
	r.ComponentTypeID = mod.ComponentTypeID
	r.CapacitySlotID = mod.CapacitySlotID
	r.PreferredDate = timezone.Format(mod.PreferredDate, constant.DateOnlyLayout)
	r.PreferredTimeSlot = mod.PreferredTimeSlot
	r.RequestType = string(mod.RequestType)
	r.InitiatedByUserID = mod.InitiatedByUserID
	r.Status = string(mod.Status)
	r.IsUrgent = mod.IsUrgent
	r.Priority = mod.Priority
	r.RelatedBloodRequestID = mod.RelatedBloodRequestID
	r.AutoExpireHours = mod.AutoExpireHours
	r.ExpiresAt = formatTimePtr(mod.ExpiresAt, constant.DateFormat)
	r.DonorAccepted = mod.DonorAccepted
	r.DonorResponseNotes = mod.DonorResponseNotes
	r.ReviewedByUserID = mod.ReviewedByUserID
	r.ReviewedAt = formatTimePtr(mod.ReviewedAt, constant.DateFormat)
	r.ReviewNote = mod.ReviewNote
	r.RejectionReason = mod.RejectionReason
	r.CancellationReason = mod.CancellationReason
	r.ConfirmedDate = formatTimePtr(mod.ConfirmedDate, constant.DateOnlyLayout)
	r.ConfirmedLocationID = mod.ConfirmedLocationID
	r.CheckedInAt = formatTimePtr(mod.CheckedInAt, constant.DateFormat)
	r.Metadata.FromModel(mod.Metadata)
}

type GetAppointmentsResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	TotalData    int                   `json:"total_data"`
	TotalPage    int                   `json:"total_page"`
}

func formatTimePtr(t *time.Time, layout string) *string {
	if t == nil {
		return nil
	}

	formatted := timezone.Format(*t, layout)

	return &formatted
}
