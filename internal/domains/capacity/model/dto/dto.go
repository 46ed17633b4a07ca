package dto

import (
	"time"

	"github.com/google/uuid"

	"hemobook/internal/domains/capacity/model"
	"hemobook/shared/constant"
	gDto "hemobook/shared/dto"
	gModel "hemobook/shared/model"
	"hemobook/shared/timezone"
)

type DefineSlotRequest struct {
	LocationID    string `json:"location_id"    validate:"required,max=64"`
	DayOfWeek     int    `json:"day_of_week"    validate:"gte=0,lte=6"`
	TimeSlot      string `json:"time_slot"      validate:"required,oneof=morning afternoon evening"`
	StartHour     int    `json:"start_hour"     validate:"gte=0,lte=23"`
	EndHour       int    `json:"end_hour"       validate:"gte=1,lte=24"`
	TotalCapacity int    `json:"total_capacity" validate:"gte=0"`
	EffectiveDate string `json:"effective_date" validate:"required"`
	ExpiryDate    string `json:"expiry_date"    validate:"required"`
}

func (c *DefineSlotRequest) ToModel(user string) (model.CapacitySlot, error) {
	effective, err := timezone.Parse(constant.DateOnlyLayout, c.EffectiveDate)
	if err != nil {
		return model.CapacitySlot{}, err
	}

	expiry, err := timezone.Parse(constant.DateOnlyLayout, c.ExpiryDate)
	if err != nil {
		return model.CapacitySlot{}, err
	}

	return model.CapacitySlot{
		ID:            uuid.NewString(),
		LocationID:    c.LocationID,
		DayOfWeek:     c.DayOfWeek,
		TimeSlot:      model.TimeSlot(c.TimeSlot),
		StartHour:     c.StartHour,
		EndHour:       c.EndHour,
		TotalCapacity: c.TotalCapacity,
		EffectiveDate: effective,
		ExpiryDate:    expiry,
		IsActive:      true,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}, nil
}

type SlotResponse struct {
	ID            string `json:"id"`
	LocationID    string `json:"location_id"`
	DayOfWeek     int    `json:"day_of_week"`
	TimeSlot      string `json:"time_slot"`
	StartHour     int    `json:"start_hour"`
	EndHour       int    `json:"end_hour"`
	TotalCapacity int    `json:"total_capacity"`
	EffectiveDate string `json:"effective_date"`
	ExpiryDate    string `json:"expiry_date"`
	IsActive      bool   `json:"is_active"`
	gDto.Metadata
}

func (r *SlotResponse) FromModel(mod model.CapacitySlot) {
	r.ID = mod.ID
	r.LocationID = mod.LocationID
	r.DayOfWeek = mod.DayOfWeek
	r.TimeSlot = string(mod.TimeSlot)
	r.StartHour = mod.StartHour
	r.EndHour = mod.EndHour
	r.TotalCapacity = mod.TotalCapacity
	r.EffectiveDate = timezone.Format(mod.EffectiveDate, constant.DateOnlyLayout)
	r.ExpiryDate = timezone.Format(mod.ExpiryDate, constant.DateOnlyLayout)
	r.IsActive = mod.IsActive
	r.Metadata.FromModel(mod.Metadata)
}

type WeekScheduleResponse struct {
	LocationID string         `json:"location_id"`
	WeekStart  string         `json:"week_start"`
	Slots      []SlotResponse `json:"slots"`
	TotalData  int            `json:"total_data"`
}

func (r *WeekScheduleResponse) FromModels(locationID string, weekStart time.Time, models []model.CapacitySlot) {
	r.LocationID = locationID
	r.WeekStart = timezone.Format(weekStart, constant.DateOnlyLayout)
	r.TotalData = len(models)

	r.Slots = make([]SlotResponse, len(models))
	for i, mod := range models {
		r.Slots[i].FromModel(mod)
	}
}

// GridCellResponse is one bookable cell of the weekly scheduling grid.
type GridCellResponse struct {
	Date        string        `json:"date"`
	DayOfWeek   int           `json:"day_of_week"`
	TimeSlot    string        `json:"time_slot"`
	StartHour   int           `json:"start_hour"`
	EndHour     int           `json:"end_hour"`
	Slot        *SlotResponse `json:"slot,omitempty"`
	IsPast      bool          `json:"is_past"`
	IsAvailable bool          `json:"is_available"`
}

type GridResponse struct {
	LocationID string             `json:"location_id"`
	WeekStart  string             `json:"week_start"`
	Cells      []GridCellResponse `json:"cells"`
	TotalData  int                `json:"total_data"`
}
