package model

import (
	"time"

	"hemobook/shared/model"
)

const (
	TableName  = "capacity_slots"
	EntityName = "capacity slot"

	FieldID            = "id"
	FieldLocationID    = "location_id"
	FieldDayOfWeek     = "day_of_week"
	FieldTimeSlot      = "time_slot"
	FieldStartHour     = "start_hour"
	FieldEndHour       = "end_hour"
	FieldTotalCapacity = "total_capacity"
	FieldEffectiveDate = "effective_date"
	FieldExpiryDate    = "expiry_date"
	FieldIsActive      = "is_active"
)

type TimeSlot string

const (
	TimeSlotMorning   TimeSlot = "morning"
	TimeSlotAfternoon TimeSlot = "afternoon"
	TimeSlotEvening   TimeSlot = "evening"
)

var TimeSlots = []TimeSlot{TimeSlotMorning, TimeSlotAfternoon, TimeSlotEvening}

// HourWindow is a one-hour booking granularity inside a TimeSlot.
type HourWindow struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// Span returns the inclusive start and exclusive end hour a TimeSlot covers.
func (t TimeSlot) Span() (int, int) {
	switch t {
	case TimeSlotMorning:
		return 7, 12
	case TimeSlotAfternoon:
		return 12, 17
	case TimeSlotEvening:
		return 17, 21
	default:
		return 0, 0
	}
}

// HourWindows enumerates the canonical one-hour windows of a TimeSlot.
func (t TimeSlot) HourWindows() []HourWindow {
	start, end := t.Span()

	windows := make([]HourWindow, 0, end-start)
	for hour := start; hour < end; hour++ {
		windows = append(windows, HourWindow{StartHour: hour, EndHour: hour + 1})
	}

	return windows
}

// CapacitySlot is a recurring capacity rule: on every DayOfWeek between
// EffectiveDate and ExpiryDate the location accepts up to TotalCapacity
// concurrent donors within the [StartHour, EndHour) window.
type CapacitySlot struct {
	ID            string    `db:"id"`
	LocationID    string    `db:"location_id"`
	DayOfWeek     int       `db:"day_of_week"`
	TimeSlot      TimeSlot  `db:"time_slot"`
	StartHour     int       `db:"start_hour"`
	EndHour       int       `db:"end_hour"`
	TotalCapacity int       `db:"total_capacity"`
	EffectiveDate time.Time `db:"effective_date"`
	ExpiryDate    time.Time `db:"expiry_date"`
	IsActive      bool      `db:"is_active"`
	model.Metadata
}

// CoversDate reports whether the rule applies to the given calendar date:
// the date must fall on the slot's own weekday and inside the inclusive
// [EffectiveDate, ExpiryDate] range, compared by day.
func (s *CapacitySlot) CoversDate(date time.Time) bool {
	if int(date.Weekday()) != s.DayOfWeek {
		return false
	}

	day := truncateToDay(date)

	return !day.Before(truncateToDay(s.EffectiveDate)) && !day.After(truncateToDay(s.ExpiryDate))
}

// StartTimeOn anchors the slot's opening hour to a concrete date in the
// given location's zone.
func (s *CapacitySlot) StartTimeOn(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), s.StartHour, 0, 0, 0, loc)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
