package service

import (
	"time"

	"hemobook/internal/domains/capacity/model"
)

// GridCell is one one-hour cell of the weekly scheduling grid. Slot is nil
// when no defined slot covers the cell.
type GridCell struct {
	Date        time.Time
	DayOfWeek   int
	TimeSlot    model.TimeSlot
	Window      model.HourWindow
	Slot        *model.CapacitySlot
	IsPast      bool
	IsAvailable bool
}

// BuildGrid enumerates the canonical hour windows of every day in the week
// starting at weekStart and resolves each cell against the slot catalog. The
// result is ordered by date, then window start hour. The projection depends
// only on its inputs, which keeps week navigation deterministic for a fixed
// `now`.
func BuildGrid(slots []model.CapacitySlot, weekStart, now time.Time, loc *time.Location) []GridCell {
	cells := make([]GridCell, 0, 7*hourWindowsPerDay(model.TimeSlots))

	for day := 0; day < 7; day++ {
		base := weekStart.AddDate(0, 0, day)
		date := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, loc)

		for _, ts := range model.TimeSlots {
			for _, window := range ts.HourWindows() {
				cell := GridCell{
					Date:      date,
					DayOfWeek: int(date.Weekday()),
					TimeSlot:  ts,
					Window:    window,
				}

				cell.Slot = resolveSlot(slots, date, ts, window)

				cellStart := time.Date(date.Year(), date.Month(), date.Day(), window.StartHour, 0, 0, 0, loc)
				cell.IsPast = cellStart.Before(now)
				cell.IsAvailable = cell.Slot != nil && cell.Slot.IsActive && !cell.IsPast

				cells = append(cells, cell)
			}
		}
	}

	return cells
}

// resolveSlot picks the slot covering a cell. When an active and an inactive
// definition both cover the same cell the active one wins, so a deactivated
// slot never hides its replacement.
func resolveSlot(slots []model.CapacitySlot, date time.Time, ts model.TimeSlot, window model.HourWindow) *model.CapacitySlot {
	var match *model.CapacitySlot

	for i := range slots {
		slot := &slots[i]

		if slot.TimeSlot != ts || !slot.CoversDate(date) {
			continue
		}

		if slot.StartHour > window.StartHour || slot.EndHour < window.EndHour {
			continue
		}

		if match == nil || (!match.IsActive && slot.IsActive) {
			match = slot
		}
	}

	return match
}

func hourWindowsPerDay(timeSlots []model.TimeSlot) int {
	total := 0
	for _, ts := range timeSlots {
		total += len(ts.HourWindows())
	}

	return total
}
