package main

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"hemobook/config"
	"hemobook/infras/postgres"
	bloodRequestModel "hemobook/internal/domains/bloodrequest/model"
	capacityModel "hemobook/internal/domains/capacity/model"
	"hemobook/shared/logger"
	"hemobook/shared/timezone"
)

const (
	seedActor         = "system:seed"
	locationCount     = 3
	bloodRequestCount = 10
)

var bloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

var componentTypes = []string{"whole_blood", "plasma", "platelets"}

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	gofakeit.Seed(time.Now().UnixNano())

	db := postgres.New(cfg)

	locations := make([]string, 0, locationCount)
	for i := 0; i < locationCount; i++ {
		locations = append(locations, uuid.NewString())
	}

	if err := seedCapacitySlots(db.Write, locations); err != nil {
		log.Fatal().Err(err).Msg("failed to seed capacity slots")
	}

	if err := seedBloodRequests(db.Write, bloodRequestCount); err != nil {
		log.Fatal().Err(err).Msg("failed to seed blood requests")
	}

	log.Info().Msg("Seeding completed.")
}

// seedCapacitySlots defines one slot per weekday and time slot for each
// location, effective for the next six months.
func seedCapacitySlots(db *sqlx.DB, locations []string) error {
	now := timezone.Now()
	effective := now.AddDate(0, 0, -1)
	expiry := now.AddDate(0, 6, 0)

	query := `
		INSERT INTO capacity_slots (
			id, location_id, day_of_week, time_slot, start_hour, end_hour,
			total_capacity, effective_date, expiry_date, is_active,
			created_at, created_by, modified_at, modified_by
		) VALUES (
			:id, :location_id, :day_of_week, :time_slot, :start_hour, :end_hour,
			:total_capacity, :effective_date, :expiry_date, :is_active,
			:created_at, :created_by, :modified_at, :modified_by
		)`

	total := 0

	for _, locationID := range locations {
		for dayOfWeek := 1; dayOfWeek <= 5; dayOfWeek++ {
			for _, timeSlot := range capacityModel.TimeSlots {
				startHour, endHour := timeSlot.Span()

				slot := capacityModel.CapacitySlot{
					ID:            uuid.NewString(),
					LocationID:    locationID,
					DayOfWeek:     dayOfWeek,
					TimeSlot:      timeSlot,
					StartHour:     startHour,
					EndHour:       endHour,
					TotalCapacity: gofakeit.Number(2, 8),
					EffectiveDate: effective,
					ExpiryDate:    expiry,
					IsActive:      true,
				}
				slot.Metadata.CreatedAt = now
				slot.Metadata.CreatedBy = seedActor
				slot.Metadata.ModifiedAt = now
				slot.Metadata.ModifiedBy = seedActor

				if _, err := db.NamedExec(query, slot); err != nil {
					return err
				}

				total++
			}
		}
	}

	log.Info().Int("count", total).Msg("capacity slots seeded")

	return nil
}

func seedBloodRequests(db *sqlx.DB, count int) error {
	now := timezone.Now()

	urgencies := []bloodRequestModel.Urgency{
		bloodRequestModel.UrgencyEmergency,
		bloodRequestModel.UrgencyUrgent,
		bloodRequestModel.UrgencyRegular,
	}

	query := `
		INSERT INTO blood_requests (
			id, blood_group_id, component_type_id, quantity_units, urgency, status,
			created_at, created_by, modified_at, modified_by
		) VALUES (
			:id, :blood_group_id, :component_type_id, :quantity_units, :urgency, :status,
			:created_at, :created_by, :modified_at, :modified_by
		)`

	for i := 0; i < count; i++ {
		request := bloodRequestModel.BloodRequest{
			ID:              uuid.NewString(),
			BloodGroupID:    gofakeit.RandomString(bloodGroups),
			ComponentTypeID: gofakeit.RandomString(componentTypes),
			QuantityUnits:   gofakeit.Number(1, 6),
			Urgency:         urgencies[i%len(urgencies)],
			Status:          bloodRequestModel.StatusPending,
		}
		request.Metadata.CreatedAt = now
		request.Metadata.CreatedBy = seedActor
		request.Metadata.ModifiedAt = now
		request.Metadata.ModifiedBy = seedActor

		if _, err := db.NamedExec(query, request); err != nil {
			return err
		}
	}

	log.Info().Int("count", count).Msg("blood requests seeded")

	return nil
}
