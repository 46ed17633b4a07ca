package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"hemobook/config"
	"hemobook/infras/otel"
	"hemobook/internal/domains/capacity/model"
	"hemobook/internal/domains/capacity/model/dto"
	"hemobook/internal/domains/capacity/repository"
	"hemobook/shared"
	"hemobook/shared/cache"
	"hemobook/shared/constant"
	gDto "hemobook/shared/dto"
	"hemobook/shared/failure"
	"hemobook/shared/timezone"
)

const (
	cacheGetSlot      = "capacity:get"
	cacheWeekSchedule = "capacity:week"
)

type Capacity interface {
	DefineSlot(ctx context.Context, req dto.DefineSlotRequest) (dto.SlotResponse, error)
	Get(ctx context.Context, id string) (dto.SlotResponse, error)
	ListWeek(ctx context.Context, locationID string, weekStart time.Time) (dto.WeekScheduleResponse, error)
	ResolveGrid(ctx context.Context, locationID string, weekStart, now time.Time) (dto.GridResponse, error)
	Deactivate(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo  repository.Capacity
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Capacity, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Capacity {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) DefineSlot(ctx context.Context, req dto.DefineSlotRequest) (res dto.SlotResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".DefineSlot")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	slot, err := req.ToModel(user)
	if err != nil {
		log.Error().Err(err).Msg("failed to parse capacity slot request")

		return res, failure.BadRequestFromString(fmt.Sprintf("invalid date format: %v", err)) // nolint:wrapcheck
	}

	if err = validateSlotRule(slot); err != nil {
		return res, err
	}

	conflict, err := s.repo.Exist(ctx, overlapFilter(slot))
	if err != nil {
		log.Error().Err(err).Msg("failed to check for overlapping capacity slots")

		return res, fmt.Errorf("failed to check for overlapping capacity slots: %w", err)
	}

	if conflict {
		return res, failure.Conflict("an active capacity slot already covers this day, window and date range") // nolint:wrapcheck
	}

	if err = s.repo.Insert(ctx, slot); err != nil {
		log.Error().Err(err).Msg("failed to create capacity slot")

		return res, fmt.Errorf("failed to create capacity slot: %w", err)
	}

	res.FromModel(slot)

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheWeekSchedule)
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.SlotResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetSlot, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for capacity slot")

		return res, nil
	}

	slot, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get capacity slot")

		return res, fmt.Errorf("failed to get capacity slot: %w", err)
	}

	if slot.ID == constant.Empty {
		return res, failure.NotFound("capacity slot not found") // nolint:wrapcheck
	}

	res.FromModel(slot)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save capacity slot to cache")
		}
	}()

	return res, nil
}

// ListWeek returns every slot whose [effective, expiry] range intersects the
// seven days starting at weekStart, active or not.
func (s *serviceImpl) ListWeek(ctx context.Context, locationID string, weekStart time.Time) (res dto.WeekScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListWeek")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheWeekSchedule, gDto.QueryParams{}, weekFilter(locationID, weekStart))

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for week schedule")

		return res, nil
	}

	slots, err := s.slotsForWeek(ctx, locationID, weekStart)
	if err != nil {
		return res, err
	}

	res.FromModels(locationID, weekStart, slots)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save week schedule to cache")
		}
	}()

	return res, nil
}

// ResolveGrid projects the weekly scheduling grid. The projection is pure
// given `now` and is recomputed from the catalog on every call, so week
// navigation always reflects the latest slot definitions.
func (s *serviceImpl) ResolveGrid(ctx context.Context, locationID string, weekStart, now time.Time) (res dto.GridResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ResolveGrid")
	defer scope.End()
	defer scope.TraceIfError(err)

	slots, err := s.slotsForWeek(ctx, locationID, weekStart)
	if err != nil {
		return res, err
	}

	cells := BuildGrid(slots, weekStart, now, timezone.GetLocation())

	res.LocationID = locationID
	res.WeekStart = timezone.Format(weekStart, constant.DateOnlyLayout)
	res.Cells = make([]dto.GridCellResponse, len(cells))
	res.TotalData = len(cells)

	for i, cell := range cells {
		res.Cells[i] = dto.GridCellResponse{
			Date:        timezone.Format(cell.Date, constant.DateOnlyLayout),
			DayOfWeek:   cell.DayOfWeek,
			TimeSlot:    string(cell.TimeSlot),
			StartHour:   cell.Window.StartHour,
			EndHour:     cell.Window.EndHour,
			IsPast:      cell.IsPast,
			IsAvailable: cell.IsAvailable,
		}

		if cell.Slot != nil {
			slotRes := dto.SlotResponse{}
			slotRes.FromModel(*cell.Slot)
			res.Cells[i].Slot = &slotRes
		}
	}

	return res, nil
}

// Deactivate soft-deletes a slot. Appointments already booked against it are
// left untouched.
func (s *serviceImpl) Deactivate(ctx context.Context, id string) error {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Deactivate")
	defer scope.End()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if capacity slot exists")

		return fmt.Errorf("failed to check if capacity slot exists: %w", err)
	}

	if !exist {
		return failure.NotFound("capacity slot not found") // nolint:wrapcheck
	}

	updatedFields := map[string]any{
		model.FieldIsActive:      false,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	}

	if err := s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to deactivate capacity slot")

		return fmt.Errorf("failed to deactivate capacity slot: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetSlot, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete capacity slot from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheWeekSchedule)
	}()

	return nil
}

func (s *serviceImpl) slotsForWeek(ctx context.Context, locationID string, weekStart time.Time) ([]model.CapacitySlot, error) {
	slots, err := s.repo.GetAll(ctx, gDto.QueryParams{}, weekFilter(locationID, weekStart))
	if err != nil {
		log.Error().Err(err).Msg("failed to list capacity slots for week")

		return nil, fmt.Errorf("failed to list capacity slots for week: %w", err)
	}

	return slots, nil
}

func weekFilter(locationID string, weekStart time.Time) gDto.FilterGroup {
	weekEnd := weekStart.AddDate(0, 0, 6)

	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldLocationID,
				Operator: gDto.FilterOperatorEq,
				Value:    locationID,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldEffectiveDate,
				Operator: gDto.FilterOperatorLessEq,
				Value:    weekEnd,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldExpiryDate,
				Operator: gDto.FilterOperatorGreaterEq,
				Value:    weekStart,
				Table:    model.TableName,
			},
		},
	}
}

func validateSlotRule(slot model.CapacitySlot) error {
	if slot.ExpiryDate.Before(slot.EffectiveDate) {
		return failure.BadRequestFromString("expiry_date must not be before effective_date") // nolint:wrapcheck
	}

	if slot.StartHour >= slot.EndHour {
		return failure.BadRequestFromString("start_hour must be before end_hour") // nolint:wrapcheck
	}

	spanStart, spanEnd := slot.TimeSlot.Span()
	if spanStart == 0 && spanEnd == 0 {
		return failure.BadRequestFromString("unknown time slot") // nolint:wrapcheck
	}

	if slot.StartHour < spanStart || slot.EndHour > spanEnd {
		return failure.BadRequestFromString(fmt.Sprintf("hour window must fall within the %s span (%02d:00-%02d:00)", slot.TimeSlot, spanStart, spanEnd)) // nolint:wrapcheck
	}

	return nil
}

// overlapFilter matches active slots on the same location, weekday and time
// slot whose hour window and date range both intersect the candidate's.
func overlapFilter(slot model.CapacitySlot) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldLocationID,
				Operator: gDto.FilterOperatorEq,
				Value:    slot.LocationID,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldDayOfWeek,
				Operator: gDto.FilterOperatorEq,
				Value:    slot.DayOfWeek,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldTimeSlot,
				Operator: gDto.FilterOperatorEq,
				Value:    string(slot.TimeSlot),
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldIsActive,
				Operator: gDto.FilterOperatorEq,
				Value:    true,
				Table:    model.TableName,
			},
			gDto.Filter{
				ArgName:  "overlap_start_hour",
				Field:    model.FieldStartHour,
				Operator: gDto.FilterOperatorLessEq,
				Value:    slot.EndHour - 1,
				Table:    model.TableName,
			},
			gDto.Filter{
				ArgName:  "overlap_end_hour",
				Field:    model.FieldEndHour,
				Operator: gDto.FilterOperatorGreaterEq,
				Value:    slot.StartHour + 1,
				Table:    model.TableName,
			},
			gDto.Filter{
				ArgName:  "overlap_effective",
				Field:    model.FieldEffectiveDate,
				Operator: gDto.FilterOperatorLessEq,
				Value:    slot.ExpiryDate,
				Table:    model.TableName,
			},
			gDto.Filter{
				ArgName:  "overlap_expiry",
				Field:    model.FieldExpiryDate,
				Operator: gDto.FilterOperatorGreaterEq,
				Value:    slot.EffectiveDate,
				Table:    model.TableName,
			},
		},
	}
}
