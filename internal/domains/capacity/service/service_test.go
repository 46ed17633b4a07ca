package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"hemobook/config"
	"hemobook/infras/otel/mocks"
	capacityMocks "hemobook/internal/domains/capacity/mocks"
	"hemobook/internal/domains/capacity/model"
	"hemobook/internal/domains/capacity/model/dto"
	"hemobook/internal/domains/capacity/service"
	cacheMocks "hemobook/shared/cache/mocks"
	"hemobook/shared/constant"
	"hemobook/shared/failure"
	"hemobook/shared/timezone"
)

func newCapacityService(t *testing.T) (service.Capacity, *capacityMocks.MockCapacity, *cacheMocks.MockRedisCache) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockRepo := capacityMocks.NewMockCapacity(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	return service.New(mockRepo, cfg, mockCache, mockOtel), mockRepo, mockCache
}

func TestCapacityService_DefineSlot(t *testing.T) {
	validReq := dto.DefineSlotRequest{
		LocationID:    "loc-1",
		DayOfWeek:     1,
		TimeSlot:      "morning",
		StartHour:     9,
		EndHour:       10,
		TotalCapacity: 4,
		EffectiveDate: "2026-09-01",
		ExpiryDate:    "2026-12-31",
	}

	tests := []struct {
		name      string
		req       dto.DefineSlotRequest
		setupMock func(repo *capacityMocks.MockCapacity)
		wantErr   bool
		wantKind  string
	}{
		{
			name: "successful definition",
			req:  validReq,
			setupMock: func(repo *capacityMocks.MockCapacity) {
				repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)

				repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(nil)
			},
		},
		{
			name: "overlapping active slot",
			req:  validReq,
			setupMock: func(repo *capacityMocks.MockCapacity) {
				repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)
			},
			wantErr:  true,
			wantKind: failure.KindConflict,
		},
		{
			name: "expiry before effective",
			req: dto.DefineSlotRequest{
				LocationID:    "loc-1",
				DayOfWeek:     1,
				TimeSlot:      "morning",
				StartHour:     9,
				EndHour:       10,
				TotalCapacity: 4,
				EffectiveDate: "2026-12-31",
				ExpiryDate:    "2026-09-01",
			},
			setupMock: func(repo *capacityMocks.MockCapacity) {},
			wantErr:   true,
			wantKind:  failure.KindValidation,
		},
		{
			name: "window outside time slot span",
			req: dto.DefineSlotRequest{
				LocationID:    "loc-1",
				DayOfWeek:     1,
				TimeSlot:      "morning",
				StartHour:     13,
				EndHour:       14,
				TotalCapacity: 4,
				EffectiveDate: "2026-09-01",
				ExpiryDate:    "2026-12-31",
			},
			setupMock: func(repo *capacityMocks.MockCapacity) {},
			wantErr:   true,
			wantKind:  failure.KindValidation,
		},
		{
			name: "start hour at or after end hour",
			req: dto.DefineSlotRequest{
				LocationID:    "loc-1",
				DayOfWeek:     1,
				TimeSlot:      "morning",
				StartHour:     10,
				EndHour:       10,
				TotalCapacity: 4,
				EffectiveDate: "2026-09-01",
				ExpiryDate:    "2026-12-31",
			},
			setupMock: func(repo *capacityMocks.MockCapacity) {},
			wantErr:   true,
			wantKind:  failure.KindValidation,
		},
		{
			name: "unparseable date",
			req: dto.DefineSlotRequest{
				LocationID:    "loc-1",
				DayOfWeek:     1,
				TimeSlot:      "morning",
				StartHour:     9,
				EndHour:       10,
				TotalCapacity: 4,
				EffectiveDate: "01-09-2026",
				ExpiryDate:    "2026-12-31",
			},
			setupMock: func(repo *capacityMocks.MockCapacity) {},
			wantErr:   true,
			wantKind:  failure.KindValidation,
		},
		{
			name: "overlap check error",
			req:  validReq,
			setupMock: func(repo *capacityMocks.MockCapacity) {
				repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, errors.New("database error"))
			},
			wantErr: true,
		},
		{
			name: "insert error",
			req:  validReq,
			setupMock: func(repo *capacityMocks.MockCapacity) {
				repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)

				repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(errors.New("insert error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo, mockCache := newCapacityService(t)
			tt.setupMock(mockRepo)

			mockCache.EXPECT().
				Clear(gomock.Any(), gomock.Any()).
				Return(nil).
				AnyTimes()

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "staff-1")
			res, err := svc.DefineSlot(ctx, tt.req)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantKind != "" {
					assert.True(t, failure.IsKind(err, tt.wantKind))
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.req.LocationID, res.LocationID)
				assert.Equal(t, tt.req.TimeSlot, res.TimeSlot)
			}
		})
	}
}

func TestCapacityService_Get(t *testing.T) {
	slot := model.CapacitySlot{
		ID:            "slot-1",
		LocationID:    "loc-1",
		DayOfWeek:     1,
		TimeSlot:      model.TimeSlotMorning,
		StartHour:     9,
		EndHour:       10,
		TotalCapacity: 4,
		EffectiveDate: timezone.Now(),
		ExpiryDate:    timezone.Now().AddDate(0, 3, 0),
		IsActive:      true,
	}

	tests := []struct {
		name      string
		id        string
		setupMock func(repo *capacityMocks.MockCapacity, cache *cacheMocks.MockRedisCache)
		wantErr   bool
		wantID    string
	}{
		{
			name: "cache hit",
			id:   "slot-1",
			setupMock: func(repo *capacityMocks.MockCapacity, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
		},
		{
			name: "cache miss, found in db",
			id:   "slot-1",
			setupMock: func(repo *capacityMocks.MockCapacity, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(slot, nil)

				cache.EXPECT().
					Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantID: "slot-1",
		},
		{
			name: "slot not found",
			id:   "missing",
			setupMock: func(repo *capacityMocks.MockCapacity, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.CapacitySlot{}, nil)
			},
			wantErr: true,
		},
		{
			name: "repository error",
			id:   "slot-1",
			setupMock: func(repo *capacityMocks.MockCapacity, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.CapacitySlot{}, errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo, mockCache := newCapacityService(t)
			tt.setupMock(mockRepo, mockCache)

			res, err := svc.Get(context.Background(), tt.id)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				if tt.wantID != "" {
					assert.Equal(t, tt.wantID, res.ID)
				}
			}
		})
	}
}

func TestCapacityService_ListWeek(t *testing.T) {
	weekStart := time.Date(2026, 9, 7, 0, 0, 0, 0, timezone.GetLocation())

	tests := []struct {
		name      string
		setupMock func(repo *capacityMocks.MockCapacity, cache *cacheMocks.MockRedisCache)
		wantErr   bool
		wantTotal int
	}{
		{
			name: "cache hit",
			setupMock: func(repo *capacityMocks.MockCapacity, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
		},
		{
			name: "cache miss, successful list",
			setupMock: func(repo *capacityMocks.MockCapacity, cache *cacheMocks.MockRedisCache) {
				slots := []model.CapacitySlot{
					{ID: "slot-1", LocationID: "loc-1", TimeSlot: model.TimeSlotMorning, StartHour: 9, EndHour: 10},
					{ID: "slot-2", LocationID: "loc-1", TimeSlot: model.TimeSlotEvening, StartHour: 18, EndHour: 19},
				}

				cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				repo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(slots, nil)

				cache.EXPECT().
					Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantTotal: 2,
		},
		{
			name: "repository error",
			setupMock: func(repo *capacityMocks.MockCapacity, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				repo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo, mockCache := newCapacityService(t)
			tt.setupMock(mockRepo, mockCache)

			res, err := svc.ListWeek(context.Background(), "loc-1", weekStart)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)

			if tt.wantTotal > 0 {
				assert.Equal(t, tt.wantTotal, res.TotalData)
				assert.Equal(t, "2026-09-07", res.WeekStart)
			}
		})
	}
}

func TestCapacityService_ResolveGrid(t *testing.T) {
	loc := timezone.GetLocation()
	weekStart := time.Date(2026, 9, 7, 0, 0, 0, 0, loc) // a Monday
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, loc)

	slot := model.CapacitySlot{
		ID:            "slot-1",
		LocationID:    "loc-1",
		DayOfWeek:     1,
		TimeSlot:      model.TimeSlotMorning,
		StartHour:     9,
		EndHour:       10,
		TotalCapacity: 4,
		EffectiveDate: time.Date(2026, 9, 1, 0, 0, 0, 0, loc),
		ExpiryDate:    time.Date(2026, 12, 31, 0, 0, 0, 0, loc),
		IsActive:      true,
	}

	t.Run("grid covers all windows and marks the defined cell available", func(t *testing.T) {
		svc, mockRepo, _ := newCapacityService(t)

		mockRepo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]model.CapacitySlot{slot}, nil)

		res, err := svc.ResolveGrid(context.Background(), "loc-1", weekStart, now)
		assert.NoError(t, err)

		// 5 morning + 5 afternoon + 4 evening windows per day.
		assert.Len(t, res.Cells, 7*14)
		assert.Equal(t, res.TotalData, len(res.Cells))

		available := 0
		for _, cell := range res.Cells {
			if cell.IsAvailable {
				available++
				assert.Equal(t, "2026-09-07", cell.Date)
				assert.Equal(t, 9, cell.StartHour)
				assert.NotNil(t, cell.Slot)
				assert.Equal(t, "slot-1", cell.Slot.ID)
			}
		}
		assert.Equal(t, 1, available)
	})

	t.Run("repository error", func(t *testing.T) {
		svc, mockRepo, _ := newCapacityService(t)

		mockRepo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("database error"))

		_, err := svc.ResolveGrid(context.Background(), "loc-1", weekStart, now)
		assert.Error(t, err)
	})
}

func TestCapacityService_Deactivate(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		setupMock func(repo *capacityMocks.MockCapacity, cache *cacheMocks.MockRedisCache)
		wantErr   bool
	}{
		{
			name: "successful deactivation",
			id:   "slot-1",
			setupMock: func(repo *capacityMocks.MockCapacity, cache *cacheMocks.MockRedisCache) {
				repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				cache.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()

				cache.EXPECT().
					Clear(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
		},
		{
			name: "slot not found",
			id:   "missing",
			setupMock: func(repo *capacityMocks.MockCapacity, cache *cacheMocks.MockRedisCache) {
				repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)
			},
			wantErr: true,
		},
		{
			name: "update error",
			id:   "slot-1",
			setupMock: func(repo *capacityMocks.MockCapacity, cache *cacheMocks.MockRedisCache) {
				repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("update error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo, mockCache := newCapacityService(t)
			tt.setupMock(mockRepo, mockCache)

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "staff-1")
			err := svc.Deactivate(ctx, tt.id)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
