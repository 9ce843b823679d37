package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tombola/events"
	"tombola/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRaffleServiceForTest(m *testMocks) *raffleService {
	svc := NewRaffleService(m.factory).(*raffleService)
	svc.now = fixedClock
	return svc
}

func validRaffleConfig() models.RaffleConfig {
	return models.RaffleConfig{
		Title:              "  Grand tombola  ",
		Description:        "Win a brand new motorbike",
		PrizeAmount:        10000,
		ParticipationPrice: 500,
		MaxParticipants:    int64Ptr(100),
		EndDate:            fixedNow.Add(7 * 24 * time.Hour),
	}
}

func TestRaffleService_Create(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks(ctx)
	m.expectCommit()
	svc := newRaffleServiceForTest(m)

	m.raffles.On("Create", ctx, mock.MatchedBy(func(r *models.Raffle) bool {
		return r.Title == "Grand tombola" &&
			r.Status == models.RaffleStatusActive &&
			r.CreatedBy == 7 &&
			!r.IsDrawn &&
			r.TotalParticipations == 0
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Raffle).ID = 11
	})
	m.bus.On("Publish", mock.MatchedBy(func(e events.RaffleCreatedEvent) bool {
		return e.RaffleID == 11 && e.CreatedBy == 7
	})).Return()

	raffle, err := svc.Create(ctx, 7, validRaffleConfig())

	require.NoError(t, err)
	assert.Equal(t, int64(11), raffle.ID)
	assert.Equal(t, models.RaffleStatusActive, raffle.Status)
	m.assertAll(t)
}

func TestRaffleService_Create_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.RaffleConfig)
	}{
		{"short title", func(c *models.RaffleConfig) { c.Title = "abc" }},
		{"prize below floor", func(c *models.RaffleConfig) { c.PrizeAmount = 99 }},
		{"price below floor", func(c *models.RaffleConfig) { c.ParticipationPrice = 49 }},
		{"capacity of one", func(c *models.RaffleConfig) { c.MaxParticipants = int64Ptr(1) }},
		{"end date in the past", func(c *models.RaffleConfig) { c.EndDate = fixedNow.Add(-time.Minute) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := new(MockUnitOfWorkFactory)
			svc := NewRaffleService(factory).(*raffleService)
			svc.now = fixedClock

			cfg := validRaffleConfig()
			tt.mutate(&cfg)

			_, err := svc.Create(context.Background(), 7, cfg)

			assert.ErrorIs(t, err, models.ErrValidation)
			factory.AssertNotCalled(t, "Create")
		})
	}
}

func TestRaffleService_Edit(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces configuration", func(t *testing.T) {
		m := newTestMocks(ctx)
		m.expectCommit()
		svc := newRaffleServiceForTest(m)

		existing := activeRaffle(3)
		existing.TotalParticipations = 4
		m.raffles.On("GetByIDForUpdate", ctx, int64(3)).Return(existing, nil)
		m.raffles.On("Update", ctx, existing).Return(nil)

		cfg := validRaffleConfig()
		cfg.ParticipationPrice = 750
		raffle, err := svc.Edit(ctx, 3, cfg)

		require.NoError(t, err)
		assert.Equal(t, int64(750), raffle.ParticipationPrice)
		assert.Equal(t, "Grand tombola", raffle.Title)
		assert.Equal(t, int64(4), raffle.TotalParticipations)
		m.assertAll(t)
	})

	t.Run("drawn raffle is not editable", func(t *testing.T) {
		m := newTestMocks(ctx)
		svc := newRaffleServiceForTest(m)

		drawn := endedRaffle(3, 2)
		drawn.MarkDrawn(9, fixedNow)
		m.raffles.On("GetByIDForUpdate", ctx, int64(3)).Return(drawn, nil)

		_, err := svc.Edit(ctx, 3, validRaffleConfig())

		assert.ErrorIs(t, err, models.ErrNotEditable)
		m.raffles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("ended raffle keeps its deadline", func(t *testing.T) {
		m := newTestMocks(ctx)
		m.expectCommit()
		svc := newRaffleServiceForTest(m)

		existing := endedRaffle(3, 2)
		endDate := existing.EndDate
		m.raffles.On("GetByIDForUpdate", ctx, int64(3)).Return(existing, nil)
		m.raffles.On("Update", ctx, existing).Return(nil)

		cfg := validRaffleConfig()
		cfg.EndDate = endDate
		cfg.Description = "Win a brand new scooter"
		raffle, err := svc.Edit(ctx, 3, cfg)

		require.NoError(t, err)
		assert.Equal(t, "Win a brand new scooter", raffle.Description)
		assert.True(t, raffle.EndDate.Equal(endDate))
		assert.True(t, raffle.IsReadyForDraw(fixedNow))
		m.assertAll(t)
	})

	t.Run("ended raffle cannot move its deadline into the past", func(t *testing.T) {
		m := newTestMocks(ctx)
		svc := newRaffleServiceForTest(m)

		existing := endedRaffle(3, 2)
		m.raffles.On("GetByIDForUpdate", ctx, int64(3)).Return(existing, nil)

		cfg := validRaffleConfig()
		cfg.EndDate = existing.EndDate.Add(-time.Hour)
		_, err := svc.Edit(ctx, 3, cfg)

		assert.ErrorIs(t, err, models.ErrValidation)
		m.raffles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("capacity may drop below validated count", func(t *testing.T) {
		m := newTestMocks(ctx)
		m.expectCommit()
		svc := newRaffleServiceForTest(m)

		existing := activeRaffle(3)
		existing.TotalParticipations = 3
		m.raffles.On("GetByIDForUpdate", ctx, int64(3)).Return(existing, nil)
		m.raffles.On("Update", ctx, existing).Return(nil)

		cfg := validRaffleConfig()
		cfg.MaxParticipants = int64Ptr(2)
		raffle, err := svc.Edit(ctx, 3, cfg)

		require.NoError(t, err)
		assert.Equal(t, int64(2), *raffle.MaxParticipants)
		assert.Equal(t, int64(3), raffle.TotalParticipations)
		assert.False(t, raffle.HasCapacity())
		m.assertAll(t)
	})

	t.Run("missing raffle", func(t *testing.T) {
		m := newTestMocks(ctx)
		svc := newRaffleServiceForTest(m)

		m.raffles.On("GetByIDForUpdate", ctx, int64(3)).Return(nil, nil)

		_, err := svc.Edit(ctx, 3, validRaffleConfig())
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestRaffleService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("no validated participations", func(t *testing.T) {
		m := newTestMocks(ctx)
		m.expectCommit()
		svc := newRaffleServiceForTest(m)

		m.raffles.On("GetByIDForUpdate", ctx, int64(5)).Return(activeRaffle(5), nil)
		m.raffles.On("CountValidated", ctx, int64(5)).Return(int64(0), nil)
		m.raffles.On("Delete", ctx, int64(5)).Return(nil)

		require.NoError(t, svc.Delete(ctx, 5))
		m.assertAll(t)
	})

	t.Run("validated participations block deletion", func(t *testing.T) {
		m := newTestMocks(ctx)
		svc := newRaffleServiceForTest(m)

		m.raffles.On("GetByIDForUpdate", ctx, int64(5)).Return(activeRaffle(5), nil)
		m.raffles.On("CountValidated", ctx, int64(5)).Return(int64(1), nil)

		err := svc.Delete(ctx, 5)

		assert.ErrorIs(t, err, models.ErrNotDeletable)
		m.raffles.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("drawn raffle", func(t *testing.T) {
		m := newTestMocks(ctx)
		svc := newRaffleServiceForTest(m)

		drawn := endedRaffle(5, 1)
		drawn.MarkDrawn(2, fixedNow)
		m.raffles.On("GetByIDForUpdate", ctx, int64(5)).Return(drawn, nil)

		assert.ErrorIs(t, svc.Delete(ctx, 5), models.ErrNotDeletable)
	})
}

func TestRaffleService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("active raffle", func(t *testing.T) {
		m := newTestMocks(ctx)
		m.expectCommit()
		svc := newRaffleServiceForTest(m)

		m.raffles.On("GetByIDForUpdate", ctx, int64(8)).Return(activeRaffle(8), nil)
		m.raffles.On("Update", ctx, mock.MatchedBy(func(r *models.Raffle) bool {
			return r.Status == models.RaffleStatusCancelled
		})).Return(nil)
		m.bus.On("Publish", mock.AnythingOfType("events.RaffleCancelledEvent")).Return()

		raffle, err := svc.Cancel(ctx, 8)

		require.NoError(t, err)
		assert.Equal(t, models.RaffleStatusCancelled, raffle.Status)
		m.assertAll(t)
	})

	t.Run("already cancelled", func(t *testing.T) {
		m := newTestMocks(ctx)
		svc := newRaffleServiceForTest(m)

		cancelled := activeRaffle(8)
		cancelled.Status = models.RaffleStatusCancelled
		m.raffles.On("GetByIDForUpdate", ctx, int64(8)).Return(cancelled, nil)

		_, err := svc.Cancel(ctx, 8)
		assert.ErrorIs(t, err, models.ErrNotEditable)
	})
}

func TestRaffleService_RecomputeStats(t *testing.T) {
	ctx := context.Background()

	t.Run("rewrites counters", func(t *testing.T) {
		m := newTestMocks(ctx)
		m.expectCommit()
		svc := newRaffleServiceForTest(m)

		refreshed := activeRaffle(2)
		refreshed.TotalParticipations = 3
		refreshed.TotalRevenue = 1500
		m.raffles.On("RecomputeStats", ctx, int64(2)).Return(&models.RaffleStats{RaffleID: 2, TotalParticipations: 3, TotalRevenue: 1500}, nil)
		m.raffles.On("GetByID", ctx, int64(2)).Return(refreshed, nil)

		raffle, err := svc.RecomputeStats(ctx, 2)

		require.NoError(t, err)
		assert.Equal(t, int64(3), raffle.TotalParticipations)
		assert.Equal(t, int64(1500), raffle.TotalRevenue)
		m.assertAll(t)
	})

	t.Run("missing raffle", func(t *testing.T) {
		m := newTestMocks(ctx)
		svc := newRaffleServiceForTest(m)

		m.raffles.On("RecomputeStats", ctx, int64(2)).Return(nil, nil)

		_, err := svc.RecomputeStats(ctx, 2)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestRaffleService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes the page", func(t *testing.T) {
		m := newTestMocks(ctx)
		svc := newRaffleServiceForTest(m)

		active := models.RaffleStatusActive
		filter := models.RaffleFilter{Status: &active}
		m.raffles.On("List", ctx, filter, models.Page{Number: 1, Size: models.DefaultPageSize}).
			Return([]*models.Raffle{activeRaffle(1)}, int64(21), nil)

		page, err := svc.List(ctx, filter, models.Page{})

		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
		assert.Equal(t, int64(21), page.Total)
		assert.Equal(t, 2, page.TotalPages)
		m.raffles.AssertExpectations(t)
	})

	t.Run("unknown status", func(t *testing.T) {
		factory := new(MockUnitOfWorkFactory)
		svc := NewRaffleService(factory)

		bogus := models.RaffleStatus("paused")
		_, err := svc.List(ctx, models.RaffleFilter{Status: &bogus}, models.Page{})

		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("repository failure is wrapped", func(t *testing.T) {
		m := newTestMocks(ctx)
		svc := newRaffleServiceForTest(m)

		dbErr := errors.New("connection reset")
		m.raffles.On("List", ctx, models.RaffleFilter{}, mock.Anything).Return(nil, int64(0), dbErr)

		_, err := svc.List(ctx, models.RaffleFilter{}, models.Page{})

		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to list raffles")
	})
}
