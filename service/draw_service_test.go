package service

import (
	"context"
	"errors"
	"testing"

	"tombola/events"
	"tombola/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDrawServiceForTest(m *testMocks, picker WinnerPicker) *drawService {
	svc := NewDrawService(m.factory, picker).(*drawService)
	svc.now = fixedClock
	return svc
}

func validatedPool(raffleID int64, userIDs ...int64) []*models.Participation {
	pool := make([]*models.Participation, 0, len(userIDs))
	for i, userID := range userIDs {
		p := pendingParticipation(int64(100+i), userID, raffleID)
		p.Status = models.ParticipationStatusValidated
		pool = append(pool, p)
	}
	return pool
}

func TestDrawService_Draw(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks(ctx)
	m.expectCommit()
	picker := new(MockWinnerPicker)
	svc := newDrawServiceForTest(m, picker)

	pool := validatedPool(3, 42, 43, 44)
	m.raffles.On("GetByIDForUpdate", ctx, int64(3)).Return(endedRaffle(3, 3), nil)
	m.raffles.On("RecomputeStats", ctx, int64(3)).Return(&models.RaffleStats{RaffleID: 3, TotalParticipations: 3, TotalRevenue: 1500}, nil)
	m.participations.On("GetValidatedByRaffle", ctx, int64(3)).Return(pool, nil)
	picker.On("Pick", 3).Return(1, nil)
	m.participations.On("CompleteForDraw", ctx, int64(3)).Return(int64(3), nil)
	m.participations.On("SetWinner", ctx, int64(101)).Return(nil)
	m.raffles.On("MarkDrawn", ctx, int64(3), int64(101), fixedNow).Return(true, nil)
	m.bus.On("Publish", mock.MatchedBy(func(e events.RaffleDrawnEvent) bool {
		return e.WinnerParticipationID == 101 && e.WinnerUserID == 43 && e.PoolSize == 3
	})).Return()

	result, err := svc.Draw(ctx, 3)

	require.NoError(t, err)
	assert.Equal(t, int64(101), result.Winner.ID)
	assert.True(t, result.Winner.IsWinner)
	assert.Equal(t, models.ParticipationStatusCompleted, result.Winner.Status)
	assert.True(t, result.Raffle.IsDrawn)
	assert.Equal(t, models.RaffleStatusDrawn, result.Raffle.Status)
	assert.Equal(t, int64(101), *result.Raffle.WinnerID)
	assert.Equal(t, fixedNow, *result.Raffle.DrawDate)
	assert.Equal(t, 3, result.Pool)
	m.assertAll(t)
	picker.AssertExpectations(t)
}

func TestDrawService_Draw_Refusals(t *testing.T) {
	ctx := context.Background()

	drawn := endedRaffle(3, 2)
	drawn.MarkDrawn(100, fixedNow)

	tests := []struct {
		name     string
		raffle   *models.Raffle
		stats    *models.RaffleStats
		expected error
	}{
		{name: "unknown raffle", expected: models.ErrNotFound},
		{name: "already drawn", raffle: drawn, expected: models.ErrAlreadyDrawn},
		{
			name:     "before end date",
			raffle:   activeRaffle(3),
			stats:    &models.RaffleStats{RaffleID: 3, TotalParticipations: 2},
			expected: models.ErrDrawNotReady,
		},
		{
			name:     "no validated participations in the ledger",
			raffle:   endedRaffle(3, 2),
			stats:    &models.RaffleStats{RaffleID: 3},
			expected: models.ErrDrawNotReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMocks(ctx)
			picker := new(MockWinnerPicker)
			svc := newDrawServiceForTest(m, picker)

			m.raffles.On("GetByIDForUpdate", ctx, int64(3)).Return(tt.raffle, nil)
			m.raffles.On("RecomputeStats", ctx, int64(3)).Return(tt.stats, nil).Maybe()

			_, err := svc.Draw(ctx, 3)

			assert.ErrorIs(t, err, tt.expected)
			picker.AssertNotCalled(t, "Pick", mock.Anything)
			m.uow.AssertNotCalled(t, "Commit")
		})
	}
}

func TestDrawService_Draw_EmptyPool(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks(ctx)
	svc := newDrawServiceForTest(m, new(MockWinnerPicker))

	m.raffles.On("GetByIDForUpdate", ctx, int64(3)).Return(endedRaffle(3, 1), nil)
	m.raffles.On("RecomputeStats", ctx, int64(3)).Return(&models.RaffleStats{RaffleID: 3, TotalParticipations: 1}, nil)
	m.participations.On("GetValidatedByRaffle", ctx, int64(3)).Return([]*models.Participation{}, nil)

	_, err := svc.Draw(ctx, 3)

	assert.ErrorIs(t, err, models.ErrNoValidParticipations)
}

func TestDrawService_Draw_LostRace(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks(ctx)
	picker := new(MockWinnerPicker)
	svc := newDrawServiceForTest(m, picker)

	m.raffles.On("GetByIDForUpdate", ctx, int64(3)).Return(endedRaffle(3, 1), nil)
	m.raffles.On("RecomputeStats", ctx, int64(3)).Return(&models.RaffleStats{RaffleID: 3, TotalParticipations: 1}, nil)
	m.participations.On("GetValidatedByRaffle", ctx, int64(3)).Return(validatedPool(3, 42), nil)
	picker.On("Pick", 1).Return(0, nil)
	m.participations.On("CompleteForDraw", ctx, int64(3)).Return(int64(1), nil)
	m.participations.On("SetWinner", ctx, int64(100)).Return(nil)
	m.raffles.On("MarkDrawn", ctx, int64(3), int64(100), fixedNow).Return(false, nil)

	_, err := svc.Draw(ctx, 3)

	assert.ErrorIs(t, err, models.ErrAlreadyDrawn)
	m.uow.AssertNotCalled(t, "Commit")
	m.bus.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestDrawService_Draw_PickerOutOfRange(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks(ctx)
	picker := new(MockWinnerPicker)
	svc := newDrawServiceForTest(m, picker)

	m.raffles.On("GetByIDForUpdate", ctx, int64(3)).Return(endedRaffle(3, 2), nil)
	m.raffles.On("RecomputeStats", ctx, int64(3)).Return(&models.RaffleStats{RaffleID: 3, TotalParticipations: 2}, nil)
	m.participations.On("GetValidatedByRaffle", ctx, int64(3)).Return(validatedPool(3, 42, 43), nil)
	picker.On("Pick", 2).Return(2, nil)

	_, err := svc.Draw(ctx, 3)

	require.Error(t, err)
	assert.False(t, errors.Is(err, models.ErrAlreadyDrawn))
	m.participations.AssertNotCalled(t, "CompleteForDraw", mock.Anything, mock.Anything)
}

func TestCryptoPicker_Pick(t *testing.T) {
	picker := CryptoPicker{}

	_, err := picker.Pick(0)
	assert.Error(t, err)

	idx, err := picker.Pick(1)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	seen := make(map[int]bool)
	for i := 0; i < 500; i++ {
		idx, err := picker.Pick(4)
		require.NoError(t, err)
		require.True(t, idx >= 0 && idx < 4)
		seen[idx] = true
	}
	assert.Len(t, seen, 4)
}
