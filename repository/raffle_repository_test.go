package repository

import (
	"context"
	"testing"
	"time"

	"tombola/models"
	"tombola/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaffleRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewRaffleRepository(testDB.DB)

	admin := testutil.InsertUser(t, testDB.DB, models.RoleAdmin)

	t.Run("not found", func(t *testing.T) {
		raffle, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, raffle)
	})

	t.Run("round trip", func(t *testing.T) {
		raffle := testutil.CreateTestRaffle(admin.ID)
		require.NoError(t, repo.Create(ctx, raffle))
		assert.NotZero(t, raffle.ID)
		assert.False(t, raffle.CreatedAt.IsZero())

		got, err := repo.GetByID(ctx, raffle.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, raffle.Title, got.Title)
		assert.Equal(t, models.RaffleStatusActive, got.Status)
		assert.False(t, got.IsDrawn)
		assert.Nil(t, got.WinnerID)
		require.NotNil(t, got.MaxParticipants)
		assert.Equal(t, int64(2), *got.MaxParticipants)
		assert.WithinDuration(t, raffle.EndDate, got.EndDate, time.Millisecond)
	})

	t.Run("update", func(t *testing.T) {
		raffle := testutil.CreateTestRaffle(admin.ID)
		require.NoError(t, repo.Create(ctx, raffle))

		raffle.ParticipationPrice = 750
		raffle.MaxParticipants = nil
		require.NoError(t, repo.Update(ctx, raffle))

		got, err := repo.GetByID(ctx, raffle.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(750), got.ParticipationPrice)
		assert.Nil(t, got.MaxParticipants)
	})
}

func TestRaffleRepository_List(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewRaffleRepository(testDB.DB)

	admin := testutil.InsertUser(t, testDB.DB, models.RoleAdmin)

	var ids []int64
	for i := 0; i < 3; i++ {
		raffle := testutil.CreateTestRaffle(admin.ID)
		require.NoError(t, repo.Create(ctx, raffle))
		ids = append(ids, raffle.ID)
	}
	testutil.ExpireRaffle(t, testDB.DB, ids[0])

	raffles, total, err := repo.List(ctx, models.RaffleFilter{}, models.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, raffles, 2)
	assert.Equal(t, ids[2], raffles[0].ID, "newest first")

	active := models.RaffleStatusActive
	raffles, total, err = repo.List(ctx, models.RaffleFilter{Status: &active}, models.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, raffles, 2)

	ended := models.RaffleStatusEnded
	raffles, total, err = repo.List(ctx, models.RaffleFilter{Status: &ended}, models.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, raffles, 1)
	assert.Equal(t, ids[0], raffles[0].ID)

	drawn := models.RaffleStatusDrawn
	raffles, total, err = repo.List(ctx, models.RaffleFilter{Status: &drawn}, models.Page{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, raffles)
}

func TestRaffleRepository_RecomputeStats(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	raffleRepo := NewRaffleRepository(testDB.DB)
	participationRepo := NewParticipationRepository(testDB.DB)

	admin := testutil.InsertUser(t, testDB.DB, models.RoleAdmin)
	user := testutil.InsertUser(t, testDB.DB, models.RoleUser)

	raffle := testutil.CreateTestRaffle(admin.ID)
	raffle.MaxParticipants = nil
	require.NoError(t, raffleRepo.Create(ctx, raffle))

	statuses := []models.ParticipationStatus{
		models.ParticipationStatusValidated,
		models.ParticipationStatusValidated,
		models.ParticipationStatusCompleted,
		models.ParticipationStatusPending,
		models.ParticipationStatusRejected,
	}
	for _, status := range statuses {
		p := testutil.CreateTestParticipation(user.ID, raffle.ID, 500)
		created, err := participationRepo.Create(ctx, p)
		require.NoError(t, err)
		require.True(t, created)
		testutil.SetParticipationStatus(t, testDB.DB, p.ID, status)
	}

	stats, err := raffleRepo.RecomputeStats(ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalParticipations)
	assert.Equal(t, int64(1500), stats.TotalRevenue)

	// Idempotent
	again, err := raffleRepo.RecomputeStats(ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, stats, again)

	count, err := raffleRepo.CountValidated(ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	got, err := raffleRepo.GetByID(ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.TotalParticipations)
	assert.Equal(t, int64(1500), got.TotalRevenue)

	missing, err := raffleRepo.RecomputeStats(ctx, 999999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRaffleRepository_MarkDrawnIsConditional(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	raffleRepo := NewRaffleRepository(testDB.DB)
	participationRepo := NewParticipationRepository(testDB.DB)

	admin := testutil.InsertUser(t, testDB.DB, models.RoleAdmin)
	user := testutil.InsertUser(t, testDB.DB, models.RoleUser)

	raffle := testutil.CreateTestRaffle(admin.ID)
	require.NoError(t, raffleRepo.Create(ctx, raffle))

	p := testutil.CreateTestParticipation(user.ID, raffle.ID, 500)
	_, err := participationRepo.Create(ctx, p)
	require.NoError(t, err)
	testutil.SetParticipationStatus(t, testDB.DB, p.ID, models.ParticipationStatusCompleted)

	drawnAt := time.Now()
	ok, err := raffleRepo.MarkDrawn(ctx, raffle.ID, p.ID, drawnAt)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = raffleRepo.MarkDrawn(ctx, raffle.ID, p.ID, drawnAt)
	require.NoError(t, err)
	assert.False(t, ok, "second draw must not update the row")

	got, err := raffleRepo.GetByID(ctx, raffle.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDrawn)
	assert.Equal(t, models.RaffleStatusDrawn, got.Status)
	require.NotNil(t, got.WinnerID)
	assert.Equal(t, p.ID, *got.WinnerID)
}

func TestRaffleRepository_DeleteCascades(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	raffleRepo := NewRaffleRepository(testDB.DB)
	participationRepo := NewParticipationRepository(testDB.DB)

	admin := testutil.InsertUser(t, testDB.DB, models.RoleAdmin)
	user := testutil.InsertUser(t, testDB.DB, models.RoleUser)

	raffle := testutil.CreateTestRaffle(admin.ID)
	require.NoError(t, raffleRepo.Create(ctx, raffle))

	p := testutil.CreateTestParticipation(user.ID, raffle.ID, 500)
	_, err := participationRepo.Create(ctx, p)
	require.NoError(t, err)

	require.NoError(t, raffleRepo.Delete(ctx, raffle.ID))

	gone, err := participationRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	assert.Error(t, raffleRepo.Delete(ctx, raffle.ID))
}
