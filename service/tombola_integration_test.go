package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"tombola/events"
	"tombola/models"
	"tombola/repository"
	"tombola/repository/testutil"
	"tombola/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type services struct {
	raffles        service.RaffleService
	participations service.ParticipationService
	validation     service.ValidationService
	draw           service.DrawService
	users          service.UserService
}

func setupServices(t *testing.T) (*testutil.TestDatabase, *services) {
	t.Helper()
	testDB := testutil.SetupTestDatabase(t)
	factory := repository.NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	return testDB, &services{
		raffles:        service.NewRaffleService(factory),
		participations: service.NewParticipationService(factory),
		validation:     service.NewValidationService(factory),
		draw:           service.NewDrawService(factory, nil),
		users:          service.NewUserService(factory),
	}
}

func submission(userID, raffleID int64, ref string) service.SubmitParticipationRequest {
	return service.SubmitParticipationRequest{
		UserID:         userID,
		RaffleID:       raffleID,
		TransactionRef: ref,
		PaymentPhone:   "677123456",
		PaymentMethod:  models.PaymentMethodOrangeMoney,
		Amount:         500,
	}
}

func TestTombola_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	t.Parallel()

	ctx := context.Background()
	testDB, svc := setupServices(t)

	admin := testutil.InsertUser(t, testDB.DB, models.RoleAdmin)
	alice := testutil.InsertUser(t, testDB.DB, models.RoleUser)
	bob := testutil.InsertUser(t, testDB.DB, models.RoleUser)
	carol := testutil.InsertUser(t, testDB.DB, models.RoleUser)

	raffle, err := svc.raffles.Create(ctx, admin.ID, testutil.CreateTestRaffleConfig())
	require.NoError(t, err)
	assert.Equal(t, models.RaffleStatusActive, raffle.Status)

	first, err := svc.participations.Submit(ctx, submission(alice.ID, raffle.ID, "MP-0001"))
	require.NoError(t, err)
	second, err := svc.participations.Submit(ctx, submission(bob.ID, raffle.ID, "MP-0002"))
	require.NoError(t, err)
	assert.Equal(t, models.ParticipationStatusPending, first.Status)
	assert.Equal(t, models.ParticipationStatusPending, second.Status)
	assert.NotEqual(t, first.ParticipationNumber, second.ParticipationNumber)

	_, err = svc.participations.Submit(ctx, submission(carol.ID, raffle.ID, "mp-0001"))
	assert.ErrorIs(t, err, models.ErrDuplicatePayment)

	_, err = svc.validation.Decide(ctx, first.ID, admin.ID, models.DecisionValidate, "")
	require.NoError(t, err)
	_, err = svc.validation.Decide(ctx, second.ID, admin.ID, models.DecisionValidate, "")
	require.NoError(t, err)

	_, err = svc.validation.Decide(ctx, second.ID, admin.ID, models.DecisionReject, "")
	assert.ErrorIs(t, err, models.ErrAlreadyProcessed)

	raffle, err = svc.raffles.Get(ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), raffle.TotalParticipations)
	assert.Equal(t, int64(1000), raffle.TotalRevenue)

	_, err = svc.participations.Submit(ctx, submission(carol.ID, raffle.ID, "MP-0003"))
	assert.ErrorIs(t, err, models.ErrCapacityExceeded)

	err = svc.raffles.Delete(ctx, raffle.ID)
	assert.ErrorIs(t, err, models.ErrNotDeletable)

	_, err = svc.draw.Draw(ctx, raffle.ID)
	assert.ErrorIs(t, err, models.ErrDrawNotReady)

	testutil.ExpireRaffle(t, testDB.DB, raffle.ID)

	result, err := svc.draw.Draw(ctx, raffle.ID)
	require.NoError(t, err)
	assert.True(t, result.Raffle.IsDrawn)
	assert.Contains(t, []int64{first.ID, second.ID}, result.Winner.ID)

	winners := 0
	for _, id := range []int64{first.ID, second.ID} {
		p, err := svc.participations.Get(ctx, id, models.Requester{UserID: admin.ID, Role: models.RoleAdmin})
		require.NoError(t, err)
		assert.Equal(t, models.ParticipationStatusCompleted, p.Status)
		if p.IsWinner {
			winners++
		}
	}
	assert.Equal(t, 1, winners)

	stored, err := svc.raffles.Get(ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RaffleStatusDrawn, stored.Status)
	assert.Equal(t, result.Winner.ID, *stored.WinnerID)
	assert.NotNil(t, stored.DrawDate)

	_, err = svc.draw.Draw(ctx, raffle.ID)
	assert.ErrorIs(t, err, models.ErrAlreadyDrawn)

	// Completed entries still count, so recomputing after the draw changes nothing
	recomputed, err := svc.raffles.RecomputeStats(ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), recomputed.TotalParticipations)
	assert.Equal(t, int64(1000), recomputed.TotalRevenue)

	stats, err := svc.users.GetStats(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalParticipations)
	require.Len(t, stats.PerRaffle, 1)
	assert.Equal(t, raffle.ID, stats.PerRaffle[0].RaffleID)
}

func TestTombola_ConcurrentDraws(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	t.Parallel()

	ctx := context.Background()
	testDB, svc := setupServices(t)

	admin := testutil.InsertUser(t, testDB.DB, models.RoleAdmin)
	raffle, err := svc.raffles.Create(ctx, admin.ID, testutil.CreateTestRaffleConfig())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		user := testutil.InsertUser(t, testDB.DB, models.RoleUser)
		p, err := svc.participations.Submit(ctx, submission(user.ID, raffle.ID, fmt.Sprintf("CONC-%d", i)))
		require.NoError(t, err)
		_, err = svc.validation.Decide(ctx, p.ID, admin.ID, models.DecisionValidate, "")
		require.NoError(t, err)
	}
	testutil.ExpireRaffle(t, testDB.DB, raffle.ID)

	const drawers = 5
	var wg sync.WaitGroup
	errs := make([]error, drawers)
	for i := 0; i < drawers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.draw.Draw(ctx, raffle.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, models.ErrAlreadyDrawn)
	}
	assert.Equal(t, 1, succeeded)
}

func TestTombola_ConcurrentDuplicateSubmission(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	t.Parallel()

	ctx := context.Background()
	testDB, svc := setupServices(t)

	admin := testutil.InsertUser(t, testDB.DB, models.RoleAdmin)
	raffle, err := svc.raffles.Create(ctx, admin.ID, testutil.CreateTestRaffleConfig())
	require.NoError(t, err)

	const submitters = 4
	users := make([]*models.User, submitters)
	for i := range users {
		users[i] = testutil.InsertUser(t, testDB.DB, models.RoleUser)
	}

	var wg sync.WaitGroup
	errs := make([]error, submitters)
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.participations.Submit(ctx, submission(users[i].ID, raffle.ID, "SAME-REF-42"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, models.ErrDuplicatePayment)
	}
	assert.Equal(t, 1, succeeded)
}
