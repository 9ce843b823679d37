package service

import (
	"context"
	"testing"
	"time"

	"tombola/models"
)

// testMocks bundles the mocks every service test wires into a unit of work
type testMocks struct {
	factory        *MockUnitOfWorkFactory
	uow            *MockUnitOfWork
	users          *MockUserRepository
	raffles        *MockRaffleRepository
	participations *MockParticipationRepository
	bus            *MockEventPublisher
}

func newTestMocks(ctx context.Context) *testMocks {
	m := &testMocks{
		factory:        new(MockUnitOfWorkFactory),
		uow:            new(MockUnitOfWork),
		users:          new(MockUserRepository),
		raffles:        new(MockRaffleRepository),
		participations: new(MockParticipationRepository),
		bus:            new(MockEventPublisher),
	}
	m.uow.SetRepositories(m.users, m.raffles, m.participations)
	m.uow.SetEventBus(m.bus)

	m.factory.On("Create").Return(m.uow)
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	return m
}

func (m *testMocks) expectCommit() {
	m.uow.On("Commit").Return(nil)
}

func (m *testMocks) assertAll(t *testing.T) {
	m.factory.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.users.AssertExpectations(t)
	m.raffles.AssertExpectations(t)
	m.participations.AssertExpectations(t)
	m.bus.AssertExpectations(t)
}

var fixedNow = time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func activeRaffle(id int64) *models.Raffle {
	return &models.Raffle{
		ID:                 id,
		Title:              "Grand tombola",
		Description:        "Win a brand new motorbike",
		PrizeAmount:        10000,
		ParticipationPrice: 500,
		EndDate:            fixedNow.Add(24 * time.Hour),
		Status:             models.RaffleStatusActive,
		CreatedBy:          1,
	}
}

func endedRaffle(id int64, validated int64) *models.Raffle {
	r := activeRaffle(id)
	r.EndDate = fixedNow.Add(-time.Hour)
	r.TotalParticipations = validated
	r.TotalRevenue = validated * r.ParticipationPrice
	return r
}

func pendingParticipation(id, userID, raffleID int64) *models.Participation {
	return &models.Participation{
		ID:                  id,
		ParticipationNumber: "TMB260307000123",
		UserID:              userID,
		RaffleID:            raffleID,
		TransactionRef:      "MP240101ABC",
		PaymentPhone:        "677123456",
		PaymentMethod:       models.PaymentMethodMTNMoMo,
		Amount:              500,
		Status:              models.ParticipationStatusPending,
	}
}

func int64Ptr(v int64) *int64 { return &v }
