package api

import (
	"context"

	"tombola/models"
	"tombola/service"

	"github.com/stretchr/testify/mock"
)

type mockRaffleService struct {
	mock.Mock
}

func (m *mockRaffleService) Create(ctx context.Context, adminID int64, cfg models.RaffleConfig) (*models.Raffle, error) {
	args := m.Called(ctx, adminID, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Raffle), args.Error(1)
}

func (m *mockRaffleService) Edit(ctx context.Context, raffleID int64, cfg models.RaffleConfig) (*models.Raffle, error) {
	args := m.Called(ctx, raffleID, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Raffle), args.Error(1)
}

func (m *mockRaffleService) Delete(ctx context.Context, raffleID int64) error {
	args := m.Called(ctx, raffleID)
	return args.Error(0)
}

func (m *mockRaffleService) Cancel(ctx context.Context, raffleID int64) (*models.Raffle, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Raffle), args.Error(1)
}

func (m *mockRaffleService) RecomputeStats(ctx context.Context, raffleID int64) (*models.Raffle, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Raffle), args.Error(1)
}

func (m *mockRaffleService) Get(ctx context.Context, raffleID int64) (*models.Raffle, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Raffle), args.Error(1)
}

func (m *mockRaffleService) List(ctx context.Context, filter models.RaffleFilter, page models.Page) (*models.RafflePage, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RafflePage), args.Error(1)
}

type mockParticipationService struct {
	mock.Mock
}

func (m *mockParticipationService) Submit(ctx context.Context, req service.SubmitParticipationRequest) (*models.Participation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participation), args.Error(1)
}

func (m *mockParticipationService) Get(ctx context.Context, participationID int64, requester models.Requester) (*models.Participation, error) {
	args := m.Called(ctx, participationID, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participation), args.Error(1)
}

func (m *mockParticipationService) GetByNumber(ctx context.Context, number string, requester models.Requester) (*models.Participation, error) {
	args := m.Called(ctx, number, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participation), args.Error(1)
}

func (m *mockParticipationService) ListForUser(ctx context.Context, userID int64, status *models.ParticipationStatus, page models.Page) (*models.ParticipationPage, error) {
	args := m.Called(ctx, userID, status, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ParticipationPage), args.Error(1)
}

func (m *mockParticipationService) ListAll(ctx context.Context, filter models.ParticipationFilter, page models.Page) (*models.ParticipationPage, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ParticipationPage), args.Error(1)
}

type mockValidationService struct {
	mock.Mock
}

func (m *mockValidationService) Decide(ctx context.Context, participationID, adminID int64, action models.DecisionAction, notes string) (*models.Participation, error) {
	args := m.Called(ctx, participationID, adminID, action, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participation), args.Error(1)
}

type mockDrawService struct {
	mock.Mock
}

func (m *mockDrawService) Draw(ctx context.Context, raffleID int64) (*models.DrawResult, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DrawResult), args.Error(1)
}

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) GetStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStats), args.Error(1)
}
