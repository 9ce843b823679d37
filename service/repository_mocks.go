package service

import (
	"context"
	"time"

	"tombola/events"
	"tombola/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) IncrementParticipationCounters(ctx context.Context, userID, raffleID int64) error {
	args := m.Called(ctx, userID, raffleID)
	return args.Error(0)
}

func (m *MockUserRepository) GetStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStats), args.Error(1)
}

// MockRaffleRepository is a mock implementation of RaffleRepository
type MockRaffleRepository struct {
	mock.Mock
}

func (m *MockRaffleRepository) Create(ctx context.Context, raffle *models.Raffle) error {
	args := m.Called(ctx, raffle)
	return args.Error(0)
}

func (m *MockRaffleRepository) GetByID(ctx context.Context, id int64) (*models.Raffle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Raffle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) Update(ctx context.Context, raffle *models.Raffle) error {
	args := m.Called(ctx, raffle)
	return args.Error(0)
}

func (m *MockRaffleRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRaffleRepository) List(ctx context.Context, filter models.RaffleFilter, page models.Page) ([]*models.Raffle, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Raffle), args.Get(1).(int64), args.Error(2)
}

func (m *MockRaffleRepository) RecomputeStats(ctx context.Context, id int64) (*models.RaffleStats, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RaffleStats), args.Error(1)
}

func (m *MockRaffleRepository) CountValidated(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRaffleRepository) MarkDrawn(ctx context.Context, id, winnerID int64, drawDate time.Time) (bool, error) {
	args := m.Called(ctx, id, winnerID, drawDate)
	return args.Bool(0), args.Error(1)
}

// MockParticipationRepository is a mock implementation of ParticipationRepository
type MockParticipationRepository struct {
	mock.Mock
}

func (m *MockParticipationRepository) Create(ctx context.Context, participation *models.Participation) (bool, error) {
	args := m.Called(ctx, participation)
	return args.Bool(0), args.Error(1)
}

func (m *MockParticipationRepository) GetByID(ctx context.Context, id int64) (*models.Participation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participation), args.Error(1)
}

func (m *MockParticipationRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Participation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participation), args.Error(1)
}

func (m *MockParticipationRepository) GetByNumber(ctx context.Context, number string) (*models.Participation, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participation), args.Error(1)
}

func (m *MockParticipationRepository) ExistsByRaffleAndRef(ctx context.Context, raffleID int64, transactionRef string) (bool, error) {
	args := m.Called(ctx, raffleID, transactionRef)
	return args.Bool(0), args.Error(1)
}

func (m *MockParticipationRepository) UpdateDecision(ctx context.Context, participation *models.Participation) error {
	args := m.Called(ctx, participation)
	return args.Error(0)
}

func (m *MockParticipationRepository) List(ctx context.Context, filter models.ParticipationFilter, page models.Page) ([]*models.Participation, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Participation), args.Get(1).(int64), args.Error(2)
}

func (m *MockParticipationRepository) GetValidatedByRaffle(ctx context.Context, raffleID int64) ([]*models.Participation, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Participation), args.Error(1)
}

func (m *MockParticipationRepository) CompleteForDraw(ctx context.Context, raffleID int64) (int64, error) {
	args := m.Called(ctx, raffleID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockParticipationRepository) SetWinner(ctx context.Context, participationID int64) error {
	args := m.Called(ctx, participationID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Transaction calls are
// recorded as expectations; repositories are plain fields set by the test.
type MockUnitOfWork struct {
	mock.Mock
	userRepo          UserRepository
	raffleRepo        RaffleRepository
	participationRepo ParticipationRepository
	eventBus          EventPublisher
}

// SetRepositories configures the repositories returned by the unit of work
func (m *MockUnitOfWork) SetRepositories(userRepo UserRepository, raffleRepo RaffleRepository, participationRepo ParticipationRepository) {
	m.userRepo = userRepo
	m.raffleRepo = raffleRepo
	m.participationRepo = participationRepo
}

// SetEventBus configures the publisher returned by EventBus
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) RaffleRepository() RaffleRepository {
	return m.raffleRepo
}

func (m *MockUnitOfWork) ParticipationRepository() ParticipationRepository {
	return m.participationRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockWinnerPicker is a mock implementation of WinnerPicker
type MockWinnerPicker struct {
	mock.Mock
}

func (m *MockWinnerPicker) Pick(n int) (int, error) {
	args := m.Called(n)
	return args.Int(0), args.Error(1)
}
