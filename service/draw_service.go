package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"tombola/events"
	"tombola/models"

	log "github.com/sirupsen/logrus"
)

// CryptoPicker picks uniformly using crypto/rand
type CryptoPicker struct{}

// Pick returns an index in [0, n)
func (CryptoPicker) Pick(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("cannot pick from an empty pool")
	}
	idx, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random index: %w", err)
	}
	return int(idx.Int64()), nil
}

type drawService struct {
	uowFactory UnitOfWorkFactory
	picker     WinnerPicker
	now        func() time.Time
}

// NewDrawService creates a new draw service. A nil picker uses CryptoPicker.
func NewDrawService(uowFactory UnitOfWorkFactory, picker WinnerPicker) DrawService {
	if picker == nil {
		picker = CryptoPicker{}
	}
	return &drawService{
		uowFactory: uowFactory,
		picker:     picker,
		now:        time.Now,
	}
}

// Draw selects the winner under the raffle row lock. The conditional update in
// MarkDrawn rejects a second writer even if the lock were bypassed.
func (s *drawService) Draw(ctx context.Context, raffleID int64) (*models.DrawResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffleRepo := uow.RaffleRepository()
	participationRepo := uow.ParticipationRepository()

	raffle, err := raffleRepo.GetByIDForUpdate(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock raffle: %w", err)
	}
	if raffle == nil {
		return nil, models.NewError(models.ErrorKindNotFound, "raffle %d not found", raffleID)
	}

	if raffle.IsDrawn {
		return nil, models.NewError(models.ErrorKindAlreadyDrawn, "raffle %d has already been drawn", raffleID)
	}

	// Readiness is judged on counters derived from the ledger, not the cached ones
	stats, err := raffleRepo.RecomputeStats(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to recompute raffle stats: %w", err)
	}
	if stats != nil {
		raffle.TotalParticipations = stats.TotalParticipations
		raffle.TotalRevenue = stats.TotalRevenue
	}

	now := s.now()
	if !raffle.IsReadyForDraw(now) {
		return nil, models.NewError(models.ErrorKindDrawNotReady, "raffle %d is not ready for draw", raffleID)
	}

	pool, err := participationRepo.GetValidatedByRaffle(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load validated participations: %w", err)
	}
	if len(pool) == 0 {
		return nil, models.NewError(models.ErrorKindNoValidParticipations, "raffle %d has no validated participations", raffleID)
	}

	idx, err := s.picker.Pick(len(pool))
	if err != nil {
		return nil, fmt.Errorf("failed to pick winner: %w", err)
	}
	if idx < 0 || idx >= len(pool) {
		return nil, fmt.Errorf("winner index %d out of range for pool of %d", idx, len(pool))
	}
	winner := pool[idx]

	if _, err := participationRepo.CompleteForDraw(ctx, raffleID); err != nil {
		return nil, fmt.Errorf("failed to complete participations: %w", err)
	}
	if err := participationRepo.SetWinner(ctx, winner.ID); err != nil {
		return nil, fmt.Errorf("failed to set winner: %w", err)
	}

	drawn, err := raffleRepo.MarkDrawn(ctx, raffleID, winner.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize draw: %w", err)
	}
	if !drawn {
		return nil, models.NewError(models.ErrorKindAlreadyDrawn, "raffle %d has already been drawn", raffleID)
	}

	winner.Status = models.ParticipationStatusCompleted
	winner.IsWinner = true
	raffle.MarkDrawn(winner.ID, now)

	uow.EventBus().Publish(events.RaffleDrawnEvent{
		RaffleID:              raffle.ID,
		WinnerParticipationID: winner.ID,
		WinnerUserID:          winner.UserID,
		ParticipationNumber:   winner.ParticipationNumber,
		PrizeAmount:           raffle.PrizeAmount,
		PoolSize:              len(pool),
		DrawnAt:               now,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"raffleId":            raffle.ID,
		"winnerId":            winner.ID,
		"participationNumber": winner.ParticipationNumber,
		"poolSize":            len(pool),
	}).Info("Raffle drawn")

	return &models.DrawResult{
		Raffle: raffle,
		Winner: winner,
		Pool:   len(pool),
	}, nil
}
