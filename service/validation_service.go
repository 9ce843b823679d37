package service

import (
	"context"
	"fmt"
	"time"

	"tombola/events"
	"tombola/models"

	log "github.com/sirupsen/logrus"
)

type validationService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewValidationService creates a new validation service
func NewValidationService(uowFactory UnitOfWorkFactory) ValidationService {
	return &validationService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// Decide applies an admin verdict. The raffle row is locked before the
// participation row, the same order the draw uses, so the two never deadlock.
func (s *validationService) Decide(ctx context.Context, participationID, adminID int64, action models.DecisionAction, notes string) (*models.Participation, error) {
	if !action.IsValid() {
		return nil, models.NewError(models.ErrorKindInvalidAction, "action must be %q or %q", models.DecisionValidate, models.DecisionReject)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.ParticipationRepository().GetByID(ctx, participationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participation: %w", err)
	}
	if existing == nil {
		return nil, models.NewError(models.ErrorKindNotFound, "participation %d not found", participationID)
	}

	raffle, err := uow.RaffleRepository().GetByIDForUpdate(ctx, existing.RaffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock raffle: %w", err)
	}
	if raffle == nil {
		return nil, models.NewError(models.ErrorKindNotFound, "raffle %d not found", existing.RaffleID)
	}

	participation, err := uow.ParticipationRepository().GetByIDForUpdate(ctx, participationID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock participation: %w", err)
	}
	if participation == nil {
		return nil, models.NewError(models.ErrorKindNotFound, "participation %d not found", participationID)
	}

	if !participation.IsPending() {
		return nil, models.NewError(models.ErrorKindAlreadyProcessed, "participation %d is already %s", participationID, participation.Status)
	}

	if action == models.DecisionValidate {
		if !raffle.CanEdit() {
			return nil, models.NewError(models.ErrorKindRaffleNotActive, "raffle %d is %s", raffle.ID, raffle.Status)
		}
		if !raffle.HasCapacity() {
			return nil, models.NewError(models.ErrorKindCapacityExceeded, "raffle %d is full", raffle.ID)
		}
	}

	participation.ApplyDecision(action, adminID, notes, s.now())
	if err := uow.ParticipationRepository().UpdateDecision(ctx, participation); err != nil {
		return nil, fmt.Errorf("failed to record decision: %w", err)
	}

	validated := participation.CountsTowardStats()
	if validated {
		if err := uow.UserRepository().IncrementParticipationCounters(ctx, participation.UserID, participation.RaffleID); err != nil {
			return nil, fmt.Errorf("failed to update user counters: %w", err)
		}
		if _, err := uow.RaffleRepository().RecomputeStats(ctx, participation.RaffleID); err != nil {
			return nil, fmt.Errorf("failed to recompute raffle stats: %w", err)
		}
	}

	uow.EventBus().Publish(events.ParticipationDecidedEvent{
		ParticipationID: participation.ID,
		RaffleID:        participation.RaffleID,
		UserID:          participation.UserID,
		AdminID:         adminID,
		Validated:       validated,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"participationId": participation.ID,
		"raffleId":        participation.RaffleID,
		"adminId":         adminID,
		"action":          action,
	}).Info("Participation decided")

	return participation, nil
}
