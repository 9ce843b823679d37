package service

import (
	"context"
	"fmt"
	"time"

	"tombola/config"
	"tombola/events"
	"tombola/models"

	log "github.com/sirupsen/logrus"
)

type raffleService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewRaffleService creates a new raffle service
func NewRaffleService(uowFactory UnitOfWorkFactory) RaffleService {
	return &raffleService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

func (s *raffleService) Create(ctx context.Context, adminID int64, cfg models.RaffleConfig) (*models.Raffle, error) {
	if err := cfg.Validate(config.Get().Limits(), s.now()); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffle := &models.Raffle{
		Status:    models.RaffleStatusActive,
		CreatedBy: adminID,
	}
	raffle.ApplyConfig(cfg)

	if err := uow.RaffleRepository().Create(ctx, raffle); err != nil {
		return nil, fmt.Errorf("failed to create raffle: %w", err)
	}

	uow.EventBus().Publish(events.RaffleCreatedEvent{
		RaffleID:           raffle.ID,
		Title:              raffle.Title,
		PrizeAmount:        raffle.PrizeAmount,
		ParticipationPrice: raffle.ParticipationPrice,
		EndDate:            raffle.EndDate,
		CreatedBy:          adminID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"raffleId": raffle.ID,
		"adminId":  adminID,
		"endDate":  raffle.EndDate,
	}).Info("Raffle created")

	return raffle, nil
}

// Edit replaces the configuration. Price and capacity stay editable after
// participations exist.
func (s *raffleService) Edit(ctx context.Context, raffleID int64, cfg models.RaffleConfig) (*models.Raffle, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffle, err := uow.RaffleRepository().GetByIDForUpdate(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}
	if raffle == nil {
		return nil, models.NewError(models.ErrorKindNotFound, "raffle %d not found", raffleID)
	}

	if !raffle.CanEdit() {
		return nil, models.NewError(models.ErrorKindNotEditable, "raffle %d can no longer be edited", raffleID)
	}

	if err := cfg.ValidateEdit(config.Get().Limits(), s.now(), raffle.EndDate); err != nil {
		return nil, err
	}

	raffle.ApplyConfig(cfg)
	if err := uow.RaffleRepository().Update(ctx, raffle); err != nil {
		return nil, fmt.Errorf("failed to update raffle: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return raffle, nil
}

// Delete counts validated entries from the ledger under the row lock rather
// than trusting the cached counter
func (s *raffleService) Delete(ctx context.Context, raffleID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffle, err := uow.RaffleRepository().GetByIDForUpdate(ctx, raffleID)
	if err != nil {
		return fmt.Errorf("failed to get raffle: %w", err)
	}
	if raffle == nil {
		return models.NewError(models.ErrorKindNotFound, "raffle %d not found", raffleID)
	}

	if raffle.IsDrawn {
		return models.NewError(models.ErrorKindNotDeletable, "raffle %d has been drawn", raffleID)
	}

	validated, err := uow.RaffleRepository().CountValidated(ctx, raffleID)
	if err != nil {
		return fmt.Errorf("failed to count validated participations: %w", err)
	}
	if validated > 0 {
		return models.NewError(models.ErrorKindNotDeletable, "raffle %d has %d validated participations", raffleID, validated)
	}

	if err := uow.RaffleRepository().Delete(ctx, raffleID); err != nil {
		return fmt.Errorf("failed to delete raffle: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("raffleId", raffleID).Info("Raffle deleted")
	return nil
}

func (s *raffleService) Cancel(ctx context.Context, raffleID int64) (*models.Raffle, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffle, err := uow.RaffleRepository().GetByIDForUpdate(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}
	if raffle == nil {
		return nil, models.NewError(models.ErrorKindNotFound, "raffle %d not found", raffleID)
	}

	if !raffle.CanEdit() {
		return nil, models.NewError(models.ErrorKindNotEditable, "raffle %d is already %s", raffleID, raffle.Status)
	}

	raffle.Status = models.RaffleStatusCancelled
	if err := uow.RaffleRepository().Update(ctx, raffle); err != nil {
		return nil, fmt.Errorf("failed to cancel raffle: %w", err)
	}

	uow.EventBus().Publish(events.RaffleCancelledEvent{
		RaffleID:            raffle.ID,
		TotalParticipations: raffle.TotalParticipations,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("raffleId", raffleID).Info("Raffle cancelled")
	return raffle, nil
}

func (s *raffleService) RecomputeStats(ctx context.Context, raffleID int64) (*models.Raffle, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	stats, err := uow.RaffleRepository().RecomputeStats(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to recompute stats: %w", err)
	}
	if stats == nil {
		return nil, models.NewError(models.ErrorKindNotFound, "raffle %d not found", raffleID)
	}

	raffle, err := uow.RaffleRepository().GetByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"raffleId":            raffleID,
		"totalParticipations": stats.TotalParticipations,
		"totalRevenue":        stats.TotalRevenue,
	}).Debug("Raffle stats recomputed")

	return raffle, nil
}

func (s *raffleService) Get(ctx context.Context, raffleID int64) (*models.Raffle, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffle, err := uow.RaffleRepository().GetByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}
	if raffle == nil {
		return nil, models.NewError(models.ErrorKindNotFound, "raffle %d not found", raffleID)
	}

	return raffle, nil
}

func (s *raffleService) List(ctx context.Context, filter models.RaffleFilter, page models.Page) (*models.RafflePage, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, models.NewError(models.ErrorKindValidation, "unknown raffle status %q", *filter.Status)
	}
	page = page.Normalize()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffles, total, err := uow.RaffleRepository().List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list raffles: %w", err)
	}

	return &models.RafflePage{
		Items:      raffles,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: page.TotalPages(total),
	}, nil
}
