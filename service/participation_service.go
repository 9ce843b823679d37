package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"tombola/events"
	"tombola/models"

	log "github.com/sirupsen/logrus"
)

// maxNumberAttempts bounds participation number regeneration after collisions
const maxNumberAttempts = 50

type participationService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewParticipationService creates a new participation service
func NewParticipationService(uowFactory UnitOfWorkFactory) ParticipationService {
	return &participationService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// validateSubmission checks the request shape and returns the normalized reference and phone
func validateSubmission(req SubmitParticipationRequest) (string, string, error) {
	ref := models.NormalizeTransactionRef(req.TransactionRef)
	if n := utf8.RuneCountInString(ref); n < models.TransactionRefMinLength || n > models.TransactionRefMaxLength {
		return "", "", models.NewError(models.ErrorKindValidation, "transaction reference must be between %d and %d characters",
			models.TransactionRefMinLength, models.TransactionRefMaxLength)
	}

	if !req.PaymentMethod.IsValid() {
		return "", "", models.NewError(models.ErrorKindValidation, "unsupported payment method %q", req.PaymentMethod)
	}

	phone, err := models.NormalizePhone(req.PaymentPhone)
	if err != nil {
		return "", "", err
	}

	if req.Amount <= 0 {
		return "", "", models.NewError(models.ErrorKindValidation, "amount must be positive")
	}

	return ref, phone, nil
}

func (s *participationService) Submit(ctx context.Context, req SubmitParticipationRequest) (*models.Participation, error) {
	ref, phone, err := validateSubmission(req)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, models.NewError(models.ErrorKindNotFound, "user %d not found", req.UserID)
	}
	if !user.IsActive {
		return nil, models.NewError(models.ErrorKindForbidden, "user %d is not active", req.UserID)
	}

	raffle, err := uow.RaffleRepository().GetByID(ctx, req.RaffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}
	if raffle == nil {
		return nil, models.NewError(models.ErrorKindNotFound, "raffle %d not found", req.RaffleID)
	}

	now := s.now()
	if !raffle.IsActive(now) {
		return nil, models.NewError(models.ErrorKindRaffleNotActive, "raffle %d is not accepting participations", raffle.ID)
	}

	if req.Amount != raffle.ParticipationPrice {
		return nil, models.NewError(models.ErrorKindAmountMismatch, "amount %d does not match participation price %d",
			req.Amount, raffle.ParticipationPrice)
	}

	if !raffle.HasCapacity() {
		return nil, models.NewError(models.ErrorKindCapacityExceeded, "raffle %d is full", raffle.ID)
	}

	// The unique constraint catches concurrent submissions this check misses
	exists, err := uow.ParticipationRepository().ExistsByRaffleAndRef(ctx, raffle.ID, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to check transaction reference: %w", err)
	}
	if exists {
		return nil, models.NewError(models.ErrorKindDuplicatePayment, "transaction reference %s was already used for this raffle", ref)
	}

	participation := &models.Participation{
		UserID:         user.ID,
		RaffleID:       raffle.ID,
		TransactionRef: ref,
		PaymentPhone:   phone,
		PaymentMethod:  req.PaymentMethod,
		Amount:         req.Amount,
		Status:         models.ParticipationStatusPending,
	}

	if err := s.insertWithUniqueNumber(ctx, uow.ParticipationRepository(), participation, now); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.ParticipationSubmittedEvent{
		ParticipationID:     participation.ID,
		ParticipationNumber: participation.ParticipationNumber,
		RaffleID:            participation.RaffleID,
		UserID:              participation.UserID,
		Amount:              participation.Amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"participationId":     participation.ID,
		"participationNumber": participation.ParticipationNumber,
		"raffleId":            participation.RaffleID,
		"userId":              participation.UserID,
	}).Info("Participation submitted")

	return participation, nil
}

// insertWithUniqueNumber generates participation numbers until one inserts
func (s *participationService) insertWithUniqueNumber(ctx context.Context, repo ParticipationRepository, participation *models.Participation, now time.Time) error {
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		number, err := models.GenerateParticipationNumber(now)
		if err != nil {
			return err
		}
		participation.ParticipationNumber = number

		created, err := repo.Create(ctx, participation)
		if err != nil {
			return err
		}
		if created {
			return nil
		}

		log.WithFields(log.Fields{
			"participationNumber": number,
			"attempt":             attempt,
		}).Debug("Participation number collision, regenerating")
	}

	return fmt.Errorf("failed to allocate a participation number after %d attempts", maxNumberAttempts)
}

func (s *participationService) Get(ctx context.Context, participationID int64, requester models.Requester) (*models.Participation, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	participation, err := uow.ParticipationRepository().GetByID(ctx, participationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participation: %w", err)
	}

	return checkVisible(participation, requester, fmt.Sprintf("participation %d", participationID))
}

func (s *participationService) GetByNumber(ctx context.Context, number string, requester models.Requester) (*models.Participation, error) {
	if !models.IsParticipationNumber(number) {
		return nil, models.NewError(models.ErrorKindValidation, "%q is not a participation number", number)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	participation, err := uow.ParticipationRepository().GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get participation: %w", err)
	}

	return checkVisible(participation, requester, "participation "+number)
}

// checkVisible applies the owner-or-admin read rule
func checkVisible(participation *models.Participation, requester models.Requester, label string) (*models.Participation, error) {
	if participation == nil {
		return nil, models.NewError(models.ErrorKindNotFound, "%s not found", label)
	}
	if !participation.VisibleTo(requester) {
		return nil, models.NewError(models.ErrorKindForbidden, "%s belongs to another user", label)
	}
	return participation, nil
}

func (s *participationService) ListForUser(ctx context.Context, userID int64, status *models.ParticipationStatus, page models.Page) (*models.ParticipationPage, error) {
	return s.list(ctx, models.ParticipationFilter{UserID: &userID, Status: status}, page)
}

func (s *participationService) ListAll(ctx context.Context, filter models.ParticipationFilter, page models.Page) (*models.ParticipationPage, error) {
	return s.list(ctx, filter, page)
}

func (s *participationService) list(ctx context.Context, filter models.ParticipationFilter, page models.Page) (*models.ParticipationPage, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, models.NewError(models.ErrorKindValidation, "unknown participation status %q", *filter.Status)
	}
	page = page.Normalize()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	items, total, err := uow.ParticipationRepository().List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list participations: %w", err)
	}

	return &models.ParticipationPage{
		Items:      items,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: page.TotalPages(total),
	}, nil
}
