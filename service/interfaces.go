package service

import (
	"context"
	"time"

	"tombola/events"
	"tombola/models"
)

// UserRepository defines the interface for the user collaborator's data
type UserRepository interface {
	// GetByID retrieves a user by ID, nil if absent
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// IncrementParticipationCounters bumps the user's total and per-raffle counters by one
	IncrementParticipationCounters(ctx context.Context, userID, raffleID int64) error

	// GetStats returns the user's participation counters
	GetStats(ctx context.Context, userID int64) (*models.UserStats, error)
}

// RaffleRepository defines the interface for raffle data access
type RaffleRepository interface {
	// Create inserts a raffle and fills its ID and timestamps
	Create(ctx context.Context, raffle *models.Raffle) error

	// GetByID retrieves a raffle by ID, nil if absent
	GetByID(ctx context.Context, id int64) (*models.Raffle, error)

	// GetByIDForUpdate retrieves a raffle and locks its row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Raffle, error)

	// Update persists the configuration and status fields
	Update(ctx context.Context, raffle *models.Raffle) error

	// Delete removes a raffle; its participations cascade
	Delete(ctx context.Context, id int64) error

	// List returns one page of raffles, newest first, and the total match count
	List(ctx context.Context, filter models.RaffleFilter, page models.Page) ([]*models.Raffle, int64, error)

	// RecomputeStats rewrites the counters from validated and completed participations
	RecomputeStats(ctx context.Context, id int64) (*models.RaffleStats, error)

	// CountValidated counts validated and completed participations straight from the ledger
	CountValidated(ctx context.Context, id int64) (int64, error)

	// MarkDrawn finalizes a raffle that is not drawn yet. Returns false when
	// another transaction already drew it.
	MarkDrawn(ctx context.Context, id, winnerID int64, drawDate time.Time) (bool, error)
}

// ParticipationRepository defines the interface for participation ledger access
type ParticipationRepository interface {
	// Create inserts a participation. Returns false without error when the
	// participation number is already taken so the caller can regenerate it.
	Create(ctx context.Context, participation *models.Participation) (bool, error)

	// GetByID retrieves a participation by ID, nil if absent
	GetByID(ctx context.Context, id int64) (*models.Participation, error)

	// GetByIDForUpdate retrieves a participation and locks its row
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Participation, error)

	// GetByNumber retrieves a participation by its human-readable number
	GetByNumber(ctx context.Context, number string) (*models.Participation, error)

	// ExistsByRaffleAndRef reports whether the normalized reference was already used in the raffle
	ExistsByRaffleAndRef(ctx context.Context, raffleID int64, transactionRef string) (bool, error)

	// UpdateDecision persists status, notes, validator and validation time
	UpdateDecision(ctx context.Context, participation *models.Participation) error

	// List returns one page of participations, newest first, and the total match count
	List(ctx context.Context, filter models.ParticipationFilter, page models.Page) ([]*models.Participation, int64, error)

	// GetValidatedByRaffle returns the raffle's validated participations ordered by ID
	GetValidatedByRaffle(ctx context.Context, raffleID int64) ([]*models.Participation, error)

	// CompleteForDraw moves every validated participation of the raffle to completed
	CompleteForDraw(ctx context.Context, raffleID int64) (int64, error)

	// SetWinner flags the participation as the winning one
	SetWinner(ctx context.Context, participationID int64) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and releases pending events
	Commit() error

	// Rollback rolls back the transaction and drops pending events
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	RaffleRepository() RaffleRepository
	ParticipationRepository() ParticipationRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// WinnerPicker chooses the index of the winning entry in a pool of size n
type WinnerPicker interface {
	Pick(n int) (int, error)
}

// SubmitParticipationRequest carries a user's claim of payment
type SubmitParticipationRequest struct {
	UserID         int64                `json:"-"`
	RaffleID       int64                `json:"raffleId"`
	TransactionRef string               `json:"transactionId"`
	PaymentPhone   string               `json:"paymentPhone"`
	PaymentMethod  models.PaymentMethod `json:"paymentMethod"`
	Amount         int64                `json:"amount"`
}

// RaffleService defines the raffle aggregate operations
type RaffleService interface {
	// Create validates the configuration and opens a new active raffle
	Create(ctx context.Context, adminID int64, config models.RaffleConfig) (*models.Raffle, error)

	// Edit replaces the configuration of a raffle that has not been drawn
	Edit(ctx context.Context, raffleID int64, config models.RaffleConfig) (*models.Raffle, error)

	// Delete removes a raffle that has no validated participations
	Delete(ctx context.Context, raffleID int64) error

	// Cancel closes an undrawn raffle without a winner
	Cancel(ctx context.Context, raffleID int64) (*models.Raffle, error)

	// RecomputeStats rebuilds the derived counters from the ledger
	RecomputeStats(ctx context.Context, raffleID int64) (*models.Raffle, error)

	// Get returns a raffle by ID
	Get(ctx context.Context, raffleID int64) (*models.Raffle, error)

	// List returns one page of raffles
	List(ctx context.Context, filter models.RaffleFilter, page models.Page) (*models.RafflePage, error)
}

// ParticipationService defines the participation ledger operations
type ParticipationService interface {
	// Submit records a pending participation after checking the payment claim
	Submit(ctx context.Context, req SubmitParticipationRequest) (*models.Participation, error)

	// Get returns a participation visible to the requester
	Get(ctx context.Context, participationID int64, requester models.Requester) (*models.Participation, error)

	// GetByNumber returns a participation by its number when visible to the requester
	GetByNumber(ctx context.Context, number string, requester models.Requester) (*models.Participation, error)

	// ListForUser returns the user's participations, newest first
	ListForUser(ctx context.Context, userID int64, status *models.ParticipationStatus, page models.Page) (*models.ParticipationPage, error)

	// ListAll returns participations across users for administrators
	ListAll(ctx context.Context, filter models.ParticipationFilter, page models.Page) (*models.ParticipationPage, error)
}

// ValidationService defines the admin decision workflow
type ValidationService interface {
	// Decide validates or rejects a pending participation
	Decide(ctx context.Context, participationID, adminID int64, action models.DecisionAction, notes string) (*models.Participation, error)
}

// DrawService defines the draw engine
type DrawService interface {
	// Draw picks one winner uniformly among the validated participations
	Draw(ctx context.Context, raffleID int64) (*models.DrawResult, error)
}

// UserService defines read access to the user counters
type UserService interface {
	// GetStats returns the user's participation counters
	GetStats(ctx context.Context, userID int64) (*models.UserStats, error)
}
