package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tombola/database"
	"tombola/models"

	"github.com/jackc/pgx/v5"
)

const participationColumns = `
	id, participation_number, user_id, raffle_id, transaction_ref, payment_phone,
	payment_method, amount, status, is_winner, validation_notes, validated_by,
	validated_at, created_at, updated_at`

// ParticipationRepository implements the ParticipationRepository interface
type ParticipationRepository struct {
	q queryable
}

// NewParticipationRepository creates a new participation repository
func NewParticipationRepository(db *database.DB) *ParticipationRepository {
	return &ParticipationRepository{q: db.Pool}
}

// newParticipationRepositoryWithTx creates a new participation repository with a transaction
func newParticipationRepositoryWithTx(tx queryable) *ParticipationRepository {
	return &ParticipationRepository{q: tx}
}

func scanParticipation(row pgx.Row) (*models.Participation, error) {
	var p models.Participation
	err := row.Scan(
		&p.ID,
		&p.ParticipationNumber,
		&p.UserID,
		&p.RaffleID,
		&p.TransactionRef,
		&p.PaymentPhone,
		&p.PaymentMethod,
		&p.Amount,
		&p.Status,
		&p.IsWinner,
		&p.ValidationNotes,
		&p.ValidatedBy,
		&p.ValidatedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectParticipations(rows pgx.Rows) ([]*models.Participation, error) {
	defer rows.Close()

	participations := make([]*models.Participation, 0)
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participation: %w", err)
		}
		participations = append(participations, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participations: %w", err)
	}

	return participations, nil
}

// Create inserts a participation. A participation number collision leaves the
// transaction usable and returns false so the caller can retry with a new number.
// A reused transaction reference fails with a DuplicatePayment error.
func (r *ParticipationRepository) Create(ctx context.Context, participation *models.Participation) (bool, error) {
	query := `
		INSERT INTO participations (
			participation_number, user_id, raffle_id, transaction_ref,
			payment_phone, payment_method, amount, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT ON CONSTRAINT ` + constraintParticipationNumber + ` DO NOTHING
		RETURNING id, is_winner, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		participation.ParticipationNumber,
		participation.UserID,
		participation.RaffleID,
		participation.TransactionRef,
		participation.PaymentPhone,
		participation.PaymentMethod,
		participation.Amount,
		participation.Status,
	).Scan(&participation.ID, &participation.IsWinner, &participation.CreatedAt, &participation.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		if domainErr := translateParticipationError(err); domainErr != nil {
			return false, domainErr
		}
		return false, fmt.Errorf("failed to create participation: %w", err)
	}

	return true, nil
}

// GetByID retrieves a participation by ID
func (r *ParticipationRepository) GetByID(ctx context.Context, id int64) (*models.Participation, error) {
	query := `SELECT ` + participationColumns + ` FROM participations WHERE id = $1`

	p, err := scanParticipation(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participation by ID %d: %w", id, err)
	}

	return p, nil
}

// GetByIDForUpdate retrieves a participation and locks its row
func (r *ParticipationRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Participation, error) {
	query := `SELECT ` + participationColumns + ` FROM participations WHERE id = $1 FOR UPDATE`

	p, err := scanParticipation(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participation for update by ID %d: %w", id, err)
	}

	return p, nil
}

// GetByNumber retrieves a participation by its human-readable number
func (r *ParticipationRepository) GetByNumber(ctx context.Context, number string) (*models.Participation, error) {
	query := `SELECT ` + participationColumns + ` FROM participations WHERE participation_number = $1`

	p, err := scanParticipation(r.q.QueryRow(ctx, query, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participation by number %s: %w", number, err)
	}

	return p, nil
}

// ExistsByRaffleAndRef reports whether the normalized reference was already used in the raffle
func (r *ParticipationRepository) ExistsByRaffleAndRef(ctx context.Context, raffleID int64, transactionRef string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM participations WHERE raffle_id = $1 AND transaction_ref = $2)`

	var exists bool
	if err := r.q.QueryRow(ctx, query, raffleID, transactionRef).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check transaction reference for raffle %d: %w", raffleID, err)
	}

	return exists, nil
}

// UpdateDecision persists the admin verdict
func (r *ParticipationRepository) UpdateDecision(ctx context.Context, participation *models.Participation) error {
	query := `
		UPDATE participations
		SET status = $2,
			validation_notes = $3,
			validated_by = $4,
			validated_at = $5
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query,
		participation.ID,
		participation.Status,
		participation.ValidationNotes,
		participation.ValidatedBy,
		participation.ValidatedAt,
	).Scan(&participation.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("participation %d not found", participation.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update participation %d: %w", participation.ID, err)
	}

	return nil
}

// List returns one page of participations matching the filter, newest first
func (r *ParticipationRepository) List(ctx context.Context, filter models.ParticipationFilter, page models.Page) ([]*models.Participation, int64, error) {
	var conditions []string
	var args []any

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.RaffleID != nil {
		args = append(args, *filter.RaffleID)
		conditions = append(conditions, fmt.Sprintf("raffle_id = $%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM participations `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count participations: %w", err)
	}

	page = page.Normalize()
	args = append(args, page.Size, page.Offset())
	query := fmt.Sprintf(`SELECT %s FROM participations %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		participationColumns, where, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list participations: %w", err)
	}

	participations, err := collectParticipations(rows)
	if err != nil {
		return nil, 0, err
	}

	return participations, total, nil
}

// GetValidatedByRaffle returns the raffle's validated participations ordered by ID
func (r *ParticipationRepository) GetValidatedByRaffle(ctx context.Context, raffleID int64) ([]*models.Participation, error) {
	query := `
		SELECT ` + participationColumns + `
		FROM participations
		WHERE raffle_id = $1 AND status = 'validated'
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get validated participations for raffle %d: %w", raffleID, err)
	}

	return collectParticipations(rows)
}

// CompleteForDraw moves every validated participation of the raffle to completed
func (r *ParticipationRepository) CompleteForDraw(ctx context.Context, raffleID int64) (int64, error) {
	query := `
		UPDATE participations
		SET status = 'completed'
		WHERE raffle_id = $1 AND status = 'validated'
	`

	result, err := r.q.Exec(ctx, query, raffleID)
	if err != nil {
		return 0, fmt.Errorf("failed to complete participations for raffle %d: %w", raffleID, err)
	}

	return result.RowsAffected(), nil
}

// SetWinner flags a completed participation as the winner
func (r *ParticipationRepository) SetWinner(ctx context.Context, participationID int64) error {
	query := `
		UPDATE participations
		SET is_winner = TRUE
		WHERE id = $1 AND status = 'completed'
	`

	result, err := r.q.Exec(ctx, query, participationID)
	if err != nil {
		if domainErr := translateParticipationError(err); domainErr != nil {
			return domainErr
		}
		return fmt.Errorf("failed to set winner %d: %w", participationID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("participation %d is not a completed entry", participationID)
	}

	return nil
}
