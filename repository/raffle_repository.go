package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tombola/database"
	"tombola/models"

	"github.com/jackc/pgx/v5"
)

const raffleColumns = `
	id, title, description, prize_amount, participation_price, max_participants,
	end_date, status, is_drawn, draw_date, winner_id, total_participations,
	total_revenue, created_by, created_at, updated_at`

// RaffleRepository implements the RaffleRepository interface
type RaffleRepository struct {
	q queryable
}

// NewRaffleRepository creates a new raffle repository
func NewRaffleRepository(db *database.DB) *RaffleRepository {
	return &RaffleRepository{q: db.Pool}
}

// newRaffleRepositoryWithTx creates a new raffle repository with a transaction
func newRaffleRepositoryWithTx(tx queryable) *RaffleRepository {
	return &RaffleRepository{q: tx}
}

func scanRaffle(row pgx.Row) (*models.Raffle, error) {
	var r models.Raffle
	err := row.Scan(
		&r.ID,
		&r.Title,
		&r.Description,
		&r.PrizeAmount,
		&r.ParticipationPrice,
		&r.MaxParticipants,
		&r.EndDate,
		&r.Status,
		&r.IsDrawn,
		&r.DrawDate,
		&r.WinnerID,
		&r.TotalParticipations,
		&r.TotalRevenue,
		&r.CreatedBy,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a raffle and fills its ID and timestamps
func (r *RaffleRepository) Create(ctx context.Context, raffle *models.Raffle) error {
	query := `
		INSERT INTO raffles (
			title, description, prize_amount, participation_price, max_participants,
			end_date, status, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		raffle.Title,
		raffle.Description,
		raffle.PrizeAmount,
		raffle.ParticipationPrice,
		raffle.MaxParticipants,
		raffle.EndDate,
		raffle.Status,
		raffle.CreatedBy,
	).Scan(&raffle.ID, &raffle.CreatedAt, &raffle.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create raffle: %w", err)
	}

	return nil
}

// GetByID retrieves a raffle by ID
func (r *RaffleRepository) GetByID(ctx context.Context, id int64) (*models.Raffle, error) {
	query := `SELECT ` + raffleColumns + ` FROM raffles WHERE id = $1`

	raffle, err := scanRaffle(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle by ID %d: %w", id, err)
	}

	return raffle, nil
}

// GetByIDForUpdate retrieves a raffle and holds a row lock until the transaction ends
func (r *RaffleRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Raffle, error) {
	query := `SELECT ` + raffleColumns + ` FROM raffles WHERE id = $1 FOR UPDATE`

	raffle, err := scanRaffle(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle for update by ID %d: %w", id, err)
	}

	return raffle, nil
}

// Update persists the configuration and status fields
func (r *RaffleRepository) Update(ctx context.Context, raffle *models.Raffle) error {
	query := `
		UPDATE raffles
		SET title = $2,
			description = $3,
			prize_amount = $4,
			participation_price = $5,
			max_participants = $6,
			end_date = $7,
			status = $8
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query,
		raffle.ID,
		raffle.Title,
		raffle.Description,
		raffle.PrizeAmount,
		raffle.ParticipationPrice,
		raffle.MaxParticipants,
		raffle.EndDate,
		raffle.Status,
	).Scan(&raffle.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("raffle %d not found", raffle.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update raffle %d: %w", raffle.ID, err)
	}

	return nil
}

// Delete removes a raffle; its participations and per-user counters cascade
func (r *RaffleRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM raffles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete raffle %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("raffle %d not found", id)
	}

	return nil
}

// List returns one page of raffles, newest first, and the total match count.
// The active and ended filters look at the deadline since ended is never stored.
func (r *RaffleRepository) List(ctx context.Context, filter models.RaffleFilter, page models.Page) ([]*models.Raffle, int64, error) {
	var conditions []string
	var args []any

	if filter.Status != nil {
		switch *filter.Status {
		case models.RaffleStatusActive:
			conditions = append(conditions, "status = 'active' AND end_date > NOW()")
		case models.RaffleStatusEnded:
			conditions = append(conditions, "status = 'active' AND end_date <= NOW()")
		default:
			args = append(args, *filter.Status)
			conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
		}
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM raffles `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count raffles: %w", err)
	}

	page = page.Normalize()
	args = append(args, page.Size, page.Offset())
	query := fmt.Sprintf(`SELECT %s FROM raffles %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		raffleColumns, where, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list raffles: %w", err)
	}
	defer rows.Close()

	raffles := make([]*models.Raffle, 0)
	for rows.Next() {
		raffle, err := scanRaffle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan raffle: %w", err)
		}
		raffles = append(raffles, raffle)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating raffles: %w", err)
	}

	return raffles, total, nil
}

// RecomputeStats rewrites the counters from validated and completed participations
// in a single statement, so repeated calls converge on the same values
func (r *RaffleRepository) RecomputeStats(ctx context.Context, id int64) (*models.RaffleStats, error) {
	query := `
		UPDATE raffles r
		SET total_participations = s.cnt,
			total_revenue = s.revenue
		FROM (
			SELECT COUNT(*) AS cnt, COALESCE(SUM(amount), 0) AS revenue
			FROM participations
			WHERE raffle_id = $1 AND status IN ('validated', 'completed')
		) s
		WHERE r.id = $1
		RETURNING r.total_participations, r.total_revenue
	`

	stats := &models.RaffleStats{RaffleID: id}
	err := r.q.QueryRow(ctx, query, id).Scan(&stats.TotalParticipations, &stats.TotalRevenue)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to recompute stats for raffle %d: %w", id, err)
	}

	return stats, nil
}

// CountValidated counts validated and completed participations straight from the ledger
func (r *RaffleRepository) CountValidated(ctx context.Context, id int64) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM participations
		WHERE raffle_id = $1 AND status IN ('validated', 'completed')
	`

	var count int64
	if err := r.q.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count validated participations for raffle %d: %w", id, err)
	}

	return count, nil
}

// MarkDrawn finalizes a raffle only if no other transaction drew it first
func (r *RaffleRepository) MarkDrawn(ctx context.Context, id, winnerID int64, drawDate time.Time) (bool, error) {
	query := `
		UPDATE raffles
		SET status = 'drawn',
			is_drawn = TRUE,
			draw_date = $3,
			winner_id = $2
		WHERE id = $1 AND is_drawn = FALSE
	`

	result, err := r.q.Exec(ctx, query, id, winnerID, drawDate)
	if err != nil {
		return false, fmt.Errorf("failed to mark raffle %d drawn: %w", id, err)
	}

	return result.RowsAffected() == 1, nil
}
