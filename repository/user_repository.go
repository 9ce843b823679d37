package repository

import (
	"context"
	"errors"
	"fmt"

	"tombola/database"
	"tombola/models"

	"github.com/jackc/pgx/v5"
)

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, username, role, is_active, total_participations, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Role,
		&user.IsActive,
		&user.TotalParticipations,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}

	return &user, nil
}

// Create registers a user. Accounts are owned by the identity system, so only
// operator tooling and tests call this.
func (r *UserRepository) Create(ctx context.Context, username string, role models.Role) (*models.User, error) {
	query := `
		INSERT INTO users (username, role)
		VALUES ($1, $2)
		RETURNING id, username, role, is_active, total_participations, created_at, updated_at
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, username, role).Scan(
		&user.ID,
		&user.Username,
		&user.Role,
		&user.IsActive,
		&user.TotalParticipations,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", username, err)
	}

	return &user, nil
}

// IncrementParticipationCounters bumps the total and per-raffle counters by one
func (r *UserRepository) IncrementParticipationCounters(ctx context.Context, userID, raffleID int64) error {
	result, err := r.q.Exec(ctx, `
		UPDATE users
		SET total_participations = total_participations + 1
		WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to increment participations for user %d: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found", userID)
	}

	_, err = r.q.Exec(ctx, `
		INSERT INTO user_raffle_participations (user_id, raffle_id, participation_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, raffle_id) DO UPDATE
		SET participation_count = user_raffle_participations.participation_count + 1,
			updated_at = CURRENT_TIMESTAMP
	`, userID, raffleID)
	if err != nil {
		return fmt.Errorf("failed to increment participations for user %d in raffle %d: %w", userID, raffleID, err)
	}

	return nil
}

// GetStats returns the user's participation counters, nil if the user does not exist
func (r *UserRepository) GetStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	stats := &models.UserStats{UserID: userID, PerRaffle: make([]models.UserRaffleCount, 0)}

	err := r.q.QueryRow(ctx, `SELECT total_participations FROM users WHERE id = $1`, userID).
		Scan(&stats.TotalParticipations)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stats for user %d: %w", userID, err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT raffle_id, participation_count
		FROM user_raffle_participations
		WHERE user_id = $1
		ORDER BY raffle_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get per-raffle stats for user %d: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.UserRaffleCount
		if err := rows.Scan(&c.RaffleID, &c.ParticipationCount); err != nil {
			return nil, fmt.Errorf("failed to scan per-raffle stats: %w", err)
		}
		stats.PerRaffle = append(stats.PerRaffle, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating per-raffle stats: %w", err)
	}

	return stats, nil
}
