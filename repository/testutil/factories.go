package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"tombola/database"
	"tombola/models"

	"github.com/stretchr/testify/require"
)

var sequence atomic.Int64

// next returns a process-wide unique suffix for usernames and references
func next() int64 {
	return sequence.Add(1)
}

// InsertUser creates a user row directly
func InsertUser(t *testing.T, db *database.DB, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Username: fmt.Sprintf("user_%d", next()),
		Role:     role,
		IsActive: true,
	}
	err := db.QueryRow(context.Background(), `
		INSERT INTO users (username, role)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, user.Username, user.Role).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	require.NoError(t, err)

	return user
}

// DeactivateUser flips a user to inactive
func DeactivateUser(t *testing.T, db *database.DB, userID int64) {
	t.Helper()
	_, err := db.Exec(context.Background(), `UPDATE users SET is_active = FALSE WHERE id = $1`, userID)
	require.NoError(t, err)
}

// CreateTestRaffleConfig returns a valid raffle configuration ending in a week
func CreateTestRaffleConfig() models.RaffleConfig {
	maxParticipants := int64(2)
	return models.RaffleConfig{
		Title:              "Grand tombola",
		Description:        "Win a brand new motorbike",
		PrizeAmount:        10000,
		ParticipationPrice: 500,
		MaxParticipants:    &maxParticipants,
		EndDate:            time.Now().Add(7 * 24 * time.Hour),
	}
}

// CreateTestRaffle builds an active raffle from CreateTestRaffleConfig
func CreateTestRaffle(createdBy int64) *models.Raffle {
	raffle := &models.Raffle{
		Status:    models.RaffleStatusActive,
		CreatedBy: createdBy,
	}
	raffle.ApplyConfig(CreateTestRaffleConfig())
	return raffle
}

// CreateTestParticipation builds a pending participation with unique number and reference
func CreateTestParticipation(userID, raffleID, amount int64) *models.Participation {
	n := next()
	return &models.Participation{
		ParticipationNumber: fmt.Sprintf("%s%s%06d", models.ParticipationNumberPrefix, time.Now().Format("060102"), n%1_000_000),
		UserID:              userID,
		RaffleID:            raffleID,
		TransactionRef:      fmt.Sprintf("MP%08d", n),
		PaymentPhone:        "677123456",
		PaymentMethod:       models.PaymentMethodMTNMoMo,
		Amount:              amount,
		Status:              models.ParticipationStatusPending,
	}
}

// ExpireRaffle moves a raffle's deadline into the past, bypassing edit validation
func ExpireRaffle(t *testing.T, db *database.DB, raffleID int64) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		`UPDATE raffles SET end_date = NOW() - INTERVAL '1 hour' WHERE id = $1`, raffleID)
	require.NoError(t, err)
}

// SetParticipationStatus forces a participation status, bypassing the workflow
func SetParticipationStatus(t *testing.T, db *database.DB, participationID int64, status models.ParticipationStatus) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		`UPDATE participations SET status = $2 WHERE id = $1`, participationID, status)
	require.NoError(t, err)
}
