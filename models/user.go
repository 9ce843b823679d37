package models

import (
	"time"
)

// Role is the caller's authorization level
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a registered account. Users are owned by the account service;
// this service only reads them and maintains their participation counters.
type User struct {
	ID                  int64     `db:"id" json:"id"`
	Username            string    `db:"username" json:"username"`
	Role                Role      `db:"role" json:"role"`
	IsActive            bool      `db:"is_active" json:"isActive"`
	TotalParticipations int64     `db:"total_participations" json:"totalParticipations"`
	CreatedAt           time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time `db:"updated_at" json:"updatedAt"`
}

// UserRaffleCount is a user's validated participation count for one raffle
type UserRaffleCount struct {
	RaffleID           int64 `db:"raffle_id" json:"raffleId"`
	ParticipationCount int64 `db:"participation_count" json:"participationCount"`
}

// UserStats bundles a user's running counters
type UserStats struct {
	UserID              int64             `json:"userId"`
	TotalParticipations int64             `json:"totalParticipations"`
	PerRaffle           []UserRaffleCount `json:"perRaffle"`
}

// Requester identifies the authenticated caller of an operation
type Requester struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the caller has the admin role
func (r Requester) IsAdmin() bool {
	return r.Role == RoleAdmin
}

