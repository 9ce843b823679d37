package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// RaffleStatus represents the lifecycle state of a raffle
type RaffleStatus string

const (
	RaffleStatusActive    RaffleStatus = "active"
	RaffleStatusEnded     RaffleStatus = "ended"
	RaffleStatusDrawn     RaffleStatus = "drawn"
	RaffleStatusCancelled RaffleStatus = "cancelled"
)

// IsValid reports whether the status is one of the known raffle states
func (s RaffleStatus) IsValid() bool {
	switch s {
	case RaffleStatusActive, RaffleStatusEnded, RaffleStatusDrawn, RaffleStatusCancelled:
		return true
	}
	return false
}

// Field limits for raffle configuration
const (
	RaffleTitleMinLength       = 5
	RaffleTitleMaxLength       = 200
	RaffleDescriptionMinLength = 10
	RaffleDescriptionMaxLength = 1000
	RaffleMinParticipants      = 2
)

// Raffle is a time-boxed prize drawing with a fixed entry price
type Raffle struct {
	ID                  int64        `db:"id" json:"id"`
	Title               string       `db:"title" json:"title"`
	Description         string       `db:"description" json:"description"`
	PrizeAmount         int64        `db:"prize_amount" json:"prizeAmount"`
	ParticipationPrice  int64        `db:"participation_price" json:"participationPrice"`
	MaxParticipants     *int64       `db:"max_participants" json:"maxParticipants,omitempty"`
	EndDate             time.Time    `db:"end_date" json:"endDate"`
	Status              RaffleStatus `db:"status" json:"status"`
	IsDrawn             bool         `db:"is_drawn" json:"isDrawn"`
	DrawDate            *time.Time   `db:"draw_date" json:"drawDate,omitempty"`
	WinnerID            *int64       `db:"winner_id" json:"winnerId,omitempty"`
	TotalParticipations int64        `db:"total_participations" json:"totalParticipations"`
	TotalRevenue        int64        `db:"total_revenue" json:"totalRevenue"`
	CreatedBy           int64        `db:"created_by" json:"createdBy"`
	CreatedAt           time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time    `db:"updated_at" json:"updatedAt"`
}

// IsActive reports whether the raffle currently accepts participations
func (r *Raffle) IsActive(now time.Time) bool {
	return r.Status == RaffleStatusActive && r.EndDate.After(now) && !r.IsDrawn
}

// IsReadyForDraw reports whether the deadline passed and there is at least one validated entry
func (r *Raffle) IsReadyForDraw(now time.Time) bool {
	return r.Status == RaffleStatusActive &&
		!r.EndDate.After(now) &&
		!r.IsDrawn &&
		r.TotalParticipations > 0
}

// HasCapacity reports whether another validated participation fits under the limit
func (r *Raffle) HasCapacity() bool {
	if r.MaxParticipants == nil {
		return true
	}
	return r.TotalParticipations < *r.MaxParticipants
}

// CanEdit reports whether the raffle configuration may still change
func (r *Raffle) CanEdit() bool {
	return !r.IsDrawn && r.Status != RaffleStatusCancelled
}

// CanDelete reports whether the raffle may be removed
func (r *Raffle) CanDelete() bool {
	return !r.IsDrawn && r.TotalParticipations == 0
}

// EffectiveStatus returns the status as seen by clients: an active raffle
// past its deadline is reported as ended.
func (r *Raffle) EffectiveStatus(now time.Time) RaffleStatus {
	if r.Status == RaffleStatusActive && !r.EndDate.After(now) {
		return RaffleStatusEnded
	}
	return r.Status
}

// MarkDrawn finalizes the raffle with the winning participation
func (r *Raffle) MarkDrawn(winnerID int64, at time.Time) {
	r.Status = RaffleStatusDrawn
	r.IsDrawn = true
	r.DrawDate = &at
	r.WinnerID = &winnerID
}

// ApplyConfig overwrites the editable fields
func (r *Raffle) ApplyConfig(cfg RaffleConfig) {
	r.Title = strings.TrimSpace(cfg.Title)
	r.Description = strings.TrimSpace(cfg.Description)
	r.PrizeAmount = cfg.PrizeAmount
	r.ParticipationPrice = cfg.ParticipationPrice
	r.MaxParticipants = cfg.MaxParticipants
	r.EndDate = cfg.EndDate
}

// RaffleConfig is the admin-supplied configuration for creating or editing a raffle
type RaffleConfig struct {
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	PrizeAmount        int64     `json:"prizeAmount"`
	ParticipationPrice int64     `json:"participationPrice"`
	MaxParticipants    *int64    `json:"maxParticipants,omitempty"`
	EndDate            time.Time `json:"endDate"`
}

// RaffleLimits holds the configured monetary floors
type RaffleLimits struct {
	MinPrizeAmount        int64
	MinParticipationPrice int64
}

// Validate checks a new raffle's configuration against the field rules and the given floors
func (c RaffleConfig) Validate(limits RaffleLimits, now time.Time) error {
	if err := c.validateFields(limits); err != nil {
		return err
	}
	return c.validateEndDate(now)
}

// ValidateEdit checks a replacement configuration. The end date only has to lie
// in the future when it moves, so an ended raffle awaiting its draw can still
// have its text corrected.
func (c RaffleConfig) ValidateEdit(limits RaffleLimits, now, currentEndDate time.Time) error {
	if err := c.validateFields(limits); err != nil {
		return err
	}
	if c.EndDate.Equal(currentEndDate) {
		return nil
	}
	return c.validateEndDate(now)
}

func (c RaffleConfig) validateFields(limits RaffleLimits) error {
	titleLen := utf8.RuneCountInString(strings.TrimSpace(c.Title))
	if titleLen < RaffleTitleMinLength || titleLen > RaffleTitleMaxLength {
		return NewError(ErrorKindValidation, "title must be between %d and %d characters", RaffleTitleMinLength, RaffleTitleMaxLength)
	}

	descLen := utf8.RuneCountInString(strings.TrimSpace(c.Description))
	if descLen < RaffleDescriptionMinLength || descLen > RaffleDescriptionMaxLength {
		return NewError(ErrorKindValidation, "description must be between %d and %d characters", RaffleDescriptionMinLength, RaffleDescriptionMaxLength)
	}

	if c.PrizeAmount < limits.MinPrizeAmount {
		return NewError(ErrorKindValidation, "prize amount must be at least %d", limits.MinPrizeAmount)
	}

	if c.ParticipationPrice < limits.MinParticipationPrice {
		return NewError(ErrorKindValidation, "participation price must be at least %d", limits.MinParticipationPrice)
	}

	if c.MaxParticipants != nil && *c.MaxParticipants < RaffleMinParticipants {
		return NewError(ErrorKindValidation, "max participants must be at least %d", RaffleMinParticipants)
	}

	return nil
}

func (c RaffleConfig) validateEndDate(now time.Time) error {
	if c.EndDate.IsZero() || !c.EndDate.After(now) {
		return NewError(ErrorKindValidation, "end date must be in the future")
	}

	return nil
}

// RaffleFilter narrows raffle listings
type RaffleFilter struct {
	Status *RaffleStatus
}

// RaffleStats is the derived aggregate over a raffle's validated participations
type RaffleStats struct {
	RaffleID            int64 `json:"raffleId"`
	TotalParticipations int64 `json:"totalParticipations"`
	TotalRevenue        int64 `json:"totalRevenue"`
}

// DrawResult is the outcome of a successful draw
type DrawResult struct {
	Raffle *Raffle        `json:"raffle"`
	Winner *Participation `json:"winner"`
	Pool   int            `json:"poolSize"`
}
