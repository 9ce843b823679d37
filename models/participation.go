package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"
)

// ParticipationStatus represents the state of a participation
type ParticipationStatus string

const (
	ParticipationStatusPending   ParticipationStatus = "pending"
	ParticipationStatusValidated ParticipationStatus = "validated"
	ParticipationStatusRejected  ParticipationStatus = "rejected"
	ParticipationStatusCompleted ParticipationStatus = "completed"
)

// IsValid reports whether the status is one of the known participation states
func (s ParticipationStatus) IsValid() bool {
	switch s {
	case ParticipationStatusPending, ParticipationStatusValidated, ParticipationStatusRejected, ParticipationStatusCompleted:
		return true
	}
	return false
}

// PaymentMethod is the mobile-money operator used to pay the entry
type PaymentMethod string

const (
	PaymentMethodMTNMoMo     PaymentMethod = "mtn_momo"
	PaymentMethodOrangeMoney PaymentMethod = "orange_money"
)

// IsValid reports whether the payment method is supported
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodMTNMoMo || m == PaymentMethodOrangeMoney
}

// DecisionAction is an admin verdict on a pending participation
type DecisionAction string

const (
	DecisionValidate DecisionAction = "validate"
	DecisionReject   DecisionAction = "reject"
)

// IsValid reports whether the action is validate or reject
func (a DecisionAction) IsValid() bool {
	return a == DecisionValidate || a == DecisionReject
}

const (
	// ParticipationNumberPrefix starts every human-readable participation number
	ParticipationNumberPrefix = "TMB"
	participationNumberDigits = 6

	TransactionRefMinLength = 3
	TransactionRefMaxLength = 64
)

// Participation is one user's paid entry into a raffle
type Participation struct {
	ID                  int64               `db:"id" json:"id"`
	ParticipationNumber string              `db:"participation_number" json:"participationNumber"`
	UserID              int64               `db:"user_id" json:"userId"`
	RaffleID            int64               `db:"raffle_id" json:"raffleId"`
	TransactionRef      string              `db:"transaction_ref" json:"transactionId"`
	PaymentPhone        string              `db:"payment_phone" json:"paymentPhone"`
	PaymentMethod       PaymentMethod       `db:"payment_method" json:"paymentMethod"`
	Amount              int64               `db:"amount" json:"amount"`
	Status              ParticipationStatus `db:"status" json:"status"`
	IsWinner            bool                `db:"is_winner" json:"isWinner"`
	ValidationNotes     *string             `db:"validation_notes" json:"validationNotes,omitempty"`
	ValidatedBy         *int64              `db:"validated_by" json:"validatedBy,omitempty"`
	ValidatedAt         *time.Time          `db:"validated_at" json:"validatedAt,omitempty"`
	CreatedAt           time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time           `db:"updated_at" json:"updatedAt"`
}

// IsPending reports whether the participation still awaits an admin decision
func (p *Participation) IsPending() bool {
	return p.Status == ParticipationStatusPending
}

// CountsTowardStats reports whether the participation is part of the raffle aggregates
func (p *Participation) CountsTowardStats() bool {
	return p.Status == ParticipationStatusValidated || p.Status == ParticipationStatusCompleted
}

// IsOwnedBy reports whether the participation belongs to the user
func (p *Participation) IsOwnedBy(userID int64) bool {
	return p.UserID == userID
}

// VisibleTo reports whether the caller may read the participation: its owner or any admin
func (p *Participation) VisibleTo(r Requester) bool {
	return r.IsAdmin() || p.IsOwnedBy(r.UserID)
}

// ApplyDecision records the admin verdict. The caller checks IsPending first.
func (p *Participation) ApplyDecision(action DecisionAction, adminID int64, notes string, at time.Time) {
	if action == DecisionValidate {
		p.Status = ParticipationStatusValidated
	} else {
		p.Status = ParticipationStatusRejected
	}
	p.ValidatedBy = &adminID
	p.ValidatedAt = &at
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		p.ValidationNotes = &trimmed
	} else {
		p.ValidationNotes = nil
	}
}

// NormalizeTransactionRef trims and upper-cases a payment transaction reference
func NormalizeTransactionRef(ref string) string {
	return strings.ToUpper(strings.TrimSpace(ref))
}

// cameroonMobile matches a national mobile number once separators are stripped
var cameroonMobile = regexp.MustCompile(`^(?:\+?237)?(6\d{8})$`)

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")

// NormalizePhone validates a payment phone and returns its 9 national digits
func NormalizePhone(phone string) (string, error) {
	cleaned := phoneSeparators.Replace(strings.TrimSpace(phone))
	m := cameroonMobile.FindStringSubmatch(cleaned)
	if m == nil {
		return "", NewError(ErrorKindInvalidPhone, "payment phone %q is not a valid mobile number", phone)
	}
	return m[1], nil
}

// GenerateParticipationNumber builds a number of the form TMB + YYMMDD + 6 random digits
func GenerateParticipationNumber(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate participation number: %w", err)
	}
	return fmt.Sprintf("%s%s%0*d", ParticipationNumberPrefix, now.Format("060102"), participationNumberDigits, n.Int64()), nil
}

var participationNumberPattern = regexp.MustCompile(`^TMB\d{12}$`)

// IsParticipationNumber reports whether s has the participation number shape
func IsParticipationNumber(s string) bool {
	return participationNumberPattern.MatchString(s)
}

// ParticipationFilter narrows admin participation listings
type ParticipationFilter struct {
	Status   *ParticipationStatus
	RaffleID *int64
	UserID   *int64
}

// ParticipationPage is one page of participations
type ParticipationPage struct {
	Items      []*Participation `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
}

// RafflePage is one page of raffles
type RafflePage struct {
	Items      []*Raffle `json:"items"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalPages int       `json:"totalPages"`
}
