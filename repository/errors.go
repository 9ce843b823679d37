package repository

import (
	"errors"

	"tombola/models"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

const (
	constraintRaffleTransactionRef     = "participations_raffle_transaction_ref_key"
	constraintUserRaffleTransactionRef = "participations_user_raffle_transaction_ref_key"
	constraintParticipationNumber      = "participations_participation_number_key"
	constraintOneWinnerPerRaffle       = "one_winner_per_raffle"
)

// uniqueViolation returns the violated constraint name when err is a unique violation
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// translateParticipationError maps ledger unique violations to domain errors
func translateParticipationError(err error) error {
	constraint, ok := uniqueViolation(err)
	if !ok {
		return nil
	}
	switch constraint {
	case constraintRaffleTransactionRef, constraintUserRaffleTransactionRef:
		return models.WrapError(models.ErrorKindDuplicatePayment, err, "transaction reference was already used for this raffle")
	case constraintOneWinnerPerRaffle:
		return models.WrapError(models.ErrorKindAlreadyDrawn, err, "raffle already has a winner")
	}
	return nil
}
