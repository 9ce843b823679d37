package infrastructure

import (
	"context"

	"tombola/events"

	log "github.com/sirupsen/logrus"
)

// AuditLogger writes one structured log line per committed domain event
type AuditLogger struct {
	logger log.FieldLogger
}

// NewAuditLogger creates an audit logger writing to logger, or the standard logrus logger when nil
func NewAuditLogger(logger log.FieldLogger) *AuditLogger {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &AuditLogger{logger: logger}
}

// Register subscribes the audit logger to every event type on the bus
func (a *AuditLogger) Register(bus *events.Bus) {
	bus.SubscribeAll(a.Handle)
}

// Handle logs the event with its identifying fields
func (a *AuditLogger) Handle(_ context.Context, event events.Event) {
	fields := log.Fields{
		"audit":     true,
		"eventType": event.Type(),
	}

	switch e := event.(type) {
	case events.RaffleCreatedEvent:
		fields["raffleId"] = e.RaffleID
		fields["adminId"] = e.CreatedBy
	case events.RaffleCancelledEvent:
		fields["raffleId"] = e.RaffleID
	case events.RaffleDrawnEvent:
		fields["raffleId"] = e.RaffleID
		fields["winnerParticipationId"] = e.WinnerParticipationID
		fields["winnerUserId"] = e.WinnerUserID
		fields["poolSize"] = e.PoolSize
	case events.ParticipationSubmittedEvent:
		fields["participationId"] = e.ParticipationID
		fields["raffleId"] = e.RaffleID
		fields["userId"] = e.UserID
	case events.ParticipationDecidedEvent:
		fields["participationId"] = e.ParticipationID
		fields["raffleId"] = e.RaffleID
		fields["adminId"] = e.AdminID
	}

	a.logger.WithFields(fields).Info("Audit event")
}
