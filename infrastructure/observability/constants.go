package observability

// Metric name prefixes
const (
	MetricPrefix = "tombola"
)

// Metric names
const (
	// Raffle metrics
	RafflesCreatedTotal   = MetricPrefix + ".raffles.created_total"
	RafflesCancelledTotal = MetricPrefix + ".raffles.cancelled_total"
	DrawsCompletedTotal   = MetricPrefix + ".draws.completed_total"
	DrawPoolSize          = MetricPrefix + ".draws.pool_size"

	// Participation metrics
	ParticipationsSubmittedTotal = MetricPrefix + ".participations.submitted_total"
	ParticipationsDecidedTotal   = MetricPrefix + ".participations.decided_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// HTTP metrics
	HTTPRequestsTotal   = MetricPrefix + ".http.requests_total"
	HTTPRequestDuration = MetricPrefix + ".http.request_duration"
)

// Label keys
const (
	LabelEventType = "event_type"
	LabelOutcome   = "outcome"

	// HTTP labels
	LabelMethod = "method"
	LabelRoute  = "route"
	LabelStatus = "status"
)

// Decision outcomes
const (
	OutcomeValidated = "validated"
	OutcomeRejected  = "rejected"
)
