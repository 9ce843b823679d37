package events

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeRaffleCreated          EventType = "raffle_created"
	EventTypeRaffleCancelled        EventType = "raffle_cancelled"
	EventTypeRaffleDrawn            EventType = "raffle_drawn"
	EventTypeParticipationSubmitted EventType = "participation_submitted"
	EventTypeParticipationValidated EventType = "participation_validated"
	EventTypeParticipationRejected  EventType = "participation_rejected"
)

// AllEventTypes lists every event type the services publish
func AllEventTypes() []EventType {
	return []EventType{
		EventTypeRaffleCreated,
		EventTypeRaffleCancelled,
		EventTypeRaffleDrawn,
		EventTypeParticipationSubmitted,
		EventTypeParticipationValidated,
		EventTypeParticipationRejected,
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// RaffleCreatedEvent is published when an admin opens a raffle
type RaffleCreatedEvent struct {
	RaffleID           int64     `json:"raffleId"`
	Title              string    `json:"title"`
	PrizeAmount        int64     `json:"prizeAmount"`
	ParticipationPrice int64     `json:"participationPrice"`
	EndDate            time.Time `json:"endDate"`
	CreatedBy          int64     `json:"createdBy"`
}

func (e RaffleCreatedEvent) Type() EventType {
	return EventTypeRaffleCreated
}

// RaffleCancelledEvent is published when an undrawn raffle is cancelled
type RaffleCancelledEvent struct {
	RaffleID            int64 `json:"raffleId"`
	TotalParticipations int64 `json:"totalParticipations"`
}

func (e RaffleCancelledEvent) Type() EventType {
	return EventTypeRaffleCancelled
}

// RaffleDrawnEvent is published once per raffle after the winner is committed
type RaffleDrawnEvent struct {
	RaffleID              int64     `json:"raffleId"`
	WinnerParticipationID int64     `json:"winnerParticipationId"`
	WinnerUserID          int64     `json:"winnerUserId"`
	ParticipationNumber   string    `json:"participationNumber"`
	PrizeAmount           int64     `json:"prizeAmount"`
	PoolSize              int       `json:"poolSize"`
	DrawnAt               time.Time `json:"drawnAt"`
}

func (e RaffleDrawnEvent) Type() EventType {
	return EventTypeRaffleDrawn
}

// ParticipationSubmittedEvent is published for every new pending participation
type ParticipationSubmittedEvent struct {
	ParticipationID     int64  `json:"participationId"`
	ParticipationNumber string `json:"participationNumber"`
	RaffleID            int64  `json:"raffleId"`
	UserID              int64  `json:"userId"`
	Amount              int64  `json:"amount"`
}

func (e ParticipationSubmittedEvent) Type() EventType {
	return EventTypeParticipationSubmitted
}

// ParticipationDecidedEvent is published when an admin validates or rejects a participation
type ParticipationDecidedEvent struct {
	ParticipationID int64 `json:"participationId"`
	RaffleID        int64 `json:"raffleId"`
	UserID          int64 `json:"userId"`
	AdminID         int64 `json:"adminId"`
	Validated       bool  `json:"validated"`
}

func (e ParticipationDecidedEvent) Type() EventType {
	if e.Validated {
		return EventTypeParticipationValidated
	}
	return EventTypeParticipationRejected
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// SubscribeAll adds a handler for every known event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range AllEventTypes() {
		b.Subscribe(eventType, handler)
	}
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Call handlers asynchronously to avoid blocking the committing request
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised inside a unit of work until it commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus creates a transactional bus flushing into real
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes the event until Flush
func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Queued event on transactional bus")
}

// Flush emits the pending events; called after a successful commit
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Handlers outlive the request, so they get a context detached from its cancellation
	eventCtx := context.WithoutCancel(ctx)

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops the pending events; called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns the number of queued events
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}
