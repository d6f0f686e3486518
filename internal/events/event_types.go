package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated EventType = "ticket.created"
	EventUserSignup    EventType = "user.signup"
)

// Event is the envelope carried on the queue. Payload stays raw until the
// consumer decodes it against the schema for the event type.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// TicketCreatedPayload is emitted once per successful ticket creation.
type TicketCreatedPayload struct {
	TicketID string `json:"ticket_id"`
}

// Validate checks the payload at the consumer's entry point.
func (p TicketCreatedPayload) Validate() error {
	if p.TicketID == "" {
		return errors.New("ticket_id required")
	}
	return nil
}

// UserSignupPayload is emitted once per successful signup.
type UserSignupPayload struct {
	Email string `json:"email"`
}

// Validate checks the payload at the consumer's entry point.
func (p UserSignupPayload) Validate() error {
	if p.Email == "" {
		return errors.New("email required")
	}
	return nil
}

// Publisher enqueues events. Implemented by the Redis Streams queue; tests
// substitute fakes.
type Publisher interface {
	Publish(ctx context.Context, eventType EventType, payload any) error
}

// Handler processes one delivered event. Returning nil acknowledges the
// message. A non-retriable error (anything exposing NonRetriable() bool)
// acknowledges and drops it; any other error leaves it pending for
// redelivery.
type Handler func(ctx context.Context, event Event) error
