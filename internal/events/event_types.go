package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated           EventType = "ticket_created"
	EventTicketStatusChanged     EventType = "ticket_status_changed"
	EventTicketTechnicianChanged EventType = "ticket_technician_changed"
)

// Actor identifies the user whose request produced the event.
type Actor struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  int64     `json:"ticket_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// NewEvent stamps an event with a fresh id.
func NewEvent(eventType EventType, ticketID int64, actor Actor, now time.Time, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Actor:     actor,
		Timestamp: now,
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CreatorID    *int64 `json:"creator_id,omitempty"`
	TechnicianID *int64 `json:"technician_id,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	CreatorID   *int64 `json:"creator_id,omitempty"`
	OldStatusID int64  `json:"old_status_id"`
	NewStatusID int64  `json:"new_status_id"`
}

// TicketTechnicianChangedPayload payload.
type TicketTechnicianChangedPayload struct {
	PreviousTechnicianID *int64 `json:"previous_technician_id,omitempty"`
	CurrentTechnicianID  *int64 `json:"current_technician_id,omitempty"`
}
