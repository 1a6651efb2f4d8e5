package events

import (
	"time"

	"github.com/opsdesk/ticket-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
)

// Event represents a domain event emitted after a ticket operation.
type Event struct {
	ID        string        `json:"id"`
	Type      EventType     `json:"type"`
	Ticket    domain.Ticket `json:"ticket"`
	Timestamp time.Time     `json:"timestamp"`
	Payload   interface{}   `json:"payload,omitempty"`
}

// TicketStatusChangedPayload carries the transition endpoints.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}
