package events

import (
	"context"
	"errors"
	"testing"

	"github.com/opsdesk/ticket-service/internal/domain"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []EventType
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		seen = append(seen, e.Type)
		return nil
	})
	d.Subscribe(EventTicketStatusChanged, func(_ context.Context, e Event) error {
		seen = append(seen, e.Type)
		return nil
	})

	_ = d.Publish(context.Background(), Event{Type: EventTicketCreated, Ticket: domain.Ticket{ID: 1}})

	if len(seen) != 1 || seen[0] != EventTicketCreated {
		t.Errorf("seen = %v", seen)
	}
}

func TestDispatcherHandlerErrorDoesNotStopDelivery(t *testing.T) {
	d := NewInMemoryDispatcher()
	calls := 0
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls++
		return errors.New("boom")
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls++
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventTicketCreated}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}
