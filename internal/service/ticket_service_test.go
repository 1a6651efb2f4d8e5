package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/opsdesk/ticket-service/internal/domain"
	"github.com/opsdesk/ticket-service/internal/events"
	"github.com/opsdesk/ticket-service/internal/repository"
	apperrors "github.com/opsdesk/ticket-service/pkg/util"
)

// fakeTicketRepo is an in-memory TicketRepository for service tests.
type fakeTicketRepo struct {
	nextID  int64
	tickets map[int64]domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{nextID: 1, tickets: map[int64]domain.Ticket{}}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = f.nextID
	f.nextID++
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	f.tickets[ticket.ID] = *ticket
	return nil
}

func (f *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	out := []domain.Ticket{}
	for _, t := range f.tickets {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (f *fakeTicketRepo) UpdateByID(_ context.Context, id int64, patch repository.TicketPatch) (*domain.Ticket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	t.UpdatedAt = time.Now()
	f.tickets[id] = t
	return &t, nil
}

func (f *fakeTicketRepo) DeleteByID(_ context.Context, id int64) error {
	if _, ok := f.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.tickets, id)
	return nil
}

func (f *fakeTicketRepo) Stats(_ context.Context) (*repository.TicketStats, error) {
	stats := repository.TicketStats{}
	for _, t := range f.tickets {
		stats.Total++
		switch t.Status {
		case domain.TicketStatusOpen:
			stats.Open++
		case domain.TicketStatusInProgress:
			stats.InProgress++
		case domain.TicketStatusResolved:
			stats.Resolved++
		case domain.TicketStatusClosed:
			stats.Closed++
		}
		if t.Priority == domain.TicketPriorityCritical {
			stats.Critical++
		}
	}
	return &stats, nil
}

// recordingDispatcher captures published events and signals each arrival.
type recordingDispatcher struct {
	ch chan events.Event
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{ch: make(chan events.Event, 8)}
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.ch <- event
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) wait(t *testing.T) events.Event {
	t.Helper()
	select {
	case e := <-d.ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published event")
		return events.Event{}
	}
}

func (d *recordingDispatcher) assertNone(t *testing.T) {
	t.Helper()
	select {
	case e := <-d.ch:
		t.Fatalf("unexpected event published: %s", e.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

func newTestService() (*TicketService, *fakeTicketRepo, *recordingDispatcher) {
	repo := newFakeTicketRepo()
	dispatcher := newRecordingDispatcher()
	svc := NewTicketService(TicketDependencies{
		TicketRepo: repo,
		Triage:     NewTriageWithPick(func(n int) int { return 0 }),
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})
	return svc, repo, dispatcher
}

func TestCreateTicketAppliesHeuristics(t *testing.T) {
	svc, _, dispatcher := newTestService()

	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		IssueType:      domain.IssueTypeBug,
		Description:    "The login page is broken and users are angry",
		SubmitterName:  "John Doe",
		SubmitterEmail: "john.doe@company.com",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	if ticket.Status != domain.TicketStatusOpen {
		t.Errorf("status = %q, want Open", ticket.Status)
	}
	if ticket.Priority != domain.TicketPriorityCritical {
		t.Errorf("priority = %q, want Critical (matches broken)", ticket.Priority)
	}
	if ticket.Team != domain.TeamDev {
		t.Errorf("team = %q, want dev", ticket.Team)
	}
	if ticket.Title != "Bug: The login page is broken and..." {
		t.Errorf("title = %q", ticket.Title)
	}
	if ticket.AssignedMember == nil || *ticket.AssignedMember != "Alice Johnson" {
		t.Errorf("assignee = %v, want Alice Johnson", ticket.AssignedMember)
	}

	event := dispatcher.wait(t)
	if event.Type != events.EventTicketCreated {
		t.Errorf("event type = %q, want ticket_created", event.Type)
	}
	if event.Ticket.ID != ticket.ID {
		t.Errorf("event ticket id = %d, want %d", event.Ticket.ID, ticket.ID)
	}
}

func TestCreateTicketKeepsExplicitFields(t *testing.T) {
	svc, _, dispatcher := newTestService()

	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		Title:          "Custom title",
		IssueType:      domain.IssueTypeFeature,
		Priority:       domain.TicketPriorityHigh,
		Team:           domain.TeamQA,
		Description:    "Add an export button to the report page",
		SubmitterName:  "Sarah Wilson",
		SubmitterEmail: "sarah.wilson@company.com",
		AssignedMember: "Frank Miller",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	dispatcher.wait(t)

	if ticket.Title != "Custom title" || ticket.Priority != domain.TicketPriorityHigh ||
		ticket.Team != domain.TeamQA || *ticket.AssignedMember != "Frank Miller" {
		t.Errorf("explicit fields overridden: %+v", ticket)
	}
}

func TestCreateTicketFeatureRequestTeam(t *testing.T) {
	svc, _, dispatcher := newTestService()

	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		IssueType:      domain.IssueTypeFeature,
		Description:    "Users have requested a dark mode option",
		SubmitterName:  "Sarah Wilson",
		SubmitterEmail: "sarah.wilson@company.com",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	dispatcher.wait(t)

	if ticket.Team != domain.TeamProduct {
		t.Errorf("team = %q, want product", ticket.Team)
	}
}

func TestUpdateTicketStatusChangePublishesEvent(t *testing.T) {
	svc, _, dispatcher := newTestService()
	created, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		IssueType:      domain.IssueTypeBug,
		Description:    "Something is subtly wrong somewhere",
		SubmitterName:  "John Doe",
		SubmitterEmail: "john.doe@company.com",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	dispatcher.wait(t)

	resolved := domain.TicketStatusResolved
	_, err = svc.UpdateTicket(context.Background(), created.DisplayID(), repository.TicketPatch{Status: &resolved})
	if err != nil {
		t.Fatalf("UpdateTicket: %v", err)
	}

	event := dispatcher.wait(t)
	if event.Type != events.EventTicketStatusChanged {
		t.Fatalf("event type = %q, want ticket_status_changed", event.Type)
	}
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", event.Payload)
	}
	if payload.OldStatus != domain.TicketStatusOpen || payload.NewStatus != domain.TicketStatusResolved {
		t.Errorf("payload = %+v", payload)
	}
	dispatcher.assertNone(t)
}

func TestUpdateTicketPriorityOnlyPublishesNothing(t *testing.T) {
	svc, _, dispatcher := newTestService()
	created, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		IssueType:      domain.IssueTypeBug,
		Description:    "Something is subtly wrong somewhere",
		SubmitterName:  "John Doe",
		SubmitterEmail: "john.doe@company.com",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	dispatcher.wait(t)

	high := domain.TicketPriorityHigh
	if _, err := svc.UpdateTicket(context.Background(), created.DisplayID(), repository.TicketPatch{Priority: &high}); err != nil {
		t.Fatalf("UpdateTicket: %v", err)
	}
	dispatcher.assertNone(t)
}

func TestUpdateTicketSameStatusPublishesNothing(t *testing.T) {
	svc, _, dispatcher := newTestService()
	created, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		IssueType:      domain.IssueTypeBug,
		Description:    "Something is subtly wrong somewhere",
		SubmitterName:  "John Doe",
		SubmitterEmail: "john.doe@company.com",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	dispatcher.wait(t)

	open := domain.TicketStatusOpen
	if _, err := svc.UpdateTicket(context.Background(), created.DisplayID(), repository.TicketPatch{Status: &open}); err != nil {
		t.Fatalf("UpdateTicket: %v", err)
	}
	dispatcher.assertNone(t)
}

func TestGetTicketNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.GetTicket(context.Background(), "TKT-999999")
	assertDomainError(t, err, 404)
}

func TestGetTicketInvalidID(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.GetTicket(context.Background(), "garbage")
	assertDomainError(t, err, 400)
}

func TestDeleteTicketNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.DeleteTicket(context.Background(), "TKT-999999")
	assertDomainError(t, err, 404)
}

func TestDeleteTicketReturnsInternalID(t *testing.T) {
	svc, repo, dispatcher := newTestService()
	created, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		IssueType:      domain.IssueTypeBug,
		Description:    "Something is subtly wrong somewhere",
		SubmitterName:  "John Doe",
		SubmitterEmail: "john.doe@company.com",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	dispatcher.wait(t)

	id, err := svc.DeleteTicket(context.Background(), created.DisplayID())
	if err != nil {
		t.Fatalf("DeleteTicket: %v", err)
	}
	if id != created.ID {
		t.Errorf("deleted id = %d, want %d", id, created.ID)
	}
	if len(repo.tickets) != 0 {
		t.Error("ticket not removed")
	}
}

func TestStats(t *testing.T) {
	svc, repo, _ := newTestService()
	add := func(status domain.TicketStatus, priority domain.TicketPriority) {
		id := repo.nextID
		repo.nextID++
		repo.tickets[id] = domain.Ticket{ID: id, Status: status, Priority: priority}
	}
	add(domain.TicketStatusOpen, domain.TicketPriorityLow)
	add(domain.TicketStatusOpen, domain.TicketPriorityLow)
	add(domain.TicketStatusOpen, domain.TicketPriorityCritical)
	add(domain.TicketStatusResolved, domain.TicketPriorityLow)
	add(domain.TicketStatusClosed, domain.TicketPriorityMedium)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 5 || stats.Open != 3 || stats.Resolved != 1 || stats.Closed != 1 || stats.Critical != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func assertDomainError(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %T: %v", err, err)
	}
	if domainErr.HTTPStatus != status {
		t.Errorf("status = %d, want %d", domainErr.HTTPStatus, status)
	}
}
