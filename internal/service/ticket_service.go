package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/opsdesk/ticket-service/internal/domain"
	"github.com/opsdesk/ticket-service/internal/events"
	"github.com/opsdesk/ticket-service/internal/repository"
	apperrors "github.com/opsdesk/ticket-service/pkg/util"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	triage     *Triage
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Triage     *Triage
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketCreateInput describes ticket creation payload. Zero-valued optional
// fields are filled in by triage heuristics.
type TicketCreateInput struct {
	Title          string
	IssueType      domain.IssueType
	Priority       domain.TicketPriority
	Team           domain.Team
	Description    string
	SubmitterName  string
	SubmitterEmail string
	AssignedMember string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	triage := deps.Triage
	if triage == nil {
		triage = NewTriage()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		triage:     triage,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// CreateTicket applies triage defaults, persists the ticket and publishes a
// creation event without blocking the caller.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	team := input.Team
	if team == "" {
		team = s.triage.AssignTeam(input.IssueType)
	}
	priority := input.Priority
	if priority == "" {
		priority = s.triage.InferPriority(input.Description)
	}
	title := input.Title
	if title == "" {
		title = s.triage.GenerateTitle(input.IssueType, input.Description)
	}
	assigned := input.AssignedMember
	if assigned == "" {
		assigned = s.triage.PickAssignee(team)
	}

	ticket := &domain.Ticket{
		Title:          title,
		IssueType:      input.IssueType,
		Priority:       priority,
		Team:           team,
		Status:         domain.TicketStatusOpen,
		Description:    input.Description,
		SubmitterName:  input.SubmitterName,
		SubmitterEmail: input.SubmitterEmail,
		AssignedMember: &assigned,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("ticket created", zap.Int64("ticket_id", ticket.ID))
	s.publishAsync(events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketCreated,
		Ticket:    *ticket,
		Timestamp: time.Now(),
	})
	return ticket, nil
}

// ListTickets returns tickets matching the filter, newest first.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicket resolves a display identifier and loads the ticket.
func (s *TicketService) GetTicket(ctx context.Context, displayID string) (*domain.Ticket, error) {
	id, err := domain.ParseTicketID(displayID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.notFound(displayID)
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// UpdateTicket applies a partial update and publishes a status-change event
// when the patch moves the ticket to a different status.
func (s *TicketService) UpdateTicket(ctx context.Context, displayID string, patch repository.TicketPatch) (*domain.Ticket, error) {
	id, err := domain.ParseTicketID(displayID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	current, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.notFound(displayID)
		}
		return nil, apperrors.MapError(err)
	}

	updated, err := s.tickets.UpdateByID(ctx, id, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.notFound(displayID)
		}
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("ticket updated", zap.Int64("ticket_id", id))
	if patch.Status != nil && *patch.Status != current.Status {
		s.publishAsync(events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTicketStatusChanged,
			Ticket:    *updated,
			Timestamp: time.Now(),
			Payload: events.TicketStatusChangedPayload{
				OldStatus: current.Status,
				NewStatus: *patch.Status,
			},
		})
	}
	return updated, nil
}

// DeleteTicket removes the ticket and returns its internal id.
func (s *TicketService) DeleteTicket(ctx context.Context, displayID string) (int64, error) {
	id, err := domain.ParseTicketID(displayID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	if err := s.tickets.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, s.notFound(displayID)
		}
		return 0, apperrors.MapError(err)
	}
	s.logger.Info("ticket deleted", zap.Int64("ticket_id", id))
	return id, nil
}

// Stats returns table-wide status and priority counts.
func (s *TicketService) Stats(ctx context.Context) (*repository.TicketStats, error) {
	stats, err := s.tickets.Stats(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return stats, nil
}

func (s *TicketService) notFound(displayID string) error {
	return apperrors.NewNotFound(fmt.Sprintf("Ticket with ID %s does not exist", displayID))
}

// publishAsync detaches event delivery from the request lifecycle; failures
// are observed only through subscriber logging.
func (s *TicketService) publishAsync(event events.Event) {
	if s.dispatcher == nil {
		return
	}
	go func() {
		_ = s.dispatcher.Publish(context.Background(), event)
	}()
}
