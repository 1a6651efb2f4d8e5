package dto

import (
	"github.com/opsdesk/ticket-service/internal/domain"
	"github.com/opsdesk/ticket-service/internal/repository"
)

// CreateTicketRequest payload. Title, priority, team and assignedMember are
// optional; triage heuristics fill them in when omitted.
type CreateTicketRequest struct {
	Title          string `json:"title" validate:"omitempty,max=255"`
	IssueType      string `json:"issueType" validate:"required,oneof=Bug 'Feature Request' 'Technical Issue' 'Account Issue' 'Performance Issue' 'Security Issue' Other"`
	Priority       string `json:"priority" validate:"omitempty,oneof=Low Medium High Critical"`
	Team           string `json:"team" validate:"omitempty,oneof=dev qa devops support product"`
	Description    string `json:"description" validate:"required,min=10,max=2000"`
	SubmitterName  string `json:"submitterName" validate:"required,min=2,max=255"`
	SubmitterEmail string `json:"submitterEmail" validate:"required,email,max=255"`
	AssignedMember string `json:"assignedMember" validate:"omitempty,max=255"`
}

// UpdateTicketRequest is a partial update; at least one field must be set.
// Timestamp fields, when supplied, use the external ISO names.
type UpdateTicketRequest struct {
	Title          *string `json:"title" validate:"omitempty,max=255"`
	Status         *string `json:"status" validate:"omitempty,oneof=Open 'In Progress' Resolved Closed"`
	Priority       *string `json:"priority" validate:"omitempty,oneof=Low Medium High Critical"`
	Team           *string `json:"team" validate:"omitempty,oneof=dev qa devops support product"`
	AssignedMember *string `json:"assignedMember" validate:"omitempty,max=255"`
	Description    *string `json:"description" validate:"omitempty,min=10,max=2000"`
	DateFields
}

// Patch converts the request into a repository patch.
func (r UpdateTicketRequest) Patch() (repository.TicketPatch, error) {
	patch := repository.TicketPatch{
		Title:          r.Title,
		Description:    r.Description,
		AssignedMember: r.AssignedMember,
	}
	if r.Status != nil {
		status := domain.TicketStatus(*r.Status)
		patch.Status = &status
	}
	if r.Priority != nil {
		priority := domain.TicketPriority(*r.Priority)
		patch.Priority = &priority
	}
	if r.Team != nil {
		team := domain.Team(*r.Team)
		patch.Team = &team
	}
	createdAt, updatedAt, err := r.DateFields.ToInternal()
	if err != nil {
		return patch, err
	}
	patch.CreatedAt = createdAt
	patch.UpdatedAt = updatedAt
	return patch, nil
}

// TicketResponse is the externally-shaped ticket: display identifier plus
// ISO timestamp fields.
type TicketResponse struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	IssueType      string  `json:"issueType"`
	Priority       string  `json:"priority"`
	Team           string  `json:"team"`
	Status         string  `json:"status"`
	Description    string  `json:"description"`
	SubmitterName  string  `json:"submitterName"`
	SubmitterEmail string  `json:"submitterEmail"`
	AssignedMember *string `json:"assignedMember"`
	CreatedDate    *string `json:"createdDate"`
	LastUpdated    *string `json:"lastUpdated"`
}

// NewTicketResponse maps the internal ticket to its external shape.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	dates := ToExternal(ticket)
	return TicketResponse{
		ID:             ticket.DisplayID(),
		Title:          ticket.Title,
		IssueType:      string(ticket.IssueType),
		Priority:       string(ticket.Priority),
		Team:           string(ticket.Team),
		Status:         string(ticket.Status),
		Description:    ticket.Description,
		SubmitterName:  ticket.SubmitterName,
		SubmitterEmail: ticket.SubmitterEmail,
		AssignedMember: ticket.AssignedMember,
		CreatedDate:    dates.CreatedDate,
		LastUpdated:    dates.LastUpdated,
	}
}

// NewTicketListResponse maps a slice of tickets.
func NewTicketListResponse(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}

// StatsResponse carries table-wide counts.
type StatsResponse struct {
	Total      int64 `json:"total"`
	Open       int64 `json:"open"`
	InProgress int64 `json:"inProgress"`
	Resolved   int64 `json:"resolved"`
	Closed     int64 `json:"closed"`
	Critical   int64 `json:"critical"`
}

// NewStatsResponse maps repository stats.
func NewStatsResponse(stats *repository.TicketStats) StatsResponse {
	return StatsResponse{
		Total:      stats.Total,
		Open:       stats.Open,
		InProgress: stats.InProgress,
		Resolved:   stats.Resolved,
		Closed:     stats.Closed,
		Critical:   stats.Critical,
	}
}

// DeleteTicketResponse confirms a removal.
type DeleteTicketResponse struct {
	Message   string `json:"message"`
	Success   bool   `json:"success"`
	DeletedID int64  `json:"deletedId"`
}
