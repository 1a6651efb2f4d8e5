package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/ticket-service/internal/api/dto"
	"github.com/opsdesk/ticket-service/internal/domain"
	"github.com/opsdesk/ticket-service/internal/repository"
	"github.com/opsdesk/ticket-service/internal/service"
	apperrors "github.com/opsdesk/ticket-service/pkg/util"
)

// TicketsHandler manages the ticket endpoints.
type TicketsHandler struct {
	service   *service.TicketService
	validator *RequestValidator
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{
		service:   ticketService,
		validator: NewRequestValidator(),
	}
}

// ListTickets GET /.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListTickets(c.UserContext(), parseTicketFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketListResponse(tickets))
}

// GetTicket GET /:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// CreateTicket POST /.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", "")
	}
	if err := h.validator.Validate(req); err != nil {
		return err
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		Title:          req.Title,
		IssueType:      domain.IssueType(req.IssueType),
		Priority:       domain.TicketPriority(req.Priority),
		Team:           domain.Team(req.Team),
		Description:    req.Description,
		SubmitterName:  req.SubmitterName,
		SubmitterEmail: req.SubmitterEmail,
		AssignedMember: req.AssignedMember,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewTicketResponse(ticket))
}

// UpdateTicket PATCH /:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", "")
	}
	if err := h.validator.Validate(req); err != nil {
		return err
	}
	patch, err := req.Patch()
	if err != nil {
		return apperrors.NewValidationError("timestamps must be ISO-8601 strings", "")
	}
	if patch.IsEmpty() {
		return apperrors.NewValidationError("at least one field must be provided", "")
	}

	ticket, err := h.service.UpdateTicket(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// DeleteTicket DELETE /:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	displayID := c.Params("id")
	deletedID, err := h.service.DeleteTicket(c.UserContext(), displayID)
	if err != nil {
		return err
	}
	return c.JSON(dto.DeleteTicketResponse{
		Message:   fmt.Sprintf("Ticket %s deleted successfully", displayID),
		Success:   true,
		DeletedID: deletedID,
	})
}

// GetStats GET /stats.
func (h *TicketsHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewStatsResponse(stats))
}

// parseTicketFilter gathers query filters, dropping empty values.
func parseTicketFilter(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if status := c.Query("status"); status != "" {
		s := domain.TicketStatus(status)
		filter.Status = &s
	}
	if team := c.Query("team"); team != "" {
		t := domain.Team(team)
		filter.Team = &t
	}
	if priority := c.Query("priority"); priority != "" {
		p := domain.TicketPriority(priority)
		filter.Priority = &p
	}
	if search := c.Query("search"); search != "" {
		filter.Search = &search
	}
	return filter
}
