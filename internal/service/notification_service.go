package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/opsdesk/ticket-service/internal/config"
	"github.com/opsdesk/ticket-service/internal/domain"
	"github.com/opsdesk/ticket-service/internal/events"
)

const (
	webhookTimeout         = 10 * time.Second
	descriptionPreviewSize = 300
)

// NotifyResult reports the outcome of a webhook delivery attempt. Failures
// are carried here instead of as errors so call sites stay fire-and-forget.
type NotifyResult struct {
	Success bool
	Reason  string
}

// NotificationService delivers ticket-event summaries to a Slack incoming
// webhook, best-effort.
type NotificationService struct {
	cfg    config.SlackConfig
	logger *zap.Logger
	client *http.Client
}

// NewNotificationService creates the service.
func NewNotificationService(cfg config.SlackConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: webhookTimeout},
	}
}

// RegisterHandlers subscribes to ticket events.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.Notify(ctx, event.Ticket, "created")
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	n.Notify(ctx, event.Ticket, StatusChangeAction(payload.NewStatus))
	return nil
}

// StatusChangeAction maps a status destination to its notification action
// tag; Resolved and Closed get distinct tags.
func StatusChangeAction(newStatus domain.TicketStatus) string {
	switch newStatus {
	case domain.TicketStatusResolved:
		return "resolved"
	case domain.TicketStatusClosed:
		return "closed"
	default:
		return "status_changed"
	}
}

// Notify sends one ticket-event summary. Delivery failures are logged and
// returned as a result, never as an error.
func (n *NotificationService) Notify(ctx context.Context, ticket domain.Ticket, action string) NotifyResult {
	if !n.cfg.Enabled || n.cfg.WebhookURL == "" {
		n.logger.Warn("slack notifications disabled or webhook URL not configured")
		return NotifyResult{Success: false, Reason: "Slack not configured"}
	}

	message := buildSlackMessage(ticket, action)
	body, err := json.Marshal(message)
	if err != nil {
		n.logger.Error("failed to encode slack message", zap.Error(err))
		return NotifyResult{Success: false, Reason: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		n.logger.Error("failed to build slack request", zap.Error(err))
		return NotifyResult{Success: false, Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Error("failed to send slack notification",
			zap.String("ticket_id", ticket.DisplayID()),
			zap.String("action", action),
			zap.Error(err))
		return NotifyResult{Success: false, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := fmt.Sprintf("Slack API returned %d: %s", resp.StatusCode, resp.Status)
		n.logger.Error("failed to send slack notification",
			zap.String("ticket_id", ticket.DisplayID()),
			zap.String("action", action),
			zap.String("reason", reason))
		return NotifyResult{Success: false, Reason: reason}
	}

	n.logger.Info("slack notification sent", zap.String("ticket_id", ticket.DisplayID()))
	return NotifyResult{Success: true}
}

type slackMessage struct {
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Fields []slackField `json:"fields"`
	Footer string       `json:"footer"`
	Ts     int64        `json:"ts"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

func buildSlackMessage(ticket domain.Ticket, action string) slackMessage {
	assigned := Unassigned
	if ticket.AssignedMember != nil && *ticket.AssignedMember != "" {
		assigned = *ticket.AssignedMember
	}

	description := ticket.Description
	if len(description) > descriptionPreviewSize {
		description = description[:descriptionPreviewSize] + "..."
	}

	ts := ticket.UpdatedAt
	if ts.IsZero() {
		ts = ticket.CreatedAt
	}

	return slackMessage{
		Text: actionText(action, ticket.Title),
		Attachments: []slackAttachment{{
			Color: slackColor(ticket.Priority, action),
			Fields: []slackField{
				{Title: "Ticket ID", Value: ticket.DisplayID(), Short: true},
				{Title: "Priority", Value: string(ticket.Priority), Short: true},
				{Title: "Team", Value: string(ticket.Team), Short: true},
				{Title: "Status", Value: string(ticket.Status), Short: true},
				{Title: "Assigned To", Value: assigned, Short: true},
				{Title: "Submitter", Value: fmt.Sprintf("%s <%s>", ticket.SubmitterName, ticket.SubmitterEmail), Short: true},
				{Title: "Description", Value: description, Short: false},
			},
			Footer: "Support Dashboard",
			Ts:     ts.Unix(),
		}},
	}
}

func actionText(action, title string) string {
	switch action {
	case "created":
		return "🎫 New ticket created: " + title
	case "updated":
		return "📝 Ticket updated: " + title
	case "status_changed":
		return "🔄 Ticket status changed: " + title
	case "resolved":
		return "✅ Ticket resolved: " + title
	case "closed":
		return "🔒 Ticket closed: " + title
	default:
		return fmt.Sprintf("🎫 Ticket %s: %s", action, title)
	}
}

// slackColor picks the attachment color: priority first, then action, then
// the generic ok color.
func slackColor(priority domain.TicketPriority, action string) string {
	switch priority {
	case domain.TicketPriorityCritical:
		return "#d00000"
	case domain.TicketPriorityHigh:
		return "#ff6b00"
	case domain.TicketPriorityMedium:
		return "#ffd60a"
	}
	switch strings.ToLower(action) {
	case "resolved":
		return "#2d8f3f"
	case "closed":
		return "#6c757d"
	}
	return "#36a64f"
}
