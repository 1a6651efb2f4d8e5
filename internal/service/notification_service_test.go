package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/opsdesk/ticket-service/internal/config"
	"github.com/opsdesk/ticket-service/internal/domain"
)

func sampleTicket() domain.Ticket {
	assigned := "Alice Johnson"
	return domain.Ticket{
		ID:             7,
		Title:          "Bug: The login page is broken and...",
		IssueType:      domain.IssueTypeBug,
		Priority:       domain.TicketPriorityCritical,
		Team:           domain.TeamDev,
		Status:         domain.TicketStatusOpen,
		Description:    "The login page is broken and users are angry",
		SubmitterName:  "John Doe",
		SubmitterEmail: "john.doe@company.com",
		AssignedMember: &assigned,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}

func TestNotifyNotConfigured(t *testing.T) {
	n := NewNotificationService(config.SlackConfig{}, zap.NewNop())
	result := n.Notify(context.Background(), sampleTicket(), "created")
	if result.Success {
		t.Fatal("expected failure result when not configured")
	}
	if result.Reason != "Slack not configured" {
		t.Errorf("reason = %q", result.Reason)
	}
}

func TestNotifyDeliversMessage(t *testing.T) {
	var received slackMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("decode webhook payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	n := NewNotificationService(config.SlackConfig{WebhookURL: srv.URL, Enabled: true}, zap.NewNop())
	result := n.Notify(context.Background(), sampleTicket(), "created")
	if !result.Success {
		t.Fatalf("expected success, got reason %q", result.Reason)
	}

	if received.Text != "🎫 New ticket created: Bug: The login page is broken and..." {
		t.Errorf("unexpected text %q", received.Text)
	}
	if len(received.Attachments) != 1 {
		t.Fatalf("expected one attachment, got %d", len(received.Attachments))
	}
	att := received.Attachments[0]
	if att.Color != "#d00000" {
		t.Errorf("critical priority should color red, got %q", att.Color)
	}
	if att.Fields[0].Title != "Ticket ID" || att.Fields[0].Value != "TKT-007" {
		t.Errorf("unexpected ticket id field: %+v", att.Fields[0])
	}
}

func TestNotifyFailureIsNonThrowing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	n := NewNotificationService(config.SlackConfig{WebhookURL: srv.URL, Enabled: true}, zap.NewNop())
	result := n.Notify(context.Background(), sampleTicket(), "created")
	if result.Success {
		t.Fatal("expected failure result on 500")
	}
	if result.Reason == "" {
		t.Error("expected a failure reason")
	}
}

func TestStatusChangeAction(t *testing.T) {
	cases := []struct {
		status domain.TicketStatus
		want   string
	}{
		{domain.TicketStatusResolved, "resolved"},
		{domain.TicketStatusClosed, "closed"},
		{domain.TicketStatusInProgress, "status_changed"},
		{domain.TicketStatusOpen, "status_changed"},
	}
	for _, tc := range cases {
		if got := StatusChangeAction(tc.status); got != tc.want {
			t.Errorf("StatusChangeAction(%q) = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestSlackColor(t *testing.T) {
	cases := []struct {
		priority domain.TicketPriority
		action   string
		want     string
	}{
		{domain.TicketPriorityCritical, "created", "#d00000"},
		{domain.TicketPriorityHigh, "created", "#ff6b00"},
		{domain.TicketPriorityMedium, "created", "#ffd60a"},
		{domain.TicketPriorityLow, "resolved", "#2d8f3f"},
		{domain.TicketPriorityLow, "closed", "#6c757d"},
		{domain.TicketPriorityLow, "created", "#36a64f"},
	}
	for _, tc := range cases {
		if got := slackColor(tc.priority, tc.action); got != tc.want {
			t.Errorf("slackColor(%q, %q) = %q, want %q", tc.priority, tc.action, got, tc.want)
		}
	}
}

func TestBuildSlackMessageTruncatesDescription(t *testing.T) {
	ticket := sampleTicket()
	long := make([]byte, 400)
	for i := range long {
		long[i] = 'x'
	}
	ticket.Description = string(long)

	msg := buildSlackMessage(ticket, "created")
	desc := msg.Attachments[0].Fields[6].Value
	if len(desc) != 303 {
		t.Errorf("description length = %d, want 303 (300 + ellipsis)", len(desc))
	}
}
