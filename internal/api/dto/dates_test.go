package dto

import (
	"testing"
	"time"

	"github.com/opsdesk/ticket-service/internal/domain"
)

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	got := FormatTimestamp(ts)
	if got == nil || *got != "2025-01-15T10:30:00Z" {
		t.Errorf("FormatTimestamp = %v", got)
	}
	if FormatTimestamp(time.Time{}) != nil {
		t.Error("zero timestamp should format to nil")
	}
}

func TestToExternal(t *testing.T) {
	ticket := &domain.Ticket{
		CreatedAt: time.Date(2025, 1, 14, 16, 45, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 1, 15, 14, 22, 0, 0, time.UTC),
	}
	fields := ToExternal(ticket)
	if fields.CreatedDate == nil || *fields.CreatedDate != "2025-01-14T16:45:00Z" {
		t.Errorf("CreatedDate = %v", fields.CreatedDate)
	}
	if fields.LastUpdated == nil || *fields.LastUpdated != "2025-01-15T14:22:00Z" {
		t.Errorf("LastUpdated = %v", fields.LastUpdated)
	}
}

func TestToInternalPartial(t *testing.T) {
	created := "2025-01-14T16:45:00Z"
	createdAt, updatedAt, err := DateFields{CreatedDate: &created}.ToInternal()
	if err != nil {
		t.Fatalf("ToInternal: %v", err)
	}
	if createdAt == nil || !createdAt.Equal(time.Date(2025, 1, 14, 16, 45, 0, 0, time.UTC)) {
		t.Errorf("createdAt = %v", createdAt)
	}
	if updatedAt != nil {
		t.Errorf("absent lastUpdated should stay nil, got %v", updatedAt)
	}
}

func TestToInternalInvalid(t *testing.T) {
	bad := "not-a-date"
	if _, _, err := (DateFields{LastUpdated: &bad}).ToInternal(); err == nil {
		t.Error("expected parse error")
	}
}
