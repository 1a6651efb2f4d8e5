package dto

import (
	"time"

	"github.com/opsdesk/ticket-service/internal/domain"
)

// FormatTimestamp renders an internal timestamp as an ISO-8601 string, or
// nil when the timestamp is absent.
func FormatTimestamp(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339)
	return &formatted
}

// DateFields are the externally named timestamp fields.
type DateFields struct {
	CreatedDate *string `json:"createdDate"`
	LastUpdated *string `json:"lastUpdated"`
}

// ToExternal maps internal timestamps to their external field names.
func ToExternal(ticket *domain.Ticket) DateFields {
	return DateFields{
		CreatedDate: FormatTimestamp(ticket.CreatedAt),
		LastUpdated: FormatTimestamp(ticket.UpdatedAt),
	}
}

// ToInternal parses optional external timestamp fields. Fields absent from
// the input stay nil so partial updates don't clobber unspecified
// timestamps.
func (d DateFields) ToInternal() (createdAt, updatedAt *time.Time, err error) {
	if d.CreatedDate != nil {
		t, parseErr := time.Parse(time.RFC3339, *d.CreatedDate)
		if parseErr != nil {
			return nil, nil, parseErr
		}
		createdAt = &t
	}
	if d.LastUpdated != nil {
		t, parseErr := time.Parse(time.RFC3339, *d.LastUpdated)
		if parseErr != nil {
			return nil, nil, parseErr
		}
		updatedAt = &t
	}
	return createdAt, updatedAt, nil
}
