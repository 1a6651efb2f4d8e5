package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const ticketIDPrefix = "TKT-"

// ErrInvalidTicketID reports a display identifier that cannot be decoded.
type ErrInvalidTicketID struct {
	Input string
}

func (e *ErrInvalidTicketID) Error() string {
	return fmt.Sprintf("invalid ticket ID format: %s", e.Input)
}

// FormatTicketID renders the external display identifier, zero-padded to a
// minimum width of 3 (TKT-007, TKT-1000).
func FormatTicketID(id int64) string {
	return fmt.Sprintf("%s%03d", ticketIDPrefix, id)
}

// ParseTicketID decodes a display identifier back to the internal numeric
// id. A bare numeric value is accepted as-is.
func ParseTicketID(displayID string) (int64, error) {
	numeric := displayID
	if strings.HasPrefix(displayID, ticketIDPrefix) {
		numeric = strings.TrimPrefix(displayID, ticketIDPrefix)
	}
	id, err := strconv.ParseInt(numeric, 10, 64)
	if err != nil {
		return 0, &ErrInvalidTicketID{Input: displayID}
	}
	return id, nil
}

// IsValidTicketID reports whether displayID decodes successfully.
func IsValidTicketID(displayID string) bool {
	_, err := ParseTicketID(displayID)
	return err == nil
}
