package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusClosed     TicketStatus = "Closed"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityMedium   TicketPriority = "Medium"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityCritical TicketPriority = "Critical"
)

// IssueType enumerates the kind of problem a ticket reports.
type IssueType string

const (
	IssueTypeBug         IssueType = "Bug"
	IssueTypeFeature     IssueType = "Feature Request"
	IssueTypeTechnical   IssueType = "Technical Issue"
	IssueTypeAccount     IssueType = "Account Issue"
	IssueTypePerformance IssueType = "Performance Issue"
	IssueTypeSecurity    IssueType = "Security Issue"
	IssueTypeOther       IssueType = "Other"
)

// Team enumerates the groups tickets are routed to.
type Team string

const (
	TeamDev     Team = "dev"
	TeamQA      Team = "qa"
	TeamDevops  Team = "devops"
	TeamSupport Team = "support"
	TeamProduct Team = "product"
)

// Ticket is the aggregate for support requests. ID is the internal numeric
// row identifier; the external TKT- form is derived from it, never stored.
type Ticket struct {
	ID             int64
	Title          string
	IssueType      IssueType
	Priority       TicketPriority
	Team           Team
	Status         TicketStatus
	Description    string
	SubmitterName  string
	SubmitterEmail string
	AssignedMember *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DisplayID returns the external identifier for the ticket.
func (t *Ticket) DisplayID() string {
	return FormatTicketID(t.ID)
}
