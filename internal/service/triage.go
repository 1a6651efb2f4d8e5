package service

import (
	"math/rand"
	"strings"

	"github.com/opsdesk/ticket-service/internal/domain"
)

const titleWordLimit = 6

// Unassigned is the assignee placeholder for unknown or empty rosters.
const Unassigned = "Unassigned"

var teamAssignments = map[domain.IssueType]domain.Team{
	domain.IssueTypeBug:         domain.TeamDev,
	domain.IssueTypeTechnical:   domain.TeamDev,
	domain.IssueTypeFeature:     domain.TeamProduct,
	domain.IssueTypePerformance: domain.TeamDevops,
	domain.IssueTypeSecurity:    domain.TeamDevops,
	domain.IssueTypeAccount:     domain.TeamSupport,
	domain.IssueTypeOther:       domain.TeamSupport,
}

// priorityKeywords is scanned in order; the first level with any substring
// match wins, so a description matching both "broken" and "minor" resolves
// to Critical.
var priorityKeywords = []struct {
	priority domain.TicketPriority
	keywords []string
}{
	{domain.TicketPriorityCritical, []string{"urgent", "critical", "down", "broken", "crash", "error", "failure"}},
	{domain.TicketPriorityHigh, []string{"important", "blocking", "major", "severe"}},
	{domain.TicketPriorityMedium, []string{"enhancement", "improvement", "update", "change"}},
	{domain.TicketPriorityLow, []string{"minor", "cosmetic", "suggestion", "question"}},
}

var teamRosters = map[domain.Team][]string{
	domain.TeamDev:     {"Alice Johnson", "Bob Smith", "Charlie Brown", "Diana Prince"},
	domain.TeamQA:      {"Eve Wilson", "Frank Miller", "Grace Lee"},
	domain.TeamDevops:  {"Henry Ford", "Iris Watson", "Jack Ryan"},
	domain.TeamSupport: {"Kate Stevens", "Leo Torres", "Mia Chang"},
	domain.TeamProduct: {"Noah Davis", "Olivia Martinez", "Paul Anderson"},
}

// Triage computes default ticket fields when the caller omits them. The
// pick function selects a roster index given the roster size, so tests can
// pin an otherwise random choice.
type Triage struct {
	pick func(n int) int
}

// NewTriage builds a Triage backed by the global uniform random source.
func NewTriage() *Triage {
	return &Triage{pick: rand.Intn}
}

// NewTriageWithPick builds a Triage with an injected index selector.
func NewTriageWithPick(pick func(n int) int) *Triage {
	return &Triage{pick: pick}
}

// GenerateTitle builds a title from the issue type and the first words of
// the description, ellipsized when truncated.
func (t *Triage) GenerateTitle(issueType domain.IssueType, description string) string {
	words := strings.Fields(description)
	if len(words) > titleWordLimit {
		words = words[:titleWordLimit]
	}
	prefix := strings.Join(words, " ")
	suffix := ""
	if len(prefix) < len(description) {
		suffix = "..."
	}
	return string(issueType) + ": " + prefix + suffix
}

// AssignTeam maps the issue type to its owning team.
func (t *Triage) AssignTeam(issueType domain.IssueType) domain.Team {
	if team, ok := teamAssignments[issueType]; ok {
		return team
	}
	return domain.TeamSupport
}

// InferPriority scans the description for priority keywords, most urgent
// level first.
func (t *Triage) InferPriority(description string) domain.TicketPriority {
	lower := strings.ToLower(description)
	for _, level := range priorityKeywords {
		for _, keyword := range level.keywords {
			if strings.Contains(lower, keyword) {
				return level.priority
			}
		}
	}
	return domain.TicketPriorityLow
}

// PickAssignee selects a member from the team roster.
func (t *Triage) PickAssignee(team domain.Team) string {
	roster := teamRosters[team]
	if len(roster) == 0 {
		return Unassigned
	}
	return roster[t.pick(len(roster))]
}
