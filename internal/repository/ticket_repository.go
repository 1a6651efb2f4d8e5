package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opsdesk/ticket-service/internal/domain"
)

const ticketColumns = `id, title, issue_type, priority, team, status, description,
               submitter_name, submitter_email, assigned_member, created_at, updated_at`

// TicketFilter captures list query parameters. Nil fields are ignored.
type TicketFilter struct {
	Status   *domain.TicketStatus
	Team     *domain.Team
	Priority *domain.TicketPriority
	Search   *string
}

// TicketPatch describes a partial update. Nil fields are left untouched.
type TicketPatch struct {
	Title          *string
	IssueType      *domain.IssueType
	Priority       *domain.TicketPriority
	Team           *domain.Team
	Status         *domain.TicketStatus
	Description    *string
	SubmitterName  *string
	SubmitterEmail *string
	AssignedMember *string
	CreatedAt      *time.Time
	UpdatedAt      *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p TicketPatch) IsEmpty() bool {
	return p.Title == nil && p.IssueType == nil && p.Priority == nil &&
		p.Team == nil && p.Status == nil && p.Description == nil &&
		p.SubmitterName == nil && p.SubmitterEmail == nil &&
		p.AssignedMember == nil && p.CreatedAt == nil && p.UpdatedAt == nil
}

// TicketStats aggregates table-wide counts.
type TicketStats struct {
	Total      int64
	Open       int64
	InProgress int64
	Resolved   int64
	Closed     int64
	Critical   int64
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	UpdateByID(ctx context.Context, id int64, patch TicketPatch) (*domain.Ticket, error)
	DeleteByID(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*TicketStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, issue_type, priority, team, status, description, submitter_name, submitter_email, assigned_member)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.IssueType,
		ticket.Priority,
		ticket.Team,
		ticket.Status,
		ticket.Description,
		ticket.SubmitterName,
		ticket.SubmitterEmail,
		ticket.AssignedMember,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(scanTargets(&ticket)...); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	where, args := buildListClauses(filter)
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC`,
		ticketColumns, where)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// buildListClauses renders AND-combined equality filters plus an OR-combined
// case-insensitive search over title, description and submitter name.
func buildListClauses(filter TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Team != nil {
		args = append(args, *filter.Team)
		clauses = append(clauses, fmt.Sprintf("team=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(title ILIKE %s OR description ILIKE %s OR submitter_name ILIKE %s)",
			placeholder, placeholder, placeholder))
	}

	return strings.Join(clauses, " AND "), args
}

func (r *ticketRepository) UpdateByID(ctx context.Context, id int64, patch TicketPatch) (*domain.Ticket, error) {
	sets, args := buildPatchClauses(patch)
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), ticketColumns)

	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, args...).Scan(scanTargets(&ticket)...); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func buildPatchClauses(patch TicketPatch) ([]string, []any) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.IssueType != nil {
		add("issue_type", *patch.IssueType)
	}
	if patch.Priority != nil {
		add("priority", *patch.Priority)
	}
	if patch.Team != nil {
		add("team", *patch.Team)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.SubmitterName != nil {
		add("submitter_name", *patch.SubmitterName)
	}
	if patch.SubmitterEmail != nil {
		add("submitter_email", *patch.SubmitterEmail)
	}
	if patch.AssignedMember != nil {
		add("assigned_member", *patch.AssignedMember)
	}
	if patch.CreatedAt != nil {
		add("created_at", *patch.CreatedAt)
	}
	if patch.UpdatedAt != nil {
		add("updated_at", *patch.UpdatedAt)
	} else {
		sets = append(sets, "updated_at=NOW()")
	}

	return sets, args
}

func (r *ticketRepository) DeleteByID(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Stats(ctx context.Context) (*TicketStats, error) {
	const query = `
        SELECT COUNT(*) AS total,
               COUNT(CASE WHEN status = 'Open' THEN 1 END) AS open,
               COUNT(CASE WHEN status = 'In Progress' THEN 1 END) AS in_progress,
               COUNT(CASE WHEN status = 'Resolved' THEN 1 END) AS resolved,
               COUNT(CASE WHEN status = 'Closed' THEN 1 END) AS closed,
               COUNT(CASE WHEN priority = 'Critical' THEN 1 END) AS critical
        FROM tickets`
	var stats TicketStats
	if err := r.pool.QueryRow(ctx, query).Scan(
		&stats.Total,
		&stats.Open,
		&stats.InProgress,
		&stats.Resolved,
		&stats.Closed,
		&stats.Critical,
	); err != nil {
		return nil, err
	}
	return &stats, nil
}

func scanTargets(ticket *domain.Ticket) []any {
	return []any{
		&ticket.ID,
		&ticket.Title,
		&ticket.IssueType,
		&ticket.Priority,
		&ticket.Team,
		&ticket.Status,
		&ticket.Description,
		&ticket.SubmitterName,
		&ticket.SubmitterEmail,
		&ticket.AssignedMember,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	}
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(scanTargets(&ticket)...); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
