package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// SeedDevData inserts sample tickets for local development. It is a no-op
// when the table already has rows.
func SeedDevData(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		return nil
	}

	var count int64
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	const query = `
        INSERT INTO tickets (title, issue_type, priority, team, status, description, submitter_name, submitter_email, assigned_member, created_at, updated_at)
        VALUES
        ('Login page not responding', 'Bug', 'High', 'dev', 'In Progress',
         'Users are unable to log in to the application. The login page becomes unresponsive after clicking submit.',
         'John Doe', 'john.doe@company.com', 'Alice Johnson',
         '2025-01-15T10:30:00Z', '2025-01-15T14:22:00Z'),
        ('Add dark mode feature', 'Feature Request', 'Medium', 'product', 'Open',
         'Users have requested a dark mode option for better usability in low-light environments.',
         'Sarah Wilson', 'sarah.wilson@company.com', 'Noah Davis',
         '2025-01-14T16:45:00Z', '2025-01-14T16:45:00Z')`
	if _, err := pool.Exec(ctx, query); err != nil {
		return err
	}

	logger.Info("sample data inserted")
	return nil
}
