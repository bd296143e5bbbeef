package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"
)

type PostgresAccessLogsRepo struct {
	db *sql.DB
}

func NewPostgresAccessLogsRepo(db *sql.DB) *PostgresAccessLogsRepo {
	return &PostgresAccessLogsRepo{db: db}
}

func (r *PostgresAccessLogsRepo) Insert(ctx context.Context, entry *domain.AccessLogEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO access_logs (log_id, unit_id, device_id, action, success, ip_address, user_agent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.LogID, entry.UnitID, entry.DeviceID, entry.Action, entry.Success,
		entry.IPAddress, entry.UserAgent, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert access log: %w", err)
	}
	return nil
}

func (r *PostgresAccessLogsRepo) List(ctx context.Context, filter AccessLogFilter) ([]domain.AccessLogEntry, error) {
	where := "1=1"
	args := []any{}
	argN := 1

	if filter.UnitID != "" {
		where += fmt.Sprintf(" AND unit_id = $%d", argN)
		args = append(args, filter.UnitID)
		argN++
	}
	if filter.DeviceID != "" {
		where += fmt.Sprintf(" AND device_id = $%d", argN)
		args = append(args, filter.DeviceID)
		argN++
	}

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT log_id, unit_id, device_id, action, success, ip_address, user_agent, created_at
		 FROM access_logs
		 WHERE %s
		 ORDER BY created_at DESC
		 LIMIT $%d`, where, argN), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query access logs: %w", err)
	}
	defer rows.Close()

	var entries []domain.AccessLogEntry
	for rows.Next() {
		var e domain.AccessLogEntry
		var ip, ua sql.NullString
		if err := rows.Scan(&e.LogID, &e.UnitID, &e.DeviceID, &e.Action, &e.Success, &ip, &ua, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan access log: %w", err)
		}
		e.IPAddress = ip.String
		e.UserAgent = ua.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate access logs: %w", err)
	}
	return entries, nil
}
