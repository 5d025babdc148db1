package sqlite

import (
	"context"
	"database/sql"

	"github.com/agencydesk/autopilot/internal/autopilot/domain"
)

type clientsRepo struct {
	db dbtx
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	var c domain.Client
	err := r.db.QueryRowContext(ctx, `
		SELECT id, agency_id, name, schedule, created_at, updated_at
		FROM clients WHERE id = ?`, id,
	).Scan(&c.ID, &c.AgencyID, &c.Name, &c.Schedule, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) ListClientsByAgency(ctx context.Context, agencyID string) ([]domain.Client, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, agency_id, name, schedule, created_at, updated_at
		FROM clients WHERE agency_id = ?
		ORDER BY created_at DESC`, agencyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanClients(rows)
}

func (r *clientsRepo) ListClientsOnSchedule(ctx context.Context, schedule string) ([]domain.Client, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, agency_id, name, schedule, created_at, updated_at
		FROM clients WHERE schedule = ?
		ORDER BY created_at`, schedule)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanClients(rows)
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	schedule := c.Schedule
	if schedule == "" {
		schedule = domain.ScheduleNone
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (id, agency_id, name, schedule)
		VALUES (?, ?, ?, ?)`,
		c.ID, c.AgencyID, c.Name, schedule,
	)
	return err
}

func (r *clientsRepo) UpdateClientSchedule(ctx context.Context, clientID, schedule string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clients SET schedule = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, schedule, clientID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *clientsRepo) DeleteClient(ctx context.Context, clientID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, clientID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func scanClients(rows *sql.Rows) ([]domain.Client, error) {
	var out []domain.Client
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.AgencyID, &c.Name, &c.Schedule, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
