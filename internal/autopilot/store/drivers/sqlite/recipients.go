package sqlite

import (
	"context"

	"github.com/agencydesk/autopilot/internal/autopilot/domain"
)

type recipientsRepo struct {
	db dbtx
}

func (r *recipientsRepo) CreateRecipient(ctx context.Context, rec domain.Recipient) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recipients (id, client_id, email, name)
		VALUES (?, ?, ?, ?)`,
		rec.ID, rec.ClientID, rec.Email, rec.Name,
	)
	return err
}

func (r *recipientsRepo) ListRecipientsByClient(ctx context.Context, clientID string) ([]domain.Recipient, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_id, email, name, created_at
		FROM recipients WHERE client_id = ?
		ORDER BY created_at`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Recipient
	for rows.Next() {
		var rec domain.Recipient
		if err := rows.Scan(&rec.ID, &rec.ClientID, &rec.Email, &rec.Name, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *recipientsRepo) DeleteRecipient(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recipients WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
