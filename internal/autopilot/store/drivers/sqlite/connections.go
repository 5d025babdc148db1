package sqlite

import (
	"context"
	"database/sql"

	"github.com/agencydesk/autopilot/internal/autopilot/domain"
)

type connectionsRepo struct {
	db dbtx
}

// CreateConnection upserts on (client_id, platform): reconnecting a platform
// replaces the stored credentials rather than erroring.
func (r *connectionsRepo) CreateConnection(ctx context.Context, c domain.Connection) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO connections (id, client_id, agency_id, platform, access_token, refresh_token, account_name, expires_at, connected_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (client_id, platform) DO UPDATE SET
			access_token  = excluded.access_token,
			refresh_token = excluded.refresh_token,
			account_name  = excluded.account_name,
			expires_at    = excluded.expires_at,
			connected_by  = excluded.connected_by`,
		c.ID, c.ClientID, c.AgencyID, c.Platform, c.AccessToken, c.RefreshToken,
		c.AccountName, mapOptionalTime(c.ExpiresAt), c.ConnectedBy,
	)
	return err
}

func (r *connectionsRepo) ListConnectionsByClient(ctx context.Context, clientID string) ([]domain.Connection, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_id, agency_id, platform, access_token, refresh_token, account_name, expires_at, connected_by, created_at
		FROM connections WHERE client_id = ?
		ORDER BY created_at`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Connection
	for rows.Next() {
		var (
			c         domain.Connection
			expiresAt sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.ClientID, &c.AgencyID, &c.Platform, &c.AccessToken,
			&c.RefreshToken, &c.AccountName, &expiresAt, &c.ConnectedBy, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.ExpiresAt = mapNullTimePtr(expiresAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *connectionsRepo) DeleteConnection(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM connections WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
