package sqlite

import (
	"context"
	"time"

	"github.com/agencydesk/autopilot/internal/autopilot/domain"
)

type oauthStatesRepo struct {
	db dbtx
}

func (r *oauthStatesRepo) CreateState(ctx context.Context, s domain.OAuthState) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO oauth_states (id, token_hash, client_id, agency_id, platform, user_id, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.TokenHash, s.ClientID, s.AgencyID, s.Platform, s.UserID, s.ExpiresAt,
	)
	return err
}

// ConsumeStateByHash removes and returns the matching record in a single
// statement. DELETE ... RETURNING makes the consume atomic: when two
// requests race on the same token, sqlite serialises the deletes and the
// second one matches zero rows, observing ErrNotFound. An expired record is
// deliberately reported identically to a missing one.
func (r *oauthStatesRepo) ConsumeStateByHash(ctx context.Context, hash string, now time.Time) (domain.OAuthState, error) {
	var s domain.OAuthState
	err := r.db.QueryRowContext(ctx, `
		DELETE FROM oauth_states
		WHERE token_hash = ? AND expires_at > ?
		RETURNING id, token_hash, client_id, agency_id, platform, user_id, created_at, expires_at`,
		hash, now,
	).Scan(&s.ID, &s.TokenHash, &s.ClientID, &s.AgencyID, &s.Platform, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		return domain.OAuthState{}, mapNotFound(err)
	}
	return s, nil
}

func (r *oauthStatesRepo) DeleteExpiredStates(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM oauth_states WHERE expires_at <= ?`, now)
	return err
}

func (r *oauthStatesRepo) CountStates(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM oauth_states`).Scan(&n)
	return n, err
}
