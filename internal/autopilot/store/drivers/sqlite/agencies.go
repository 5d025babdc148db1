package sqlite

import (
	"context"

	"github.com/agencydesk/autopilot/internal/autopilot/domain"
)

type agenciesRepo struct {
	db dbtx
}

func (r *agenciesRepo) GetAgencyByID(ctx context.Context, id string) (domain.Agency, error) {
	var a domain.Agency
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM agencies WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Agency{}, mapNotFound(err)
	}
	return a, nil
}

func (r *agenciesRepo) CreateAgency(ctx context.Context, a domain.Agency) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO agencies (id, name) VALUES (?, ?)`,
		a.ID, a.Name,
	)
	return err
}

func (r *agenciesRepo) AddMember(ctx context.Context, m domain.Membership) error {
	role := m.Role
	if role == "" {
		role = "member"
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO agency_members (agency_id, user_id, role)
		VALUES (?, ?, ?)`,
		m.AgencyID, m.UserID, role,
	)
	return err
}

func (r *agenciesRepo) IsMember(ctx context.Context, agencyID, userID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM agency_members
		WHERE agency_id = ? AND user_id = ?`,
		agencyID, userID,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
