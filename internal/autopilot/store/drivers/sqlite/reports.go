package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/agencydesk/autopilot/internal/autopilot/domain"
)

type reportsRepo struct {
	db dbtx
}

const reportColumns = `id, client_id, agency_id, period_start, period_end, status, status_token_hash, artifact_url, error, created_at, updated_at`

func (r *reportsRepo) CreateReport(ctx context.Context, rep domain.Report) error {
	status := rep.Status
	if status == "" {
		status = domain.ReportStatusPending
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reports (id, client_id, agency_id, period_start, period_end, status, status_token_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rep.ID, rep.ClientID, rep.AgencyID, rep.PeriodStart, rep.PeriodEnd, status, rep.StatusTokenHash,
	)
	return err
}

func (r *reportsRepo) GetReportByID(ctx context.Context, id string) (domain.Report, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = ?`, id)
	return scanReport(row)
}

func (r *reportsRepo) GetReportByStatusTokenHash(ctx context.Context, hash string) (domain.Report, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE status_token_hash = ?`, hash)
	return scanReport(row)
}

func (r *reportsRepo) ListReportsByClient(ctx context.Context, clientID string) ([]domain.Report, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reportColumns+` FROM reports
		WHERE client_id = ? ORDER BY created_at DESC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Report
	for rows.Next() {
		var rep domain.Report
		if err := rows.Scan(&rep.ID, &rep.ClientID, &rep.AgencyID, &rep.PeriodStart, &rep.PeriodEnd,
			&rep.Status, &rep.StatusTokenHash, &rep.ArtifactURL, &rep.Error, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (r *reportsRepo) UpdateReportStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reports SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *reportsRepo) SetReportArtifact(ctx context.Context, id, artifactURL string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reports SET artifact_url = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, artifactURL, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *reportsRepo) FailReport(ctx context.Context, id, errMsg string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reports SET status = ?, error = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, domain.ReportStatusFailed, errMsg, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *reportsRepo) LatestReportTime(ctx context.Context, clientID string) (time.Time, error) {
	var created sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT MAX(created_at) FROM reports WHERE client_id = ?`, clientID,
	).Scan(&created)
	if err != nil {
		return time.Time{}, err
	}
	if !created.Valid {
		return time.Time{}, nil
	}
	return created.Time, nil
}

func (r *reportsRepo) FailStaleReports(ctx context.Context, cutoff time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE reports
		SET status = ?, error = 'timed out', updated_at = CURRENT_TIMESTAMP
		WHERE status NOT IN (?, ?) AND updated_at < ?`,
		domain.ReportStatusFailed, domain.ReportStatusSent, domain.ReportStatusFailed, cutoff)
	return err
}

func scanReport(row *sql.Row) (domain.Report, error) {
	var rep domain.Report
	err := row.Scan(&rep.ID, &rep.ClientID, &rep.AgencyID, &rep.PeriodStart, &rep.PeriodEnd,
		&rep.Status, &rep.StatusTokenHash, &rep.ArtifactURL, &rep.Error, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return domain.Report{}, mapNotFound(err)
	}
	return rep, nil
}
