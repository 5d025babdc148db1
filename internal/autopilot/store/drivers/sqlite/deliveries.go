package sqlite

import (
	"context"
	"time"

	"github.com/agencydesk/autopilot/internal/autopilot/domain"
)

type deliveriesRepo struct {
	db dbtx
}

func (r *deliveriesRepo) CreateDelivery(ctx context.Context, d domain.Delivery) error {
	status := d.Status
	if status == "" {
		status = domain.DeliveryStatusQueued
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO deliveries (id, report_id, recipient_email, provider_id, status)
		VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.ReportID, d.RecipientEmail, d.ProviderID, status,
	)
	return err
}

func (r *deliveriesRepo) ListDeliveriesByReport(ctx context.Context, reportID string) ([]domain.Delivery, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, report_id, recipient_email, provider_id, status, created_at
		FROM deliveries WHERE report_id = ?
		ORDER BY created_at`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Delivery
	for rows.Next() {
		var d domain.Delivery
		if err := rows.Scan(&d.ID, &d.ReportID, &d.RecipientEmail, &d.ProviderID, &d.Status, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *deliveriesRepo) DeleteDeliveriesBefore(ctx context.Context, cutoff time.Time) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM deliveries WHERE created_at < ?`, cutoff)
	return err
}
