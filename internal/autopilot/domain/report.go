package domain

import "time"

// Report statuses, in the order the compile pipeline advances them.
const (
	ReportStatusPending   = "pending"
	ReportStatusCompiling = "compiling"
	ReportStatusRendering = "rendering"
	ReportStatusSending   = "sending"
	ReportStatusSent      = "sent"
	ReportStatusFailed    = "failed"
)

// Report is a compiled performance report for a client over a period.
// StatusTokenHash is the fingerprint of the public polling token; the
// plaintext token is returned once at creation and embedded in links.
type Report struct {
	ID              string
	ClientID        string
	AgencyID        string
	PeriodStart     time.Time
	PeriodEnd       time.Time
	Status          string
	StatusTokenHash string
	ArtifactURL     string
	Error           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Terminal reports whether the report has reached a final status.
func (r Report) Terminal() bool {
	return r.Status == ReportStatusSent || r.Status == ReportStatusFailed
}

// Delivery records a single email hand-off of a report to a recipient.
type Delivery struct {
	ID             string
	ReportID       string
	RecipientEmail string
	ProviderID     string // message id returned by the email provider
	Status         string // "queued", "sent", "failed"
	CreatedAt      time.Time
}

const (
	DeliveryStatusQueued = "queued"
	DeliveryStatusSent   = "sent"
	DeliveryStatusFailed = "failed"
)
