package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/agencydesk/autopilot/internal/autopilot/domain"
	"github.com/agencydesk/autopilot/internal/autopilot/insights"
	"github.com/agencydesk/autopilot/internal/autopilot/obs"
	"github.com/agencydesk/autopilot/internal/autopilot/store"
	"github.com/agencydesk/autopilot/pkg/cryptox"
	"github.com/agencydesk/autopilot/pkg/idx"
)

// PDFRenderer turns report HTML into a stored PDF artifact.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html, filename string) (string, error)
}

// EmailSender delivers one email and returns the provider's message id.
type EmailSender interface {
	Send(ctx context.Context, to, subject, html string) (string, error)
}

// InsightsFetcher pulls performance rows from an ad platform.
type InsightsFetcher interface {
	Fetch(ctx context.Context, platformID, accessToken string, from, to time.Time) ([]insights.Row, error)
}

// DefaultCompileTimeout bounds one full compile run, external calls
// included.
const DefaultCompileTimeout = 5 * time.Minute

// ReportService runs the compile pipeline. A report advances through
// pending, compiling, rendering, sending, and ends sent or failed; any
// pipeline error marks the report failed with the cause recorded.
type ReportService struct {
	Store    store.Store
	Insights InsightsFetcher
	Renderer PDFRenderer
	Mailer   EmailSender
	Logger   *slog.Logger

	CompileTimeout time.Duration
}

func (s *ReportService) compileTimeout() time.Duration {
	if s.CompileTimeout > 0 {
		return s.CompileTimeout
	}
	return DefaultCompileTimeout
}

// Request creates a pending report for the period and returns it together
// with the plaintext status token. Compilation is kicked off separately; the
// caller gets the token exactly once, here.
func (s *ReportService) Request(ctx context.Context, clientID, userID string, periodStart, periodEnd time.Time) (domain.Report, string, error) {
	client, err := s.Store.Clients().GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Report{}, "", ErrNotFound
		}
		return domain.Report{}, "", fmt.Errorf("lookup client: %w", err)
	}
	member, err := s.Store.Agencies().IsMember(ctx, client.AgencyID, userID)
	if err != nil {
		return domain.Report{}, "", fmt.Errorf("membership check: %w", err)
	}
	if !member {
		return domain.Report{}, "", ErrNotAgencyMember
	}

	return s.create(ctx, client, periodStart, periodEnd)
}

// create inserts the pending report row. Used by Request and the scheduler.
func (s *ReportService) create(ctx context.Context, client domain.Client, periodStart, periodEnd time.Time) (domain.Report, string, error) {
	if !periodEnd.After(periodStart) {
		return domain.Report{}, "", ErrInvalidInput
	}

	statusToken, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return domain.Report{}, "", fmt.Errorf("generate status token: %w", err)
	}

	now := time.Now()
	report := domain.Report{
		ID:              idx.New().String(),
		ClientID:        client.ID,
		AgencyID:        client.AgencyID,
		PeriodStart:     periodStart,
		PeriodEnd:       periodEnd,
		Status:          domain.ReportStatusPending,
		StatusTokenHash: cryptox.FingerprintToken(statusToken),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Store.Reports().CreateReport(ctx, report); err != nil {
		return domain.Report{}, "", fmt.Errorf("create report: %w", err)
	}
	return report, statusToken, nil
}

// Compile runs the full pipeline for one report. Safe to call from a
// goroutine; it derives its own timeout and logs rather than returning
// transport errors to a caller that may be long gone.
func (s *ReportService) Compile(ctx context.Context, reportID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.compileTimeout())
	defer cancel()

	log := s.Logger.With("report_id", reportID)

	report, err := s.Store.Reports().GetReportByID(ctx, reportID)
	if err != nil {
		return fmt.Errorf("load report: %w", err)
	}
	if report.Terminal() {
		return nil
	}

	if err := s.run(ctx, report, log); err != nil {
		log.Error("report compile failed", "err", err)
		obs.ReportCompiled("failed")
		if ferr := s.Store.Reports().FailReport(ctx, reportID, err.Error()); ferr != nil {
			log.Error("mark report failed", "err", ferr)
		}
		return err
	}
	obs.ReportCompiled("sent")
	log.Info("report compiled and delivered")
	return nil
}

func (s *ReportService) run(ctx context.Context, report domain.Report, log *slog.Logger) error {
	if err := s.Store.Reports().UpdateReportStatus(ctx, report.ID, domain.ReportStatusCompiling); err != nil {
		return fmt.Errorf("advance to compiling: %w", err)
	}

	conns, err := s.Store.Connections().ListConnectionsByClient(ctx, report.ClientID)
	if err != nil {
		return fmt.Errorf("list connections: %w", err)
	}
	if len(conns) == 0 {
		return errors.New("client has no platform connections")
	}

	client, err := s.Store.Clients().GetClientByID(ctx, report.ClientID)
	if err != nil {
		return fmt.Errorf("lookup client: %w", err)
	}

	var rows []insights.Row
	for _, conn := range conns {
		platformRows, err := s.Insights.Fetch(ctx, conn.Platform, conn.AccessToken, report.PeriodStart, report.PeriodEnd)
		if err != nil {
			return fmt.Errorf("fetch %s insights: %w", conn.Platform, err)
		}
		rows = append(rows, platformRows...)
	}

	html, err := renderReportHTML(client, report, rows)
	if err != nil {
		return fmt.Errorf("render report html: %w", err)
	}

	if err := s.Store.Reports().UpdateReportStatus(ctx, report.ID, domain.ReportStatusRendering); err != nil {
		return fmt.Errorf("advance to rendering: %w", err)
	}

	filename := fmt.Sprintf("report-%s-%s.pdf", client.ID, report.PeriodEnd.Format("2006-01-02"))
	artifactURL, err := s.Renderer.RenderPDF(ctx, html, filename)
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := s.Store.Reports().SetReportArtifact(ctx, report.ID, artifactURL); err != nil {
		return fmt.Errorf("store artifact url: %w", err)
	}

	if err := s.Store.Reports().UpdateReportStatus(ctx, report.ID, domain.ReportStatusSending); err != nil {
		return fmt.Errorf("advance to sending: %w", err)
	}

	recipients, err := s.Store.Recipients().ListRecipientsByClient(ctx, report.ClientID)
	if err != nil {
		return fmt.Errorf("list recipients: %w", err)
	}

	subject := fmt.Sprintf("%s performance report, %s to %s",
		client.Name,
		report.PeriodStart.Format("Jan 2"),
		report.PeriodEnd.Format("Jan 2 2006"))
	body := deliveryEmailHTML(client, artifactURL)

	for _, recipient := range recipients {
		delivery := domain.Delivery{
			ID:             idx.New().String(),
			ReportID:       report.ID,
			RecipientEmail: recipient.Email,
			Status:         domain.DeliveryStatusQueued,
			CreatedAt:      time.Now(),
		}

		providerID, err := s.Mailer.Send(ctx, recipient.Email, subject, body)
		if err != nil {
			// One bounced recipient should not sink the report; record the
			// failure and keep delivering.
			log.Warn("delivery failed", "recipient", recipient.Email, "err", err)
			delivery.Status = domain.DeliveryStatusFailed
		} else {
			delivery.Status = domain.DeliveryStatusSent
			delivery.ProviderID = providerID
		}

		if err := s.Store.Deliveries().CreateDelivery(ctx, delivery); err != nil {
			return fmt.Errorf("record delivery: %w", err)
		}
	}

	if err := s.Store.Reports().UpdateReportStatus(ctx, report.ID, domain.ReportStatusSent); err != nil {
		return fmt.Errorf("advance to sent: %w", err)
	}
	return nil
}

// StatusByToken resolves the public polling token to its report. The lookup
// needs no session; possession of the token is the credential, which is why
// only the hash is stored.
func (s *ReportService) StatusByToken(ctx context.Context, token string) (domain.Report, error) {
	if token == "" {
		return domain.Report{}, ErrNotFound
	}
	report, err := s.Store.Reports().GetReportByStatusTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Report{}, ErrNotFound
		}
		return domain.Report{}, fmt.Errorf("lookup report: %w", err)
	}
	return report, nil
}

// List returns a client's reports for an agency member.
func (s *ReportService) List(ctx context.Context, clientID, userID string) ([]domain.Report, error) {
	client, err := s.Store.Clients().GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup client: %w", err)
	}
	member, err := s.Store.Agencies().IsMember(ctx, client.AgencyID, userID)
	if err != nil {
		return nil, fmt.Errorf("membership check: %w", err)
	}
	if !member {
		return nil, ErrNotAgencyMember
	}

	reports, err := s.Store.Reports().ListReportsByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Client.Name}} performance report</title></head>
<body>
<h1>{{.Client.Name}}</h1>
<p>{{.Report.PeriodStart.Format "2 Jan 2006"}} to {{.Report.PeriodEnd.Format "2 Jan 2006"}}</p>
<table>
<tr><th>Platform</th><th>Campaign</th><th>Impressions</th><th>Clicks</th><th>CTR</th><th>Spend</th></tr>
{{range .Rows}}<tr><td>{{.Platform}}</td><td>{{.Campaign}}</td><td>{{.Impressions}}</td><td>{{.Clicks}}</td><td>{{printf "%.2f%%" .CTR}}</td><td>{{printf "$%.2f" .Spend}}</td></tr>
{{end}}</table>
</body>
</html>
`))

type reportRow struct {
	Platform    string
	Campaign    string
	Impressions int64
	Clicks      int64
	CTR         float64
	Spend       float64
}

func renderReportHTML(client domain.Client, report domain.Report, rows []insights.Row) (string, error) {
	view := make([]reportRow, 0, len(rows))
	for _, r := range rows {
		view = append(view, reportRow{
			Platform:    r.Platform,
			Campaign:    r.Campaign,
			Impressions: r.Impressions,
			Clicks:      r.Clicks,
			CTR:         r.CTR,
			Spend:       float64(r.SpendCents) / 100,
		})
	}

	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, struct {
		Client domain.Client
		Report domain.Report
		Rows   []reportRow
	}{client, report, view})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

var deliveryTemplate = template.Must(template.New("delivery").Parse(`<p>Hi,</p>
<p>The latest performance report for {{.Name}} is ready:</p>
<p><a href="{{.URL}}">Download the report</a></p>
`))

func deliveryEmailHTML(client domain.Client, artifactURL string) string {
	var buf bytes.Buffer
	_ = deliveryTemplate.Execute(&buf, struct {
		Name string
		URL  string
	}{client.Name, artifactURL})
	return buf.String()
}
