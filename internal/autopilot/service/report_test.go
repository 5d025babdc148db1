package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agencydesk/autopilot/internal/autopilot/domain"
	"github.com/agencydesk/autopilot/internal/autopilot/insights"
	"github.com/agencydesk/autopilot/internal/autopilot/platform"
	"github.com/agencydesk/autopilot/pkg/idx"
	"github.com/stretchr/testify/require"
)

type fakeInsights struct {
	rows []insights.Row
	err  error
}

func (f *fakeInsights) Fetch(_ context.Context, platformID, _ string, _, _ time.Time) ([]insights.Row, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]insights.Row, len(f.rows))
	copy(out, f.rows)
	for i := range out {
		out[i].Platform = platformID
	}
	return out, nil
}

type fakeRenderer struct {
	url  string
	err  error
	html string
}

func (f *fakeRenderer) RenderPDF(_ context.Context, html, _ string) (string, error) {
	f.html = html
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, to)
	return "msg-" + to, nil
}

func newReportFixture(t *testing.T) (*ReportService, domain.User, domain.Client, *fakeMailer, *fakeRenderer) {
	t.Helper()
	ctx := context.Background()

	st := newTestStore(t)
	user, agency, client := seedTenant(t, st)

	require.NoError(t, st.Connections().CreateConnection(ctx, domain.Connection{
		ID:          idx.New().String(),
		ClientID:    client.ID,
		AgencyID:    agency.ID,
		Platform:    platform.MetaAds,
		AccessToken: "meta-access",
		ConnectedBy: user.ID,
		CreatedAt:   time.Now(),
	}))
	require.NoError(t, st.Recipients().CreateRecipient(ctx, domain.Recipient{
		ID:        idx.New().String(),
		ClientID:  client.ID,
		Email:     "cmo@bluebird.example",
		CreatedAt: time.Now(),
	}))

	mail := &fakeMailer{}
	rend := &fakeRenderer{url: "https://artifacts.test/report.pdf"}
	svc := &ReportService{
		Store: st,
		Insights: &fakeInsights{rows: []insights.Row{
			{Campaign: "Spring Sale", Impressions: 1000, Clicks: 50, SpendCents: 12345, CTR: 5},
		}},
		Renderer: rend,
		Mailer:   mail,
		Logger:   testLogger(),
	}
	return svc, user, client, mail, rend
}

func TestCompileHappyPath(t *testing.T) {
	ctx := context.Background()
	svc, user, client, mail, rend := newReportFixture(t)

	report, statusToken, err := svc.Request(ctx, client.ID, user.ID,
		time.Now().Add(-7*24*time.Hour), time.Now())
	require.NoError(t, err)
	require.Equal(t, domain.ReportStatusPending, report.Status)
	require.NotEmpty(t, statusToken)

	require.NoError(t, svc.Compile(ctx, report.ID))

	final, err := svc.Store.Reports().GetReportByID(ctx, report.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ReportStatusSent, final.Status)
	require.Equal(t, "https://artifacts.test/report.pdf", final.ArtifactURL)

	require.Equal(t, []string{"cmo@bluebird.example"}, mail.sent)
	require.Contains(t, rend.html, "Spring Sale")
	require.Contains(t, rend.html, "Bluebird Coffee")

	deliveries, err := svc.Store.Deliveries().ListDeliveriesByReport(ctx, report.ID)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	require.Equal(t, domain.DeliveryStatusSent, deliveries[0].Status)
}

func TestCompileFailsWithoutConnections(t *testing.T) {
	ctx := context.Background()
	svc, user, client, _, _ := newReportFixture(t)

	conns, err := svc.Store.Connections().ListConnectionsByClient(ctx, client.ID)
	require.NoError(t, err)
	for _, c := range conns {
		require.NoError(t, svc.Store.Connections().DeleteConnection(ctx, c.ID))
	}

	report, _, err := svc.Request(ctx, client.ID, user.ID,
		time.Now().Add(-7*24*time.Hour), time.Now())
	require.NoError(t, err)

	err = svc.Compile(ctx, report.ID)
	require.Error(t, err)

	final, err := svc.Store.Reports().GetReportByID(ctx, report.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ReportStatusFailed, final.Status)
	require.True(t, strings.Contains(final.Error, "no platform connections"))
}

func TestCompileInsightsFailureMarksReportFailed(t *testing.T) {
	ctx := context.Background()
	svc, user, client, mail, _ := newReportFixture(t)
	svc.Insights = &fakeInsights{err: errors.New("platform 500")}

	report, _, err := svc.Request(ctx, client.ID, user.ID,
		time.Now().Add(-7*24*time.Hour), time.Now())
	require.NoError(t, err)

	require.Error(t, svc.Compile(ctx, report.ID))

	final, err := svc.Store.Reports().GetReportByID(ctx, report.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ReportStatusFailed, final.Status)
	require.Empty(t, mail.sent)
}

func TestCompileDeliveryFailureIsRecordedNotFatal(t *testing.T) {
	ctx := context.Background()
	svc, user, client, mail, _ := newReportFixture(t)
	mail.err = errors.New("mailbox full")

	report, _, err := svc.Request(ctx, client.ID, user.ID,
		time.Now().Add(-7*24*time.Hour), time.Now())
	require.NoError(t, err)

	require.NoError(t, svc.Compile(ctx, report.ID))

	final, err := svc.Store.Reports().GetReportByID(ctx, report.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ReportStatusSent, final.Status)

	deliveries, err := svc.Store.Deliveries().ListDeliveriesByReport(ctx, report.ID)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	require.Equal(t, domain.DeliveryStatusFailed, deliveries[0].Status)
}

func TestCompileIsIdempotentOnTerminalReports(t *testing.T) {
	ctx := context.Background()
	svc, user, client, mail, _ := newReportFixture(t)

	report, _, err := svc.Request(ctx, client.ID, user.ID,
		time.Now().Add(-7*24*time.Hour), time.Now())
	require.NoError(t, err)

	require.NoError(t, svc.Compile(ctx, report.ID))
	require.NoError(t, svc.Compile(ctx, report.ID))

	// The second call is a no-op; no duplicate emails go out.
	require.Len(t, mail.sent, 1)
}

func TestRequestReportAuthorization(t *testing.T) {
	ctx := context.Background()
	svc, _, client, _, _ := newReportFixture(t)

	outsider := domain.User{
		ID:           idx.New().String(),
		Email:        "outsider@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, svc.Store.Users().CreateUser(ctx, outsider))

	_, _, err := svc.Request(ctx, client.ID, outsider.ID,
		time.Now().Add(-7*24*time.Hour), time.Now())
	require.ErrorIs(t, err, ErrNotAgencyMember)

	_, _, err = svc.Request(ctx, "missing", outsider.ID,
		time.Now().Add(-7*24*time.Hour), time.Now())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStatusByToken(t *testing.T) {
	ctx := context.Background()
	svc, user, client, _, _ := newReportFixture(t)

	report, statusToken, err := svc.Request(ctx, client.ID, user.ID,
		time.Now().Add(-7*24*time.Hour), time.Now())
	require.NoError(t, err)

	found, err := svc.StatusByToken(ctx, statusToken)
	require.NoError(t, err)
	require.Equal(t, report.ID, found.ID)
	require.Equal(t, domain.ReportStatusPending, found.Status)

	_, err = svc.StatusByToken(ctx, "wrong-token")
	require.ErrorIs(t, err, ErrNotFound)

	// The stored hash itself is not a usable token.
	_, err = svc.StatusByToken(ctx, report.StatusTokenHash)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRequestRejectsInvertedPeriod(t *testing.T) {
	ctx := context.Background()
	svc, user, client, _, _ := newReportFixture(t)

	now := time.Now()
	_, _, err := svc.Request(ctx, client.ID, user.ID, now, now.Add(-time.Hour))
	require.ErrorIs(t, err, ErrInvalidInput)
}
