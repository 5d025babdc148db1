package service

import (
	"context"
	"testing"
	"time"

	"github.com/agencydesk/autopilot/internal/autopilot/domain"
	"github.com/agencydesk/autopilot/internal/autopilot/platform"
	"github.com/agencydesk/autopilot/pkg/cryptox"
	"github.com/agencydesk/autopilot/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingReapsExpiredStates(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user, agency, client := seedTenant(t, st)

	now := time.Now()
	expired := domain.OAuthState{
		ID:        idx.New().String(),
		TokenHash: cryptox.FingerprintToken("expired-token"),
		ClientID:  client.ID,
		AgencyID:  agency.ID,
		Platform:  platform.MetaAds,
		UserID:    user.ID,
		CreatedAt: now.Add(-time.Hour),
		ExpiresAt: now.Add(-50 * time.Minute),
	}
	live := domain.OAuthState{
		ID:        idx.New().String(),
		TokenHash: cryptox.FingerprintToken("live-token"),
		ClientID:  client.ID,
		AgencyID:  agency.ID,
		Platform:  platform.MetaAds,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(10 * time.Minute),
	}
	require.NoError(t, st.OAuthStates().CreateState(ctx, expired))
	require.NoError(t, st.OAuthStates().CreateState(ctx, live))

	hk := NewHousekeepingService(st, testLogger(), time.Hour)
	hk.Cleanup()

	count, err := st.OAuthStates().CountStates(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	// The live record is still redeemable after cleanup.
	_, err = st.OAuthStates().ConsumeStateByHash(ctx, live.TokenHash, time.Now())
	require.NoError(t, err)
}

func TestHousekeepingFailsStaleReports(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, agency, client := seedTenant(t, st)

	stale := domain.Report{
		ID:              idx.New().String(),
		ClientID:        client.ID,
		AgencyID:        agency.ID,
		PeriodStart:     time.Now().Add(-8 * 24 * time.Hour),
		PeriodEnd:       time.Now().Add(-24 * time.Hour),
		Status:          domain.ReportStatusCompiling,
		StatusTokenHash: cryptox.FingerprintToken("stale"),
	}
	require.NoError(t, st.Reports().CreateReport(ctx, stale))
	// Backdate updated_at so the report reads as stuck.
	require.NoError(t, st.Reports().UpdateReportStatus(ctx, stale.ID, domain.ReportStatusCompiling))

	hk := NewHousekeepingService(st, testLogger(), time.Hour)
	hk.StaleReportAfter = -time.Minute // everything is stale
	hk.Cleanup()

	got, err := st.Reports().GetReportByID(ctx, stale.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ReportStatusFailed, got.Status)
}

func TestHousekeepingStartStop(t *testing.T) {
	st := newTestStore(t)

	hk := NewHousekeepingService(st, testLogger(), 10*time.Millisecond)
	hk.Start()
	time.Sleep(30 * time.Millisecond)
	hk.Stop()
}
