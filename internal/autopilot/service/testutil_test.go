package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/agencydesk/autopilot/internal/autopilot/domain"
	"github.com/agencydesk/autopilot/internal/autopilot/store/drivers/sqlite"
	"github.com/agencydesk/autopilot/pkg/idx"
	"github.com/agencydesk/autopilot/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// seedTenant creates a user, an agency with that user as owner, and one
// client under the agency.
func seedTenant(t *testing.T, st *sqlite.Store) (domain.User, domain.Agency, domain.Client) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	user := domain.User{
		ID:           idx.New().String(),
		Email:        "owner@example.com",
		Name:         "Owner",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Users().CreateUser(ctx, user))

	agency := domain.Agency{
		ID:        idx.New().String(),
		Name:      "Acme Media",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.Agencies().CreateAgency(ctx, agency))
	require.NoError(t, st.Agencies().AddMember(ctx, domain.Membership{
		AgencyID:  agency.ID,
		UserID:    user.ID,
		Role:      "owner",
		CreatedAt: now,
	}))

	client := domain.Client{
		ID:        idx.New().String(),
		AgencyID:  agency.ID,
		Name:      "Bluebird Coffee",
		Schedule:  domain.ScheduleNone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.Clients().CreateClient(ctx, client))

	return user, agency, client
}

func testLogger() *slog.Logger {
	return slogx.Discard()
}
