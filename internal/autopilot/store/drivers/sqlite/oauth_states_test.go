package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/agencydesk/autopilot/internal/autopilot/domain"
	"github.com/agencydesk/autopilot/internal/autopilot/store"
	"github.com/agencydesk/autopilot/pkg/idx"
	"github.com/stretchr/testify/require"
)

func seedStateFixture(t *testing.T) (*Store, domain.OAuthState) {
	t.Helper()
	ctx := context.Background()

	st, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	user := domain.User{ID: idx.New().String(), Email: "u@example.com", Name: "U", PasswordHash: "hash"}
	require.NoError(t, st.Users().CreateUser(ctx, user))
	agency := domain.Agency{ID: idx.New().String(), Name: "A"}
	require.NoError(t, st.Agencies().CreateAgency(ctx, agency))
	client := domain.Client{ID: idx.New().String(), AgencyID: agency.ID, Name: "C", Schedule: domain.ScheduleNone}
	require.NoError(t, st.Clients().CreateClient(ctx, client))

	now := time.Now()
	state := domain.OAuthState{
		ID:        idx.New().String(),
		TokenHash: "hash-of-token",
		ClientID:  client.ID,
		AgencyID:  agency.ID,
		Platform:  "meta_ads",
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(10 * time.Minute),
	}
	return st, state
}

func TestConsumeStateByHashDeletesOnRead(t *testing.T) {
	ctx := context.Background()
	st, state := seedStateFixture(t)

	require.NoError(t, st.OAuthStates().CreateState(ctx, state))

	got, err := st.OAuthStates().ConsumeStateByHash(ctx, state.TokenHash, time.Now())
	require.NoError(t, err)
	require.Equal(t, state.ID, got.ID)
	require.Equal(t, state.ClientID, got.ClientID)
	require.Equal(t, state.Platform, got.Platform)

	// Gone after the first read.
	_, err = st.OAuthStates().ConsumeStateByHash(ctx, state.TokenHash, time.Now())
	require.ErrorIs(t, err, store.ErrNotFound)

	count, err := st.OAuthStates().CountStates(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestConsumeStateByHashLeavesExpiredRowIntact(t *testing.T) {
	ctx := context.Background()
	st, state := seedStateFixture(t)

	state.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, st.OAuthStates().CreateState(ctx, state))

	_, err := st.OAuthStates().ConsumeStateByHash(ctx, state.TokenHash, time.Now())
	require.ErrorIs(t, err, store.ErrNotFound)

	// The conditional delete must not remove rows it refuses to return.
	count, err := st.OAuthStates().CountStates(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestDeleteExpiredStates(t *testing.T) {
	ctx := context.Background()
	st, state := seedStateFixture(t)

	expired := state
	expired.ID = idx.New().String()
	expired.TokenHash = "expired-hash"
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, st.OAuthStates().CreateState(ctx, state))
	require.NoError(t, st.OAuthStates().CreateState(ctx, expired))

	require.NoError(t, st.OAuthStates().DeleteExpiredStates(ctx, time.Now()))

	count, err := st.OAuthStates().CountStates(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestCreateStateDuplicateHash(t *testing.T) {
	ctx := context.Background()
	st, state := seedStateFixture(t)

	require.NoError(t, st.OAuthStates().CreateState(ctx, state))

	dup := state
	dup.ID = idx.New().String()
	err := st.OAuthStates().CreateState(ctx, dup)
	require.Error(t, err)
}
