package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agencydesk/autopilot/internal/autopilot/domain"
	"github.com/agencydesk/autopilot/internal/autopilot/obs"
	"github.com/agencydesk/autopilot/internal/autopilot/store"
	"github.com/agencydesk/autopilot/pkg/cryptox"
	"github.com/agencydesk/autopilot/pkg/idx"
)

// ErrStateNotFound covers missing, expired, and already-consumed state
// tokens alike; callers must not be able to tell these apart.
var ErrStateNotFound = errors.New("oauth state not found")

// DefaultStateTTL bounds how long a consent screen hand-off may take.
const DefaultStateTTL = 10 * time.Minute

// StateService issues and consumes single-use OAuth correlation tokens.
// Issue writes the record before returning the token; Consume deletes it
// atomically so a token can be redeemed at most once.
type StateService struct {
	Store store.Store
	TTL   time.Duration
}

// ttl falls back to the default only when no TTL was set; negative values
// are honored so callers can mint already-expired records.
func (s *StateService) ttl() time.Duration {
	if s.TTL != 0 {
		return s.TTL
	}
	return DefaultStateTTL
}

// Issue generates a fresh state token bound to the initiating user, agency,
// client, and platform. The caller must have already authenticated the user
// and verified agency membership. If the persistence write fails no token is
// returned and the caller must not redirect.
func (s *StateService) Issue(ctx context.Context, clientID, agencyID, platformID, userID string) (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", fmt.Errorf("generate state token: %w", err)
	}

	now := time.Now()
	record := domain.OAuthState{
		ID:        idx.New().String(),
		TokenHash: cryptox.FingerprintToken(token),
		ClientID:  clientID,
		AgencyID:  agencyID,
		Platform:  platformID,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl()),
	}

	if err := s.Store.OAuthStates().CreateState(ctx, record); err != nil {
		return "", fmt.Errorf("persist state: %w", err)
	}
	return token, nil
}

// Consume validates and deletes the record for the given token, returning
// the bound correlation data. Missing, expired, and replayed tokens all
// yield ErrStateNotFound. Concurrent consumption of the same token succeeds
// for at most one caller; the store's conditional delete guarantees it.
func (s *StateService) Consume(ctx context.Context, token string) (domain.OAuthState, error) {
	if token == "" {
		return domain.OAuthState{}, ErrStateNotFound
	}

	record, err := s.Store.OAuthStates().ConsumeStateByHash(ctx, cryptox.FingerprintToken(token), time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			obs.StateConsumed("miss")
			return domain.OAuthState{}, ErrStateNotFound
		}
		return domain.OAuthState{}, fmt.Errorf("consume state: %w", err)
	}
	obs.StateConsumed("ok")
	return record, nil
}
