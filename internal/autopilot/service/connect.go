package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agencydesk/autopilot/internal/autopilot/domain"
	"github.com/agencydesk/autopilot/internal/autopilot/platform"
	"github.com/agencydesk/autopilot/internal/autopilot/store"
	"github.com/agencydesk/autopilot/pkg/idx"
)

// ConnectService drives the platform connection flow: it hands browsers off
// to the platform's consent screen and turns the returning callback into a
// stored connection.
type ConnectService struct {
	Store    store.Store
	States   *StateService
	Registry *platform.Registry

	// BaseURL is the public origin of this service, used to build the
	// redirect_uri registered with each platform.
	BaseURL string
}

// RedirectURI returns the callback URL registered with the platform.
func (s *ConnectService) RedirectURI(platformID string) string {
	return s.BaseURL + "/v1/oauth/" + platformID + "/callback"
}

// BeginAuthorization validates the request, issues a state token, and
// returns the platform consent URL to redirect the browser to. The state
// record is only written after the membership check passes, so an
// unauthorized attempt leaves no trace in the store.
func (s *ConnectService) BeginAuthorization(ctx context.Context, platformID, clientID, agencyID, userID string) (string, error) {
	cfg, ok := s.Registry.Get(platformID)
	if !ok {
		return "", ErrUnsupportedPlatform
	}

	member, err := s.Store.Agencies().IsMember(ctx, agencyID, userID)
	if err != nil {
		return "", fmt.Errorf("membership check: %w", err)
	}
	if !member {
		return "", ErrNotAgencyMember
	}

	client, err := s.Store.Clients().GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("lookup client: %w", err)
	}
	if client.AgencyID != agencyID {
		return "", ErrNotAgencyMember
	}

	token, err := s.States.Issue(ctx, clientID, agencyID, platformID, userID)
	if err != nil {
		return "", err
	}

	return cfg.BuildAuthorizeURL(s.RedirectURI(platformID), token), nil
}

// CompleteAuthorization consumes the state token from the platform callback,
// exchanges the authorization code, and stores the resulting connection. A
// missing, expired, replayed, or cross-platform state token fails with
// ErrStateNotFound before any exchange is attempted.
func (s *ConnectService) CompleteAuthorization(ctx context.Context, platformID, code, stateToken string) (domain.Connection, error) {
	record, err := s.States.Consume(ctx, stateToken)
	if err != nil {
		return domain.Connection{}, err
	}

	// A token issued for one platform must not complete another's flow.
	if record.Platform != platformID {
		return domain.Connection{}, ErrStateNotFound
	}

	token, err := s.Registry.Exchange(ctx, platformID, code, s.RedirectURI(platformID))
	if err != nil {
		if errors.Is(err, platform.ErrUnsupported) {
			return domain.Connection{}, ErrUnsupportedPlatform
		}
		return domain.Connection{}, fmt.Errorf("exchange code: %w", err)
	}

	conn := domain.Connection{
		ID:           idx.New().String(),
		ClientID:     record.ClientID,
		AgencyID:     record.AgencyID,
		Platform:     platformID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.ExpiresAt,
		ConnectedBy:  record.UserID,
		CreatedAt:    time.Now(),
	}
	if err := s.Store.Connections().CreateConnection(ctx, conn); err != nil {
		return domain.Connection{}, fmt.Errorf("store connection: %w", err)
	}
	return conn, nil
}
