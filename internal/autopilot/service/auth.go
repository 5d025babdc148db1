package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agencydesk/autopilot/internal/autopilot/domain"
	"github.com/agencydesk/autopilot/internal/autopilot/store"
	"github.com/agencydesk/autopilot/pkg/cryptox"
	"github.com/agencydesk/autopilot/pkg/idx"
	"github.com/agencydesk/autopilot/pkg/jwtx"
)

// DefaultSessionTTL is how long an issued session token stays valid.
const DefaultSessionTTL = 12 * time.Hour

// AuthService handles signup and login. Sessions are stateless HS256 tokens;
// there is nothing to revoke server-side, so logout is purely a cookie clear.
type AuthService struct {
	Store      store.Store
	Signer     jwtx.Signer
	SessionTTL time.Duration
}

func (s *AuthService) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return DefaultSessionTTL
}

// Signup creates an agency together with its first (owner) user and returns
// a session token for the new user. User and agency are created in one
// transaction so a half-registered tenant can never exist.
func (s *AuthService) Signup(ctx context.Context, agencyName, userName, email, password string) (string, domain.User, domain.Agency, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if agencyName == "" || email == "" || len(password) < 8 {
		return "", domain.User{}, domain.Agency{}, ErrInvalidInput
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return "", domain.User{}, domain.Agency{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         userName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	agency := domain.Agency{
		ID:        idx.New().String(),
		Name:      agencyName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		if err := tx.Agencies().CreateAgency(ctx, agency); err != nil {
			return err
		}
		return tx.Agencies().AddMember(ctx, domain.Membership{
			AgencyID:  agency.ID,
			UserID:    user.ID,
			Role:      "owner",
			CreatedAt: now,
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return "", domain.User{}, domain.Agency{}, ErrInvalidInput
		}
		return "", domain.User{}, domain.Agency{}, fmt.Errorf("create tenant: %w", err)
	}

	token, err := s.issueSession(user.ID)
	if err != nil {
		return "", domain.User{}, domain.Agency{}, err
	}
	return token, user, agency, nil
}

// Login verifies the credentials and returns a session token. Unknown email
// and wrong password both surface as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", domain.User{}, ErrInvalidCredentials
		}
		return "", domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return "", domain.User{}, ErrInvalidCredentials
	}

	token, err := s.issueSession(user.ID)
	if err != nil {
		return "", domain.User{}, err
	}
	return token, user, nil
}

func (s *AuthService) issueSession(userID string) (string, error) {
	now := time.Now()
	token, err := s.Signer.Sign(jwtx.Claims{
		Subject:   userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.sessionTTL()),
	})
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}
