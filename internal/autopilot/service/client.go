package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/agencydesk/autopilot/internal/autopilot/domain"
	"github.com/agencydesk/autopilot/internal/autopilot/store"
	"github.com/agencydesk/autopilot/pkg/idx"
)

// ClientService manages an agency's clients, their report recipients, and
// their platform connections. Every operation verifies the caller's agency
// membership before touching anything.
type ClientService struct {
	Store store.Store
}

// requireMember checks the caller belongs to the agency.
func (s *ClientService) requireMember(ctx context.Context, agencyID, userID string) error {
	member, err := s.Store.Agencies().IsMember(ctx, agencyID, userID)
	if err != nil {
		return fmt.Errorf("membership check: %w", err)
	}
	if !member {
		return ErrNotAgencyMember
	}
	return nil
}

// requireClient resolves a client and checks it belongs to the caller's
// agency. A client from another agency reads as not found.
func (s *ClientService) requireClient(ctx context.Context, clientID, userID string) (domain.Client, error) {
	client, err := s.Store.Clients().GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrNotFound
		}
		return domain.Client{}, fmt.Errorf("lookup client: %w", err)
	}
	if err := s.requireMember(ctx, client.AgencyID, userID); err != nil {
		return domain.Client{}, err
	}
	return client, nil
}

// CreateClient adds a client under the agency with an optional schedule.
func (s *ClientService) CreateClient(ctx context.Context, agencyID, userID, name, schedule string) (domain.Client, error) {
	if name == "" {
		return domain.Client{}, ErrInvalidInput
	}
	if schedule == "" {
		schedule = domain.ScheduleNone
	}
	if !domain.ValidSchedule(schedule) {
		return domain.Client{}, ErrInvalidInput
	}
	if err := s.requireMember(ctx, agencyID, userID); err != nil {
		return domain.Client{}, err
	}

	now := time.Now()
	client := domain.Client{
		ID:        idx.New().String(),
		AgencyID:  agencyID,
		Name:      name,
		Schedule:  schedule,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Clients().CreateClient(ctx, client); err != nil {
		return domain.Client{}, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}

// ListClients returns the agency's clients.
func (s *ClientService) ListClients(ctx context.Context, agencyID, userID string) ([]domain.Client, error) {
	if err := s.requireMember(ctx, agencyID, userID); err != nil {
		return nil, err
	}
	clients, err := s.Store.Clients().ListClientsByAgency(ctx, agencyID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

// GetClient returns a single client the caller may see.
func (s *ClientService) GetClient(ctx context.Context, clientID, userID string) (domain.Client, error) {
	return s.requireClient(ctx, clientID, userID)
}

// UpdateSchedule changes a client's report schedule.
func (s *ClientService) UpdateSchedule(ctx context.Context, clientID, userID, schedule string) error {
	if !domain.ValidSchedule(schedule) {
		return ErrInvalidInput
	}
	if _, err := s.requireClient(ctx, clientID, userID); err != nil {
		return err
	}
	if err := s.Store.Clients().UpdateClientSchedule(ctx, clientID, schedule); err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}

// DeleteClient removes a client and everything hanging off it.
func (s *ClientService) DeleteClient(ctx context.Context, clientID, userID string) error {
	if _, err := s.requireClient(ctx, clientID, userID); err != nil {
		return err
	}
	if err := s.Store.Clients().DeleteClient(ctx, clientID); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}

// AddRecipient adds a report recipient to a client.
func (s *ClientService) AddRecipient(ctx context.Context, clientID, userID, email, name string) (domain.Recipient, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.Recipient{}, ErrInvalidInput
	}
	if _, err := s.requireClient(ctx, clientID, userID); err != nil {
		return domain.Recipient{}, err
	}

	recipient := domain.Recipient{
		ID:        idx.New().String(),
		ClientID:  clientID,
		Email:     email,
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := s.Store.Recipients().CreateRecipient(ctx, recipient); err != nil {
		return domain.Recipient{}, fmt.Errorf("create recipient: %w", err)
	}
	return recipient, nil
}

// ListRecipients returns a client's report recipients.
func (s *ClientService) ListRecipients(ctx context.Context, clientID, userID string) ([]domain.Recipient, error) {
	if _, err := s.requireClient(ctx, clientID, userID); err != nil {
		return nil, err
	}
	recipients, err := s.Store.Recipients().ListRecipientsByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	return recipients, nil
}

// RemoveRecipient deletes a recipient from a client.
func (s *ClientService) RemoveRecipient(ctx context.Context, clientID, recipientID, userID string) error {
	if _, err := s.requireClient(ctx, clientID, userID); err != nil {
		return err
	}
	if err := s.Store.Recipients().DeleteRecipient(ctx, recipientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete recipient: %w", err)
	}
	return nil
}

// ListConnections returns a client's platform connections with token
// material blanked; tokens never leave the service layer.
func (s *ClientService) ListConnections(ctx context.Context, clientID, userID string) ([]domain.Connection, error) {
	if _, err := s.requireClient(ctx, clientID, userID); err != nil {
		return nil, err
	}
	conns, err := s.Store.Connections().ListConnectionsByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	for i := range conns {
		conns[i].AccessToken = ""
		conns[i].RefreshToken = ""
	}
	return conns, nil
}

// RemoveConnection disconnects a platform from a client.
func (s *ClientService) RemoveConnection(ctx context.Context, clientID, connectionID, userID string) error {
	if _, err := s.requireClient(ctx, clientID, userID); err != nil {
		return err
	}
	if err := s.Store.Connections().DeleteConnection(ctx, connectionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete connection: %w", err)
	}
	return nil
}
