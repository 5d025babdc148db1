package store

import (
	"context"
	"errors"
	"time"

	"github.com/agencydesk/autopilot/internal/autopilot/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Agencies() Agencies
	Clients() Clients
	Recipients() Recipients
	OAuthStates() OAuthStates
	Connections() Connections
	Reports() Reports
	Deliveries() Deliveries

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	CreateUser(ctx context.Context, u domain.User) error
}

type Agencies interface {
	// GetAgencyByID returns an agency by id.
	GetAgencyByID(ctx context.Context, id string) (domain.Agency, error)

	// CreateAgency inserts a new agency.
	CreateAgency(ctx context.Context, a domain.Agency) error

	// AddMember associates a user with an agency.
	AddMember(ctx context.Context, m domain.Membership) error

	// IsMember reports whether the user belongs to the agency. This is the
	// authorization check behind every agency-scoped operation.
	IsMember(ctx context.Context, agencyID, userID string) (bool, error)
}

type Clients interface {
	// GetClientByID returns a client by id.
	GetClientByID(ctx context.Context, id string) (domain.Client, error)

	// ListClientsByAgency returns an agency's clients, newest first.
	ListClientsByAgency(ctx context.Context, agencyID string) ([]domain.Client, error)

	// ListClientsOnSchedule returns all clients with the given schedule.
	// Used by the report scheduler.
	ListClientsOnSchedule(ctx context.Context, schedule string) ([]domain.Client, error)

	// CreateClient inserts a new client.
	CreateClient(ctx context.Context, c domain.Client) error

	// UpdateClientSchedule changes the report schedule and bumps updated_at.
	UpdateClientSchedule(ctx context.Context, clientID, schedule string) error

	// DeleteClient cascades to recipients, connections, and reports.
	DeleteClient(ctx context.Context, clientID string) error
}

type Recipients interface {
	// CreateRecipient adds a report recipient to a client.
	CreateRecipient(ctx context.Context, r domain.Recipient) error

	// ListRecipientsByClient returns a client's recipients.
	ListRecipientsByClient(ctx context.Context, clientID string) ([]domain.Recipient, error)

	// DeleteRecipient removes a recipient.
	DeleteRecipient(ctx context.Context, id string) error
}

type OAuthStates interface {
	// CreateState stores a freshly issued correlation record. The token is
	// stored hashed.
	CreateState(ctx context.Context, s domain.OAuthState) error

	// ConsumeStateByHash atomically deletes and returns the record matching
	// the token hash, provided it has not expired. Expired and missing
	// records are both reported as ErrNotFound; at most one of any set of
	// concurrent callers can succeed for a given token.
	ConsumeStateByHash(ctx context.Context, hash string, now time.Time) (domain.OAuthState, error)

	// DeleteExpiredStates reaps abandoned records (housekeeping).
	DeleteExpiredStates(ctx context.Context, now time.Time) error

	// CountStates returns the number of outstanding records. Used in tests
	// and housekeeping logs.
	CountStates(ctx context.Context) (int, error)
}

type Connections interface {
	// CreateConnection stores a platform connection after a code exchange.
	// Replaces any previous connection for the same client+platform pair.
	CreateConnection(ctx context.Context, c domain.Connection) error

	// ListConnectionsByClient returns a client's platform connections.
	ListConnectionsByClient(ctx context.Context, clientID string) ([]domain.Connection, error)

	// DeleteConnection removes a connection.
	DeleteConnection(ctx context.Context, id string) error
}

type Reports interface {
	// CreateReport inserts a new report row (status pending).
	CreateReport(ctx context.Context, r domain.Report) error

	// GetReportByID returns a report by id.
	GetReportByID(ctx context.Context, id string) (domain.Report, error)

	// GetReportByStatusTokenHash resolves the public polling token.
	GetReportByStatusTokenHash(ctx context.Context, hash string) (domain.Report, error)

	// ListReportsByClient returns a client's reports, newest first.
	ListReportsByClient(ctx context.Context, clientID string) ([]domain.Report, error)

	// UpdateReportStatus advances the pipeline status and bumps updated_at.
	UpdateReportStatus(ctx context.Context, id, status string) error

	// SetReportArtifact records the rendered PDF location.
	SetReportArtifact(ctx context.Context, id, artifactURL string) error

	// FailReport marks the report failed with a terminal error message.
	FailReport(ctx context.Context, id, errMsg string) error

	// LatestReportTime returns the creation time of the client's newest
	// report, or the zero time when none exist. Used by the scheduler to
	// decide whether a client is due.
	LatestReportTime(ctx context.Context, clientID string) (time.Time, error)

	// FailStaleReports marks reports stuck in a non-terminal status since
	// before the cutoff as failed (housekeeping).
	FailStaleReports(ctx context.Context, cutoff time.Time) error
}

type Deliveries interface {
	// CreateDelivery records an email hand-off for a report.
	CreateDelivery(ctx context.Context, d domain.Delivery) error

	// ListDeliveriesByReport returns a report's deliveries.
	ListDeliveriesByReport(ctx context.Context, reportID string) ([]domain.Delivery, error)

	// DeleteDeliveriesBefore prunes old delivery rows (housekeeping).
	DeleteDeliveriesBefore(ctx context.Context, cutoff time.Time) error
}
