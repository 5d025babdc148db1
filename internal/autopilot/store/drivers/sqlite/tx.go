package sqlite

import (
	"context"
	"database/sql"

	"github.com/agencydesk/autopilot/internal/autopilot/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // outer DB stays open; caller commits or rolls back

// Ping is a no-op for transactions; the connection already exists.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users             { return &usersRepo{db: t.tx} }
func (t *txStore) Agencies() store.Agencies       { return &agenciesRepo{db: t.tx} }
func (t *txStore) Clients() store.Clients         { return &clientsRepo{db: t.tx} }
func (t *txStore) Recipients() store.Recipients   { return &recipientsRepo{db: t.tx} }
func (t *txStore) OAuthStates() store.OAuthStates { return &oauthStatesRepo{db: t.tx} }
func (t *txStore) Connections() store.Connections { return &connectionsRepo{db: t.tx} }
func (t *txStore) Reports() store.Reports         { return &reportsRepo{db: t.tx} }
func (t *txStore) Deliveries() store.Deliveries   { return &deliveriesRepo{db: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx starts
