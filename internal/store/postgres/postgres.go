// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/casegraph/internal/model"
	"github.com/alfredjeanlab/casegraph/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewWithDB wraps an already opened database without running migrations.
func NewWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) GetCase(ctx context.Context, id string) (*store.CaseRecord, error) {
	return queryGetCase(ctx, s.db, id)
}

func (s *PostgresStore) ListCases(ctx context.Context) ([]*store.CaseRecord, error) {
	return queryListCases(ctx, s.db)
}

func (s *PostgresStore) ListMeetings(ctx context.Context, caseID string) ([]*store.MeetingRecord, error) {
	return queryListMeetings(ctx, s.db, caseID)
}

func (s *PostgresStore) ListTasks(ctx context.Context, caseID string) ([]*store.TaskRecord, error) {
	return queryListTasks(ctx, s.db, caseID)
}

func (s *PostgresStore) GetStakeholders(ctx context.Context, ids []string) ([]*store.StakeholderRecord, error) {
	return queryGetStakeholders(ctx, s.db, ids)
}

func (s *PostgresStore) GetOverlayPosition(ctx context.Context, caseID string) (*model.StoredOverlayPosition, error) {
	return queryGetOverlayPosition(ctx, s.db, caseID)
}

func (s *PostgresStore) SetOverlayPosition(ctx context.Context, pos *model.StoredOverlayPosition) error {
	return querySetOverlayPosition(ctx, s.db, pos)
}

func (s *PostgresStore) DeleteOverlayPosition(ctx context.Context, caseID string) error {
	return queryDeleteOverlayPosition(ctx, s.db, caseID)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) GetCase(ctx context.Context, id string) (*store.CaseRecord, error) {
	return queryGetCase(ctx, s.tx, id)
}

func (s *txStore) ListCases(ctx context.Context) ([]*store.CaseRecord, error) {
	return queryListCases(ctx, s.tx)
}

func (s *txStore) ListMeetings(ctx context.Context, caseID string) ([]*store.MeetingRecord, error) {
	return queryListMeetings(ctx, s.tx, caseID)
}

func (s *txStore) ListTasks(ctx context.Context, caseID string) ([]*store.TaskRecord, error) {
	return queryListTasks(ctx, s.tx, caseID)
}

func (s *txStore) GetStakeholders(ctx context.Context, ids []string) ([]*store.StakeholderRecord, error) {
	return queryGetStakeholders(ctx, s.tx, ids)
}

func (s *txStore) GetOverlayPosition(ctx context.Context, caseID string) (*model.StoredOverlayPosition, error) {
	return queryGetOverlayPosition(ctx, s.tx, caseID)
}

func (s *txStore) SetOverlayPosition(ctx context.Context, pos *model.StoredOverlayPosition) error {
	return querySetOverlayPosition(ctx, s.tx, pos)
}

func (s *txStore) DeleteOverlayPosition(ctx context.Context, caseID string) error {
	return queryDeleteOverlayPosition(ctx, s.tx, caseID)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
