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

	"github.com/trellishq/trellis/internal/model"
	"github.com/trellishq/trellis/internal/store"
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

func (s *PostgresStore) CreateNode(ctx context.Context, node *model.Node) error {
	return queryCreateNode(ctx, s.db, node)
}

func (s *PostgresStore) GetNode(ctx context.Context, id string) (*model.Node, error) {
	return queryGetNode(ctx, s.db, id)
}

func (s *PostgresStore) ListNodes(ctx context.Context, filter model.NodeFilter) ([]*model.Node, int, error) {
	return queryListNodes(ctx, s.db, filter)
}

func (s *PostgresStore) UpdateNode(ctx context.Context, node *model.Node) error {
	return queryUpdateNode(ctx, s.db, node)
}

func (s *PostgresStore) CompleteNode(ctx context.Context, id string, completedBy string) (*model.Node, error) {
	return queryCompleteNode(ctx, s.db, id, completedBy)
}

func (s *PostgresStore) ReopenNode(ctx context.Context, id string) (*model.Node, error) {
	return queryReopenNode(ctx, s.db, id)
}

func (s *PostgresStore) DeleteNode(ctx context.Context, id string) error {
	return queryDeleteNode(ctx, s.db, id)
}

func (s *PostgresStore) AddEdge(ctx context.Context, edge *model.Edge) error {
	return queryAddEdge(ctx, s.db, edge)
}

func (s *PostgresStore) RemoveEdge(ctx context.Context, from, to string, relation model.Relation) error {
	return queryRemoveEdge(ctx, s.db, from, to, relation)
}

func (s *PostgresStore) GetEdges(ctx context.Context, nodeID string) ([]*model.Edge, error) {
	return queryGetEdges(ctx, s.db, nodeID)
}

func (s *PostgresStore) CreateRequest(ctx context.Context, req *model.Request) error {
	return queryCreateRequest(ctx, s.db, req)
}

func (s *PostgresStore) GetRequest(ctx context.Context, id string) (*model.Request, error) {
	return queryGetRequest(ctx, s.db, id)
}

func (s *PostgresStore) ListRequests(ctx context.Context, nodeID string) ([]*model.Request, error) {
	return queryListRequests(ctx, s.db, nodeID)
}

func (s *PostgresStore) UpdateRequestStatus(ctx context.Context, id string, status model.RequestStatus, response string) (*model.Request, error) {
	return queryUpdateRequestStatus(ctx, s.db, id, status, response)
}

func (s *PostgresStore) GetSnapshot(ctx context.Context, projectID string) (*model.Snapshot, error) {
	return queryGetSnapshot(ctx, s.db, projectID)
}

func (s *PostgresStore) CreateNotification(ctx context.Context, n *model.Notification) (bool, error) {
	return queryCreateNotification(ctx, s.db, n)
}

func (s *PostgresStore) ListNotifications(ctx context.Context, ownerID string) ([]*model.Notification, error) {
	return queryListNotifications(ctx, s.db, ownerID)
}

func (s *PostgresStore) RecordEvent(ctx context.Context, event *model.Event) error {
	return queryRecordEvent(ctx, s.db, event)
}

func (s *PostgresStore) GetEvents(ctx context.Context, nodeID string) ([]*model.Event, error) {
	return queryGetEvents(ctx, s.db, nodeID)
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

func (s *txStore) CreateNode(ctx context.Context, node *model.Node) error {
	return queryCreateNode(ctx, s.tx, node)
}

func (s *txStore) GetNode(ctx context.Context, id string) (*model.Node, error) {
	return queryGetNode(ctx, s.tx, id)
}

func (s *txStore) ListNodes(ctx context.Context, filter model.NodeFilter) ([]*model.Node, int, error) {
	return queryListNodes(ctx, s.tx, filter)
}

func (s *txStore) UpdateNode(ctx context.Context, node *model.Node) error {
	return queryUpdateNode(ctx, s.tx, node)
}

func (s *txStore) CompleteNode(ctx context.Context, id string, completedBy string) (*model.Node, error) {
	return queryCompleteNode(ctx, s.tx, id, completedBy)
}

func (s *txStore) ReopenNode(ctx context.Context, id string) (*model.Node, error) {
	return queryReopenNode(ctx, s.tx, id)
}

func (s *txStore) DeleteNode(ctx context.Context, id string) error {
	return queryDeleteNode(ctx, s.tx, id)
}

func (s *txStore) AddEdge(ctx context.Context, edge *model.Edge) error {
	return queryAddEdge(ctx, s.tx, edge)
}

func (s *txStore) RemoveEdge(ctx context.Context, from, to string, relation model.Relation) error {
	return queryRemoveEdge(ctx, s.tx, from, to, relation)
}

func (s *txStore) GetEdges(ctx context.Context, nodeID string) ([]*model.Edge, error) {
	return queryGetEdges(ctx, s.tx, nodeID)
}

func (s *txStore) CreateRequest(ctx context.Context, req *model.Request) error {
	return queryCreateRequest(ctx, s.tx, req)
}

func (s *txStore) GetRequest(ctx context.Context, id string) (*model.Request, error) {
	return queryGetRequest(ctx, s.tx, id)
}

func (s *txStore) ListRequests(ctx context.Context, nodeID string) ([]*model.Request, error) {
	return queryListRequests(ctx, s.tx, nodeID)
}

func (s *txStore) UpdateRequestStatus(ctx context.Context, id string, status model.RequestStatus, response string) (*model.Request, error) {
	return queryUpdateRequestStatus(ctx, s.tx, id, status, response)
}

func (s *txStore) GetSnapshot(ctx context.Context, projectID string) (*model.Snapshot, error) {
	return queryGetSnapshot(ctx, s.tx, projectID)
}

func (s *txStore) CreateNotification(ctx context.Context, n *model.Notification) (bool, error) {
	return queryCreateNotification(ctx, s.tx, n)
}

func (s *txStore) ListNotifications(ctx context.Context, ownerID string) ([]*model.Notification, error) {
	return queryListNotifications(ctx, s.tx, ownerID)
}

func (s *txStore) RecordEvent(ctx context.Context, event *model.Event) error {
	return queryRecordEvent(ctx, s.tx, event)
}

func (s *txStore) GetEvents(ctx context.Context, nodeID string) ([]*model.Event, error) {
	return queryGetEvents(ctx, s.tx, nodeID)
}

// RunInTransaction on a txStore reuses the existing transaction.
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

func (s *txStore) Close() error { return nil }
