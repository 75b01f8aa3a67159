// Package postgres provides a Postgres-backed persistent store that mirrors
// the in-memory semantics, rewriting the records table after every
// successful transaction.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"gomata/internal/infra/persistence/memory"
	"gomata/pkg/domain"
	"sort"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	// DefaultDSN is used when no DSN is configured.
	DefaultDSN = "postgres://localhost/gomata?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store persists state to Postgres while reusing the in-memory implementation for transactions.
type Store struct {
	*memory.Store
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens a Postgres-backed store using the provided DSN (falls back to DefaultDSN),
// ensures the records table exists and hydrates the in-memory store from it.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureRecordsTable(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	snapshot, err := loadSnapshot(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	mem := memory.NewStore()
	mem.ImportState(snapshot)
	return &Store{Store: mem, db: db}, nil
}

// RunInTransaction applies the provided function within a transaction, then snapshots to Postgres if successful.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) error {
	if err := s.Store.RunInTransaction(ctx, fn); err != nil {
		return err
	}
	return s.persist(ctx)
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// payload is JSON rather than JSONB: JSONB reorders object keys and records
// must come back in field insertion order.
const recordsDDL = `CREATE TABLE IF NOT EXISTS cattle_records (
		adhaar_id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		payload JSON NOT NULL
	)`

func ensureRecordsTable(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, recordsDDL); err != nil {
		return fmt.Errorf("ensure records table: %w", err)
	}
	return nil
}

func loadSnapshot(ctx context.Context, db *sql.DB) (domain.Snapshot, error) {
	rows, err := db.QueryContext(ctx, `SELECT adhaar_id, position, payload FROM cattle_records ORDER BY position`)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("select records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	type row struct {
		position int64
		entry    domain.Entry
	}
	var loaded []row
	for rows.Next() {
		var (
			id       string
			position int64
			payload  []byte
		)
		if err := rows.Scan(&id, &position, &payload); err != nil {
			return domain.Snapshot{}, fmt.Errorf("scan records: %w", err)
		}
		var rec domain.Record
		if err := json.Unmarshal(payload, &rec); err != nil {
			return domain.Snapshot{}, fmt.Errorf("decode record %s: %w", id, err)
		}
		loaded = append(loaded, row{position: position, entry: domain.Entry{ID: id, Record: rec}})
	}
	if err := rows.Err(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("iterate records: %w", err)
	}
	sort.SliceStable(loaded, func(i, j int) bool { return loaded[i].position < loaded[j].position })
	snapshot := domain.Snapshot{Entries: make([]domain.Entry, 0, len(loaded))}
	for _, r := range loaded {
		snapshot.Entries = append(snapshot.Entries, r.entry)
	}
	return snapshot, nil
}

func (s *Store) persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM cattle_records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	for i, e := range snapshot.Entries {
		data, err := json.Marshal(e.Record)
		if err != nil {
			return fmt.Errorf("encode record %s: %w", e.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO cattle_records(adhaar_id,position,payload) VALUES($1,$2,$3)`, e.ID, i, data); err != nil {
			return fmt.Errorf("insert %s: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
