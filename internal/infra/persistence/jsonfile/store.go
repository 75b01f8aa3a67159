// Package jsonfile persists the record store as a single pretty-printed
// JSON document keyed by identifier. The whole document is rewritten after
// every successful transaction.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"gomata/internal/infra/persistence/memory"
	"gomata/pkg/domain"
	"io/fs"
	"os"
	"sync"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

// DefaultPath is used when no backing file is configured.
const DefaultPath = "cattle_database.json"

// Store mirrors the in-memory store to a JSON document. Writes truncate and
// rewrite the file in place without locking; concurrent processes sharing a
// path race and the last writer wins.
type Store struct {
	*memory.Store
	mu      sync.Mutex
	path    string
	loadErr error
	warn    func(msg string, args ...any)
}

// Option configures a Store.
type Option func(*Store)

// WithWarnFunc receives diagnostics about unreadable documents discarded at load.
func WithWarnFunc(fn func(msg string, args ...any)) Option {
	return func(s *Store) {
		if fn != nil {
			s.warn = fn
		}
	}
}

// NewStore hydrates a store from path (DefaultPath when empty). An absent,
// empty, unreadable or malformed document yields an empty store; the cause
// is reported through the warn func and LoadErr, never as a failure.
func NewStore(path string, opts ...Option) *Store {
	if path == "" {
		path = DefaultPath
	}
	s := &Store{
		Store: memory.NewStore(),
		path:  path,
		warn:  func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	snapshot, err := readSnapshot(path)
	if err != nil {
		s.loadErr = err
		s.warn("error loading database, starting with empty database", "path", path, "error", err)
		return s
	}
	s.ImportState(snapshot)
	return s
}

func readSnapshot(path string) (domain.Snapshot, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Snapshot{}, nil
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return domain.Snapshot{}, nil
	}
	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return snapshot, nil
}

// RunInTransaction applies fn, then rewrites the document if fn succeeded.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) error {
	if err := s.Store.RunInTransaction(ctx, fn); err != nil {
		return err
	}
	return s.Flush()
}

// Flush serializes the full store to the backing document.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.MarshalIndent(s.ExportState(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode database: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("save database: %w", err)
	}
	return nil
}

// Path returns the backing document path.
func (s *Store) Path() string { return s.path }

// LoadErr returns the error discarded while loading, if any.
func (s *Store) LoadErr() error { return s.loadErr }
