// Package backup archives registry snapshots to a blob store and restores
// them into a persistent store.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"gomata/internal/blob"
	"gomata/internal/core"
	"gomata/pkg/domain"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultPrefix is the key prefix for archived snapshots.
	DefaultPrefix = "snapshots/"
	// Latest selects the most recent snapshot in Restore.
	Latest = "latest"

	keyLayout       = "20060102T150405.000000000Z"
	recordsMetadata = "records"
)

// ErrNoSnapshots is returned when Restore(Latest) finds an empty archive.
var ErrNoSnapshots = errors.New("no snapshots archived")

// Manager moves whole-store snapshots between a PersistentStore and a blob.Store.
type Manager struct {
	store  core.PersistentStore
	blobs  blob.Store
	prefix string
	now    func() time.Time
	logger core.Logger
}

// Option customises a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for snapshot keys.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger injects a structured logger.
func WithLogger(logger core.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithPrefix changes the archive key prefix.
func WithPrefix(prefix string) Option {
	return func(m *Manager) {
		if prefix != "" {
			m.prefix = strings.TrimSuffix(prefix, "/") + "/"
		}
	}
}

// NewManager constructs a Manager.
func NewManager(store core.PersistentStore, blobs blob.Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		blobs:  blobs,
		prefix: DefaultPrefix,
		now:    time.Now,
		logger: core.NewSlogLogger(slog.New(slog.DiscardHandler)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Export writes the current store contents as a new snapshot object.
func (m *Manager) Export(ctx context.Context) (blob.Info, error) {
	snapshot := m.store.ExportState()
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return blob.Info{}, fmt.Errorf("encode snapshot: %w", err)
	}
	key := m.prefix + m.now().UTC().Format(keyLayout) + ".json"
	info, err := m.blobs.Put(ctx, key, bytes.NewReader(data), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{recordsMetadata: strconv.Itoa(snapshot.Len())},
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("archive snapshot: %w", err)
	}
	m.logger.Info("snapshot archived", "key", key, "records", snapshot.Len(), "driver", string(m.blobs.Driver()))
	return info, nil
}

// List returns archived snapshots, oldest first.
func (m *Manager) List(ctx context.Context) ([]blob.Info, error) {
	return m.blobs.List(ctx, m.prefix)
}

// Restore replaces the store contents with the snapshot stored under key
// (or the newest one for Latest) and persists the result. It returns the
// number of restored records.
func (m *Manager) Restore(ctx context.Context, key string) (int, error) {
	if key == Latest {
		infos, err := m.List(ctx)
		if err != nil {
			return 0, err
		}
		if len(infos) == 0 {
			return 0, ErrNoSnapshots
		}
		key = infos[len(infos)-1].Key
	}
	_, body, err := m.blobs.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer func() { _ = body.Close() }()
	var snapshot domain.Snapshot
	if err := json.NewDecoder(body).Decode(&snapshot); err != nil {
		return 0, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	if err := m.store.RunInTransaction(ctx, func(tx core.Transaction) error {
		tx.Replace(snapshot)
		return nil
	}); err != nil {
		return 0, fmt.Errorf("restore snapshot %s: %w", key, err)
	}
	restored := len(m.store.List())
	m.logger.Info("snapshot restored", "key", key, "records", restored)
	return restored, nil
}

// Prune deletes all but the newest keep snapshots and returns the removed keys.
func (m *Manager) Prune(ctx context.Context, keep int) ([]string, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep must be non-negative, got %d", keep)
	}
	infos, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(infos) <= keep {
		return nil, nil
	}
	var removed []string
	for _, info := range infos[:len(infos)-keep] {
		ok, err := m.blobs.Delete(ctx, info.Key)
		if err != nil {
			return removed, fmt.Errorf("delete snapshot %s: %w", info.Key, err)
		}
		if ok {
			removed = append(removed, info.Key)
		}
	}
	m.logger.Info("snapshots pruned", "removed", len(removed), "kept", keep)
	return removed, nil
}
