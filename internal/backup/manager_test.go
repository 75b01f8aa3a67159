package backup

import (
	"context"
	"errors"
	"gomata/internal/blob"
	"gomata/internal/core"
	"gomata/internal/infra/persistence/jsonfile"
	"gomata/internal/infra/persistence/memory"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type steppingClock struct{ t time.Time }

func (c *steppingClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func openMemoryBlobs(t *testing.T) blob.Store {
	t.Helper()
	store, err := blob.Open(context.Background(), blob.Config{Driver: blob.DriverMemory})
	if err != nil {
		t.Fatalf("open blob store: %v", err)
	}
	return store
}

func TestExportListRestore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cattle.json")
	store := jsonfile.NewStore(path)
	svc := core.NewService(store)
	first, err := svc.Register(ctx, "Ram Kumar", "Jersey", 5, "Female", "Brown", nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	clock := &steppingClock{t: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	blobs := openMemoryBlobs(t)
	mgr := NewManager(store, blobs, WithClock(clock.now))

	info, err := mgr.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if info.Key != "snapshots/20240601T090001.000000000Z.json" || info.Metadata["records"] != "1" {
		t.Fatalf("unexpected snapshot info %+v", info)
	}

	if _, err := svc.Register(ctx, "Shyam", "Gir", 2, "Male", "White", nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := mgr.Export(ctx); err != nil {
		t.Fatalf("second export: %v", err)
	}
	list, err := mgr.List(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %v %d", err, len(list))
	}

	restored, err := mgr.Restore(ctx, info.Key)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored != 1 {
		t.Fatalf("expected 1 restored record, got %d", restored)
	}
	reloaded := jsonfile.NewStore(path)
	records := reloaded.List()
	if len(records) != 1 || records[0].ID() != first {
		t.Fatalf("restore not persisted: %d records", len(records))
	}

	restored, err = mgr.Restore(ctx, Latest)
	if err != nil || restored != 2 {
		t.Fatalf("restore latest: %d %v", restored, err)
	}
}

func TestRestoreErrors(t *testing.T) {
	ctx := context.Background()
	blobs := openMemoryBlobs(t)
	mgr := NewManager(memory.NewStore(), blobs, WithPrefix("archive"))

	if _, err := mgr.Restore(ctx, Latest); !errors.Is(err, ErrNoSnapshots) {
		t.Fatalf("expected no snapshots, got %v", err)
	}
	if _, err := mgr.Restore(ctx, "archive/missing.json"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := blobs.Put(ctx, "archive/bad.json", strings.NewReader("[1,2]"), blob.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := mgr.Restore(ctx, Latest); err == nil || !strings.Contains(err.Error(), "decode snapshot archive/bad.json") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestExportKeyCollision(t *testing.T) {
	ctx := context.Background()
	fixed := func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	mgr := NewManager(memory.NewStore(), openMemoryBlobs(t), WithClock(fixed))
	if _, err := mgr.Export(ctx); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := mgr.Export(ctx); !errors.Is(err, blob.ErrExists) {
		t.Fatalf("expected exists error, got %v", err)
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	ctx := context.Background()
	clock := &steppingClock{t: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	mgr := NewManager(memory.NewStore(), openMemoryBlobs(t), WithClock(clock.now))
	var keys []string
	for range 4 {
		info, err := mgr.Export(ctx)
		if err != nil {
			t.Fatalf("export: %v", err)
		}
		keys = append(keys, info.Key)
	}

	removed, err := mgr.Prune(ctx, 1)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if strings.Join(removed, ",") != strings.Join(keys[:3], ",") {
		t.Fatalf("removed %v, want %v", removed, keys[:3])
	}
	left, err := mgr.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(left) != 1 || left[0].Key != keys[3] {
		t.Fatalf("unexpected survivors %+v", left)
	}

	if removed, err := mgr.Prune(ctx, 5); err != nil || len(removed) != 0 {
		t.Fatalf("prune below limit: %v %v", removed, err)
	}
	if _, err := mgr.Prune(ctx, -1); err == nil {
		t.Fatalf("expected error for negative keep")
	}
	if removed, err := mgr.Prune(ctx, 0); err != nil || len(removed) != 1 {
		t.Fatalf("prune all: %v %v", removed, err)
	}
}
