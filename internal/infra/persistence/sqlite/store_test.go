package sqlite

import (
	"context"
	"gomata/pkg/domain"
	"path/filepath"
	"strings"
	"testing"
)

func insert(ctx context.Context, s *Store, id string, fields ...domain.Field) error {
	return s.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.Insert(id, domain.NewRecord(fields...))
		return err
	})
}

func TestSQLiteStorePersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	store, err := NewStore(path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	ctx := context.Background()
	for _, id := range []string{"900000000000", "100000000000", "500000000000"} {
		if err := insert(ctx, store, id,
			domain.Field{Key: domain.FieldID, Value: id},
			domain.Field{Key: domain.FieldAge, Value: 4},
			domain.Field{Key: domain.FieldStatus, Value: string(domain.StatusActive)},
		); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	if err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.Update("100000000000", func(r *domain.Record) error {
			r.Set(domain.FieldStatus, string(domain.StatusInactive))
			return nil
		})
		return err
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded, err := NewStore(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.Close() })
	list := reloaded.List()
	if len(list) != 3 {
		t.Fatalf("expected 3 records, got %d", len(list))
	}
	if list[0].ID() != "900000000000" || list[1].ID() != "100000000000" {
		t.Fatalf("insertion order lost: %s %s", list[0].ID(), list[1].ID())
	}
	if list[1].Status() != domain.StatusInactive {
		t.Fatalf("update not persisted")
	}
	if age, ok := list[2].Age(); !ok || age != 4 {
		t.Fatalf("age lost: %v %v", age, ok)
	}
	if reloaded.Path() != path {
		t.Fatalf("path mismatch")
	}
}

func TestSQLiteStoreLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.db")
	store, err := NewStore(path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if _, err := store.DB().Exec(`INSERT INTO cattle_records(adhaar_id, position, payload) VALUES('1', 0, 'not json')`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_ = store.Close()
	if _, err := NewStore(path); err == nil || !strings.Contains(err.Error(), "decode record 1") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestSQLiteStorePersistMarshalError(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "persist.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	err = insert(context.Background(), store, "1", domain.Field{Key: "invalid", Value: func() {}})
	if err == nil || !strings.Contains(err.Error(), "unsupported type") {
		t.Fatalf("expected unsupported type error, got %v", err)
	}
}
