// Package memory provides the in-memory record store that every durable
// backend wraps. On its own it is used for tests and ephemeral sessions.
package memory

import (
	"context"
	"gomata/pkg/domain"
	"sync"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Record aliases domain.Record.
	Record = domain.Record
	// Snapshot aliases domain.Snapshot.
	Snapshot = domain.Snapshot
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

// memoryState keeps records keyed by identifier plus the insertion order
// used for listing and serialization.
type memoryState struct {
	order   []string
	records map[string]Record
}

func newMemoryState() memoryState {
	return memoryState{records: make(map[string]Record)}
}

// clone copies the index structures. Records are replaced, never mutated
// in place, so sharing them between states is safe.
func (s memoryState) clone() memoryState {
	out := memoryState{
		order:   make([]string, len(s.order)),
		records: make(map[string]Record, len(s.records)),
	}
	copy(out.order, s.order)
	for k, v := range s.records {
		out.records[k] = v
	}
	return out
}

func memoryStateFromSnapshot(snapshot Snapshot) memoryState {
	state := newMemoryState()
	for _, e := range snapshot.Entries {
		if _, ok := state.records[e.ID]; !ok {
			state.order = append(state.order, e.ID)
		}
		state.records[e.ID] = e.Record.Clone()
	}
	return state
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	entries := make([]domain.Entry, 0, len(state.order))
	for _, id := range state.order {
		entries = append(entries, domain.Entry{ID: id, Record: state.records[id].Clone()})
	}
	return Snapshot{Entries: entries}
}

// Store is an in-memory implementation of domain.PersistentStore.
type Store struct {
	mu    sync.RWMutex
	state memoryState
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{state: newMemoryState()}
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

// RunInTransaction executes fn against a copy of the state and swaps it in
// when fn succeeds. A failing fn leaves the store untouched.
func (s *Store) RunInTransaction(_ context.Context, fn func(tx Transaction) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// View executes fn against a read-only view of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := s.state
	return fn(transactionView{state: &state})
}

// Get returns a copy of the record stored under id.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.state.records[id]
	if !ok {
		return Record{}, false
	}
	return r.Clone(), true
}

// List returns copies of all records in insertion order.
func (s *Store) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionView{state: &s.state}.List()
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.order)
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

type transaction struct {
	state memoryState
}

func (tx *transaction) Snapshot() TransactionView {
	return transactionView{state: &tx.state}
}

func (tx *transaction) Insert(id string, record Record) (Record, error) {
	if _, exists := tx.state.records[id]; exists {
		return Record{}, domain.ErrDuplicateID{ID: id}
	}
	stored := record.Clone()
	tx.state.order = append(tx.state.order, id)
	tx.state.records[id] = stored
	return stored.Clone(), nil
}

func (tx *transaction) Update(id string, mutator func(*Record) error) (Record, error) {
	current, ok := tx.state.records[id]
	if !ok {
		return Record{}, domain.ErrNotFound{ID: id}
	}
	updated := current.Clone()
	if err := mutator(&updated); err != nil {
		return Record{}, err
	}
	tx.state.records[id] = updated
	return updated.Clone(), nil
}

func (tx *transaction) Replace(snapshot Snapshot) {
	tx.state = memoryStateFromSnapshot(snapshot)
}

type transactionView struct {
	state *memoryState
}

func (v transactionView) Find(id string) (Record, bool) {
	r, ok := v.state.records[id]
	if !ok {
		return Record{}, false
	}
	return r.Clone(), true
}

func (v transactionView) Contains(id string) bool {
	_, ok := v.state.records[id]
	return ok
}

func (v transactionView) List() []Record {
	out := make([]Record, 0, len(v.state.order))
	for _, id := range v.state.order {
		out = append(out, v.state.records[id].Clone())
	}
	return out
}

func (v transactionView) Len() int { return len(v.state.order) }
