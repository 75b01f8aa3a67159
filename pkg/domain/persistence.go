package domain

import (
	"context"
	"fmt"
)

// ErrNotFound reports a missing record inside a transaction.
type ErrNotFound struct {
	ID string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("record %s not found", e.ID)
}

// ErrDuplicateID reports an insert under an identifier already in use.
type ErrDuplicateID struct {
	ID string
}

func (e ErrDuplicateID) Error() string {
	return fmt.Sprintf("record %s already exists", e.ID)
}

// Transaction exposes the mutations a persistence implementation must
// support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	Insert(id string, record Record) (Record, error)
	Update(id string, mutator func(*Record) error) (Record, error)
	Replace(snapshot Snapshot)
}

// TransactionView provides read-only access to transaction state.
type TransactionView interface {
	Find(id string) (Record, bool)
	Contains(id string) bool
	List() []Record
	Len() int
}

// PersistentStore is the abstraction over durable backends. Every
// successful RunInTransaction is flushed to the backend before it returns;
// when the flush fails the in-memory state keeps the mutation and the
// error is returned.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) error
	View(ctx context.Context, fn func(TransactionView) error) error
	Get(id string) (Record, bool)
	List() []Record
	ExportState() Snapshot
	ImportState(Snapshot)
	Close() error
}
