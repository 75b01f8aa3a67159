package core

import "gomata/pkg/domain"

type (
	Record          = domain.Record
	Field           = domain.Field
	Fields          = domain.Fields
	Status          = domain.Status
	Statistics      = domain.Statistics
	Snapshot        = domain.Snapshot
	Transaction     = domain.Transaction
	TransactionView = domain.TransactionView
	PersistentStore = domain.PersistentStore
)

const (
	StatusActive   = domain.StatusActive
	StatusInactive = domain.StatusInactive
)
