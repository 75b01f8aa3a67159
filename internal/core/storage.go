package core

import (
	"context"
	"fmt"
	"gomata/internal/infra/persistence/jsonfile"
	"gomata/internal/infra/persistence/memory"
	"gomata/internal/infra/persistence/postgres"
	"gomata/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageJSON     StorageDriver = "json"     // pretty-printed JSON document (default)
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// StorageOptions selects and parameterises a backend. Empty values fall back
// to each backend's default.
type StorageOptions struct {
	Driver       StorageDriver
	DatabaseFile string
	SQLitePath   string
	PostgresDSN  string
}

// OpenPersistentStore opens the backend named by opts.Driver. Diagnostics
// about discarded documents are reported through logger.
func OpenPersistentStore(ctx context.Context, opts StorageOptions, logger Logger) (PersistentStore, error) {
	if logger == nil {
		logger = noopLogger{}
	}
	driver := opts.Driver
	if driver == "" {
		driver = StorageJSON
	}
	switch driver {
	case StorageJSON:
		return jsonfile.NewStore(opts.DatabaseFile, jsonfile.WithWarnFunc(logger.Warn)), nil
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		store, err := sqlite.NewStore(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StoragePostgres:
		store, err := postgres.NewStore(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
