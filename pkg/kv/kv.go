// Package kv provides the durable string key-value stores the task snapshot
// and subscriber identity live in.
package kv

import (
	"context"
	"fmt"
)

const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store is an opaque durable key-value store. Set overwrites the whole value.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Open returns the store for driver. path is used by file and sqlite, dsn by postgres.
func Open(driver, path, dsn string) (Store, error) {
	switch driver {
	case "", DriverFile:
		return NewFileStore(path)
	case DriverSQLite:
		return NewSQLiteStore(path)
	case DriverPostgres:
		return NewPostgresStore(dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
