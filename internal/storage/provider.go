// Package storage defines the key-value substrate the task list persists into.
package storage

import (
	"fmt"
	"os"
)

// Storage drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Provider is a synchronous string key-value store.
type Provider interface {
	// Get returns the value stored under key; ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	// Set overwrites the value stored under key.
	Set(key, value string) error
}

// Closer is implemented by providers holding resources.
type Closer interface {
	Close() error
}

// Open returns the provider for driver. path is a directory for "file" and a
// database file for "sqlite"; it is ignored for "memory".
func Open(driver, path string) (Provider, error) {
	switch driver {
	case DriverFile:
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create dir: %w", err)
		}
		return NewFS(path)
	case DriverSQLite:
		return OpenSQLite(path)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", driver)
	}
}

// Close releases p if it holds resources.
func Close(p Provider) error {
	if c, ok := p.(Closer); ok {
		return c.Close()
	}
	return nil
}
