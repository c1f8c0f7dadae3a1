// Package sqlite provides the public API for the SQLite CRM backend.
// It exposes the factory and its options while keeping the table
// implementations internal.
package sqlite

import (
	"database/sql"

	"github.com/mesh-intelligence/hotelcrm/internal/sqlite"
	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

// Backend is an opened CRM database: the repositories plus lifecycle and
// backup operations.
type Backend interface {
	types.Store
	Open(config types.Config) (*sql.DB, error)
	Close() error
	SeedDemo() (bool, error)
	ExportJSONL(dir string) (map[string]int, error)
}

// Option configures a Backend.
type Option = sqlite.Option

// Backend options.
var (
	WithLogger     = sqlite.WithLogger
	WithClock      = sqlite.WithClock
	WithMigrations = sqlite.WithMigrations
)

// NewBackend creates a new SQLite backend. It is not open; call Open with a
// Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	if _, err := backend.Open(types.DefaultConfig("./data")); err != nil {
//	    return err
//	}
//	defer backend.Close()
//	buyers, err := backend.Buyers().GetAll(types.BuyerFilter{})
func NewBackend(opts ...Option) Backend {
	return sqlite.NewBackend(opts...)
}
