// Package sqlite provides the public API for the SQLite contact backend.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/rolodex/internal/sqlite"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".rolodex-db",
//	})
//	defer backend.Detach()
//
//	s := store.New(store.WithDataSource(backend))
//	err = s.Initialize(ctx)
func NewBackend() types.Backend {
	return sqlite.NewBackend()
}
