// Package sqlite exposes the SQLite trajectory store while keeping its
// implementation internal.
package sqlite

import (
	"github.com/mesh-intelligence/linkage/internal/sqlite"
	"github.com/mesh-intelligence/linkage/pkg/types"
)

// NewBackend creates a detached SQLite store. Call Attach before use.
//
// Example:
//
//	store := sqlite.NewBackend()
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".linkage-db",
//	})
//	defer store.Detach()
func NewBackend() types.Store {
	return sqlite.NewBackend()
}
