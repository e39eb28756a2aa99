// Package store persists Position records. A Store is a whole-map load/save:
// one command execution reads everything, mutates in memory and writes
// everything back. Backends: a JSON file (default), SQLite, and an in-memory
// map for tests.
package store

import (
	"github.com/rustyeddy/hodl/position"
)

// Store is the persistence contract. Load returns the full id-keyed record
// set; Save replaces it wholesale. NewID hands out a fresh, collision-free
// position identifier.
type Store interface {
	Load() (map[string]position.Position, error)
	Save(map[string]position.Position) error
	NewID() string
	Close() error
}
