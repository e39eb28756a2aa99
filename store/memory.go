package store

import (
	"fmt"

	"github.com/rustyeddy/hodl/position"
)

// MemStore is an in-memory Store for tests: sequential ids and no I/O.
type MemStore struct {
	positions map[string]position.Position
	next      int
}

func NewMem() *MemStore {
	return &MemStore{positions: map[string]position.Position{}}
}

func (s *MemStore) Load() (map[string]position.Position, error) {
	out := make(map[string]position.Position, len(s.positions))
	for k, v := range s.positions {
		out[k] = v
	}
	return out, nil
}

func (s *MemStore) Save(positions map[string]position.Position) error {
	s.positions = make(map[string]position.Position, len(positions))
	for k, v := range positions {
		s.positions[k] = v
	}
	return nil
}

func (s *MemStore) NewID() string {
	s.next++
	return fmt.Sprintf("pos-%04d", s.next)
}

func (s *MemStore) Close() error { return nil }
