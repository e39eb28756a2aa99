package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rustyeddy/hodl/pkg/id"
	"github.com/rustyeddy/hodl/position"
)

// JSONStore keeps the whole record set in one pretty-printed JSON file,
// an object mapping position id to record. Saves go through a temp file and
// rename so a failed write never leaves a half-written store behind.
type JSONStore struct {
	path string
	gen  id.Generator
}

// NewJSON returns a store backed by the file at path. The file does not have
// to exist yet; an absent file loads as an empty store.
func NewJSON(path string) *JSONStore {
	return &JSONStore{path: path, gen: id.New}
}

// NewJSONWithGenerator is NewJSON with a pinned id generator, for tests.
func NewJSONWithGenerator(path string, gen id.Generator) *JSONStore {
	return &JSONStore{path: path, gen: gen}
}

func (s *JSONStore) Load() (map[string]position.Position, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]position.Position{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse store file %s: %w", s.path, err)
	}

	out := make(map[string]position.Position, len(raw))
	for key, msg := range raw {
		p, err := upgradeRecord(key, msg, s.gen)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", key, err)
		}
		out[p.ID] = p
	}
	return out, nil
}

func (s *JSONStore) Save(positions map[string]position.Position) error {
	data, err := json.MarshalIndent(positions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".hodl-*.json")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp store: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

func (s *JSONStore) NewID() string { return s.gen() }

func (s *JSONStore) Close() error { return nil }
