package cart

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists the cart aggregate so an in-progress sale survives a
// process restart. Catalog data lives in the database; this is only the
// cart state.
type Store interface {
	Load() (*State, error)
	Save(state *State) error
}

type fileStore struct{ path string }

// NewFileStore returns a Store writing JSON snapshots to the given path.
func NewFileStore(path string) Store { return &fileStore{path: path} }

func (f *fileStore) Load() (*State, error) {
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cart state: %w", err)
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode cart state: %w", err)
	}
	return &state, nil
}

func (f *fileStore) Save(state *State) error {
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cart state: %w", err)
	}
	// Write to a sibling temp file and rename so a crash mid-write cannot
	// leave a truncated snapshot.
	tmp := f.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write cart state: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace cart state: %w", err)
	}
	return nil
}
