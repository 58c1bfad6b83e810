package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SaveFile writes the full state snapshot to path. The write goes to a
// temp file first and is swapped in with a rename, so readers never see
// a partial snapshot.
func (s *MemoryStore) SaveFile(path string) error {
	data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".loyaltypro-*.json")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// LoadFile restores state from a snapshot file. A missing file is not
// an error; the store simply starts empty.
func (s *MemoryStore) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	if err := s.LoadState(data); err != nil {
		return fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return nil
}
