package statestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"booking-hold-service/internal/engine"
	"booking-hold-service/internal/pkg/errs"
)

// FileStore keeps the snapshot as a single JSON document. Save writes to a
// temp file in the same directory and renames it over the target, so a crash
// mid-write leaves the previous snapshot intact.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(_ context.Context) (*engine.Snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Wrap(err, "failed to read snapshot file")
	}
	var snapshot engine.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, errs.Wrap(err, "failed to decode snapshot file")
	}
	return &snapshot, nil
}

func (s *FileStore) Save(_ context.Context, snapshot *engine.Snapshot) error {
	raw, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return errs.Wrap(err, "failed to encode snapshot")
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(err, "failed to create snapshot directory")
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return errs.Wrap(err, "failed to create temp snapshot")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errs.Wrap(err, "failed to write temp snapshot")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errs.Wrap(err, "failed to close temp snapshot")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errs.Wrap(err, "failed to replace snapshot file")
	}
	return nil
}
