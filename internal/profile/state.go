package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/heavyprofile/hprofile/internal/diff"
)

const (
	snapshotFile  = "snapshot.json"
	changeLogFile = "changes.log"
)

// State persists per-profile snapshots and change logs under the profile's
// internal state directory.
type State struct {
	dir string
}

// NewState returns the state accessor for the profile at profileDir.
func NewState(profileDir string) *State {
	return &State{dir: filepath.Join(profileDir, StateDirName)}
}

// LoadSnapshot returns the last persisted snapshot. A profile that has never
// been scanned yields an empty snapshot, not an error.
func (s *State) LoadSnapshot() (*diff.Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, snapshotFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return diff.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	snapshot := diff.NewSnapshot()
	if err := json.Unmarshal(data, snapshot); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	return snapshot, nil
}

// SaveSnapshot persists a snapshot as the profile's latest generation.
func (s *State) SaveSnapshot(snapshot *diff.Snapshot) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, snapshotFile), data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	return nil
}

// WriteChangeLog persists a change set in its byte format, replacing any
// previous log.
func (s *State) WriteChangeLog(cs *diff.ChangeSet) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, changeLogFile), cs.Dump(), 0644); err != nil {
		return fmt.Errorf("write change log: %w", err)
	}

	return nil
}

// ReadChangeLog loads the last persisted change set. Counters are recomputed
// from the loaded records.
func (s *State) ReadChangeLog() (*diff.ChangeSet, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, changeLogFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &diff.ChangeSet{}, nil
		}
		return nil, fmt.Errorf("read change log: %w", err)
	}

	var cs diff.ChangeSet
	if err := cs.Load(data); err != nil {
		return nil, fmt.Errorf("parse change log: %w", err)
	}

	return &cs, nil
}

// ChangeLogPath returns the on-disk location of the change log.
func (s *State) ChangeLogPath() string {
	return filepath.Join(s.dir, changeLogFile)
}

// SnapshotPath returns the on-disk location of the snapshot.
func (s *State) SnapshotPath() string {
	return filepath.Join(s.dir, snapshotFile)
}
