// Package profile manages browser profile workspaces: creating them from a
// template, scanning their contents into snapshots, and persisting per-
// generation state under the workspace.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	// MarkerName is the marker file written once at profile creation. It
	// identifies the template a profile was built from and is read by
	// external tooling, never mutated afterwards.
	MarkerName = ".hp.json"

	// StateDirName is the internal state directory inside a profile. It
	// holds snapshots and change logs and is excluded from scans.
	StateDirName = ".hp"
)

// ErrMarkerExists is returned when writing a marker into a directory that
// already carries one.
var ErrMarkerExists = errors.New("profile: marker already exists")

// Marker identifies a profile.
type Marker struct {
	Name    string    `json:"name"`
	ID      string    `json:"id,omitempty"`
	Created time.Time `json:"created,omitempty"`
}

// WriteMarker writes the marker file into dir. The marker is written exactly
// once per profile; a second write fails with ErrMarkerExists.
func WriteMarker(dir, name string) (*Marker, error) {
	path := filepath.Join(dir, MarkerName)
	if _, err := os.Stat(path); err == nil {
		return nil, ErrMarkerExists
	}

	marker := &Marker{
		Name:    name,
		ID:      uuid.NewString(),
		Created: time.Now().UTC(),
	}

	data, err := json.Marshal(marker)
	if err != nil {
		return nil, fmt.Errorf("marshal marker: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("write marker: %w", err)
	}

	return marker, nil
}

// ReadMarker reads the marker file from dir.
func ReadMarker(dir string) (*Marker, error) {
	data, err := os.ReadFile(filepath.Join(dir, MarkerName))
	if err != nil {
		return nil, fmt.Errorf("read marker: %w", err)
	}

	var marker Marker
	if err := json.Unmarshal(data, &marker); err != nil {
		return nil, fmt.Errorf("parse marker: %w", err)
	}

	return &marker, nil
}
