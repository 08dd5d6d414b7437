package diff

import (
	"encoding/json"
	"time"
)

// FileMeta describes one file inside a profile snapshot.
type FileMeta struct {
	Path     string    `json:"path"`
	Checksum string    `json:"chksum"`
	Size     int64     `json:"size,omitempty"`
	ModTime  time.Time `json:"modtime,omitempty"`
}

// Snapshot maps relative paths to file metadata, preserving the order in
// which entries were added. Iteration order is part of the snapshot contract:
// it determines the record order of change sets computed from it.
type Snapshot struct {
	order   []string
	entries map[string]FileMeta
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{entries: make(map[string]FileMeta)}
}

// Put adds or replaces the metadata for meta.Path. A replaced entry keeps its
// original position.
func (s *Snapshot) Put(meta FileMeta) {
	if _, exists := s.entries[meta.Path]; !exists {
		s.order = append(s.order, meta.Path)
	}
	s.entries[meta.Path] = meta
}

// Get returns the metadata for path.
func (s *Snapshot) Get(path string) (FileMeta, bool) {
	meta, ok := s.entries[path]
	return meta, ok
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	return len(s.order)
}

// Paths returns all paths in insertion order.
func (s *Snapshot) Paths() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Each calls fn for every entry in insertion order.
func (s *Snapshot) Each(fn func(meta FileMeta)) {
	for _, path := range s.order {
		fn(s.entries[path])
	}
}

// MarshalJSON serializes the snapshot as an ordered array so that iteration
// order survives a round trip.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	metas := make([]FileMeta, 0, len(s.order))
	for _, path := range s.order {
		metas = append(metas, s.entries[path])
	}
	return json.Marshal(metas)
}

// UnmarshalJSON replaces the snapshot contents with the serialized entries,
// in array order.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var metas []FileMeta
	if err := json.Unmarshal(data, &metas); err != nil {
		return err
	}

	s.order = s.order[:0]
	s.entries = make(map[string]FileMeta, len(metas))
	for _, meta := range metas {
		s.Put(meta)
	}

	return nil
}
