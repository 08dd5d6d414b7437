// Package diff computes the set of added, changed, and deleted files between
// two generations of a profile directory listing and serializes that change
// set to a line-oriented byte format.
//
// The package operates purely on in-memory metadata; collecting metadata from
// the filesystem is a collaborator's responsibility (see internal/profile).
package diff

import (
	"bytes"
	"fmt"
)

// Kind classifies a change record.
type Kind int

const (
	KindNew Kind = iota
	KindChanged
	KindDeleted
)

// Wire tags for the serialized change log.
const (
	tagNew     = "NEW"
	tagChanged = "CHANGED"
	tagDeleted = "DELETED"
)

// String returns the wire tag for the kind.
func (k Kind) String() string {
	switch k {
	case KindNew:
		return tagNew
	case KindChanged:
		return tagChanged
	case KindDeleted:
		return tagDeleted
	default:
		return "UNKNOWN"
	}
}

// Record is a single tagged change entry.
type Record struct {
	Kind Kind
	Path string
}

// ChangeSet is an ordered sequence of change records with derived counters.
// The zero value is ready to use. Counters always equal the number of held
// records of each kind; they are recomputed on load, never persisted.
type ChangeSet struct {
	records []Record

	New     int
	Changed int
	Deleted int
}

// Len returns the number of records.
func (c *ChangeSet) Len() int {
	return len(c.records)
}

// Records returns the records in insertion order.
func (c *ChangeSet) Records() []Record {
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// String renders the counter summary.
func (c *ChangeSet) String() string {
	return fmt.Sprintf("=> %d new files, %d modified, %d deleted.", c.New, c.Changed, c.Deleted)
}

// AddNew appends a NEW record for path.
func (c *ChangeSet) AddNew(path string) {
	c.New++
	c.records = append(c.records, Record{Kind: KindNew, Path: path})
}

// AddChanged appends a CHANGED record for path.
func (c *ChangeSet) AddChanged(path string) {
	c.Changed++
	c.records = append(c.records, Record{Kind: KindChanged, Path: path})
}

// AddDeleted appends a DELETED record for path.
func (c *ChangeSet) AddDeleted(path string) {
	c.Deleted++
	c.records = append(c.records, Record{Kind: KindDeleted, Path: path})
}

// Update compares current against previous and appends the resulting records.
// It returns the metadata entries of current that are new or changed, for the
// caller to persist. Deleted files produce records but never persist entries.
//
// Record order is an external contract of the serialized format: all
// NEW/CHANGED records come first, in current's iteration order, followed by
// all DELETED records in previous's iteration order. Unchanged files produce
// no record. Update only ever appends; it is the sole mutator besides Load.
func (c *ChangeSet) Update(current, previous *Snapshot) []FileMeta {
	var persist []FileMeta

	current.Each(func(meta FileMeta) {
		old, existed := previous.Get(meta.Path)
		if !existed {
			c.AddNew(meta.Path)
			persist = append(persist, meta)
			return
		}
		if old.Checksum != meta.Checksum {
			c.AddChanged(meta.Path)
			persist = append(persist, meta)
		}
	})

	previous.Each(func(meta FileMeta) {
		if _, exists := current.Get(meta.Path); !exists {
			c.AddDeleted(meta.Path)
		}
	})

	return persist
}

// Dump serializes the change set as newline-separated `TAG:path` records.
// No header, no footer, no escaping: a colon inside a path makes the format
// ambiguous. That limitation is inherited from the on-disk change logs this
// format must stay compatible with.
func (c *ChangeSet) Dump() []byte {
	var buf bytes.Buffer
	for i, record := range c.records {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(record.Kind.String())
		buf.WriteByte(':')
		buf.WriteString(record.Path)
	}
	return buf.Bytes()
}

// Load replaces the record list with the records serialized in data and
// recomputes all counters from scratch. Blank lines are skipped. A line whose
// tag is not one of NEW, CHANGED, or DELETED is an error.
func (c *ChangeSet) Load(data []byte) error {
	c.records = c.records[:0]
	c.New, c.Changed, c.Deleted = 0, 0, 0

	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		tag, path, found := bytes.Cut(line, []byte(":"))
		if !found {
			return fmt.Errorf("malformed change record %q", line)
		}

		switch string(tag) {
		case tagNew:
			c.AddNew(string(path))
		case tagChanged:
			c.AddChanged(string(path))
		case tagDeleted:
			c.AddDeleted(string(path))
		default:
			return fmt.Errorf("unknown change tag %q", tag)
		}
	}

	return nil
}
