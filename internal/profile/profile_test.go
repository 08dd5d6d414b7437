package profile

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/heavyprofile/hprofile/internal/diff"
)

// writeTree creates files under dir from a map of relative path to content.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestWriteAndReadMarker(t *testing.T) {
	dir := t.TempDir()

	written, err := WriteMarker(dir, "simple")
	if err != nil {
		t.Fatalf("write marker: %v", err)
	}
	if written.Name != "simple" {
		t.Errorf("name = %q", written.Name)
	}
	if written.ID == "" {
		t.Error("marker should carry an id")
	}

	read, err := ReadMarker(dir)
	if err != nil {
		t.Fatalf("read marker: %v", err)
	}
	if read.Name != written.Name || read.ID != written.ID {
		t.Errorf("read marker %+v does not match written %+v", read, written)
	}
}

func TestWriteMarkerOnlyOnce(t *testing.T) {
	dir := t.TempDir()

	if _, err := WriteMarker(dir, "simple"); err != nil {
		t.Fatal(err)
	}

	_, err := WriteMarker(dir, "other")
	if !errors.Is(err, ErrMarkerExists) {
		t.Errorf("expected ErrMarkerExists, got %v", err)
	}
}

func TestReadMarkerMissing(t *testing.T) {
	if _, err := ReadMarker(t.TempDir()); err == nil {
		t.Error("expected error for missing marker")
	}
}

func TestFresh(t *testing.T) {
	template := t.TempDir()
	writeTree(t, template, map[string]string{
		"prefs.js":              "user_pref(...);",
		"chrome/userChrome.css": "/* css */",
	})

	target := filepath.Join(t.TempDir(), "profile")
	marker, err := Fresh(template, target, "simple")
	if err != nil {
		t.Fatalf("fresh: %v", err)
	}
	if marker.Name != "simple" {
		t.Errorf("marker name = %q", marker.Name)
	}

	for _, rel := range []string{"prefs.js", "chrome/userChrome.css", MarkerName} {
		if _, err := os.Stat(filepath.Join(target, filepath.FromSlash(rel))); err != nil {
			t.Errorf("%s missing in fresh profile: %v", rel, err)
		}
	}
}

func TestFreshRefusesExistingTarget(t *testing.T) {
	template := t.TempDir()
	target := t.TempDir()

	if _, err := Fresh(template, target, "simple"); err == nil {
		t.Error("expected error for existing target")
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"prefs.js":        "a",
		"cache/entry.bin": "b",
		"zfile":           "c",
	})
	// State dir content must never enter a snapshot.
	writeTree(t, dir, map[string]string{
		StateDirName + "/snapshot.json": "[]",
	})

	snapshot, err := Scan(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	want := []string{"cache/entry.bin", "prefs.js", "zfile"}
	if !reflect.DeepEqual(snapshot.Paths(), want) {
		t.Errorf("paths = %v, want %v", snapshot.Paths(), want)
	}

	meta, ok := snapshot.Get("prefs.js")
	if !ok {
		t.Fatal("prefs.js missing from snapshot")
	}
	if len(meta.Checksum) != 64 {
		t.Errorf("checksum %q is not hex sha256", meta.Checksum)
	}
	if meta.Size != 1 {
		t.Errorf("size = %d, want 1", meta.Size)
	}
}

func TestScanDeterministicOrder(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"b": "1", "a": "2", "c": "3"})

	first, err := Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Scan(dir)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first.Paths(), second.Paths()) {
		t.Errorf("scan order is not stable: %v vs %v", first.Paths(), second.Paths())
	}
}

func TestStateSnapshotRoundTrip(t *testing.T) {
	profileDir := t.TempDir()
	state := NewState(profileDir)

	// Never-scanned profile loads as empty, not as an error.
	empty, err := state.LoadSnapshot()
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if empty.Len() != 0 {
		t.Errorf("fresh state should be empty, got %d entries", empty.Len())
	}

	snapshot := diff.NewSnapshot()
	snapshot.Put(diff.FileMeta{Path: "b", Checksum: "2"})
	snapshot.Put(diff.FileMeta{Path: "a", Checksum: "1"})
	if err := state.SaveSnapshot(snapshot); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := state.LoadSnapshot()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(loaded.Paths(), []string{"b", "a"}) {
		t.Errorf("loaded order %v should match saved order", loaded.Paths())
	}
}

func TestStateChangeLogRoundTrip(t *testing.T) {
	state := NewState(t.TempDir())

	var cs diff.ChangeSet
	cs.AddNew("a")
	cs.AddDeleted("b")
	if err := state.WriteChangeLog(&cs); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := state.ReadChangeLog()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if loaded.New != 1 || loaded.Deleted != 1 {
		t.Errorf("recomputed counters wrong: %+v", loaded)
	}
	if !reflect.DeepEqual(loaded.Records(), cs.Records()) {
		t.Error("records should round-trip")
	}
}

func TestUpdateCycle(t *testing.T) {
	// Scan, mutate the profile, scan again, and diff the generations.
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"prefs.js":  "v1",
		"stale.bak": "old",
	})

	previous, err := Scan(dir)
	if err != nil {
		t.Fatal(err)
	}

	writeTree(t, dir, map[string]string{
		"prefs.js":      "v2",
		"places.sqlite": "history",
	})
	if err := os.Remove(filepath.Join(dir, "stale.bak")); err != nil {
		t.Fatal(err)
	}

	current, err := Scan(dir)
	if err != nil {
		t.Fatal(err)
	}

	var cs diff.ChangeSet
	persist := cs.Update(current, previous)

	if cs.New != 1 || cs.Changed != 1 || cs.Deleted != 1 {
		t.Errorf("counters = %d/%d/%d, want 1/1/1", cs.New, cs.Changed, cs.Deleted)
	}
	if len(persist) != 2 {
		t.Errorf("persist list has %d entries, want 2", len(persist))
	}

	// Persisting state must not change subsequent scans.
	state := NewState(dir)
	if err := state.SaveSnapshot(current); err != nil {
		t.Fatal(err)
	}
	if err := state.WriteChangeLog(&cs); err != nil {
		t.Fatal(err)
	}

	rescan, err := Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rescan.Paths(), current.Paths()) {
		t.Errorf("state files leaked into scan: %v", rescan.Paths())
	}
}
