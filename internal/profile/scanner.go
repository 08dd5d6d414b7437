package profile

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/heavyprofile/hprofile/internal/diff"
	"github.com/heavyprofile/hprofile/internal/signing"
)

// Scan walks a profile directory and builds a snapshot of its files keyed by
// slash-separated relative path, each entry carrying a content checksum.
// Entries appear in lexical walk order, which becomes the snapshot's
// iteration order. The internal state directory is skipped.
func Scan(dir string) (*diff.Snapshot, error) {
	snapshot := diff.NewSnapshot()

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		if entry.IsDir() {
			if rel == StateDirName {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}

		checksum, err := signing.FileChecksum(path)
		if err != nil {
			return fmt.Errorf("checksum %s: %w", rel, err)
		}

		snapshot.Put(diff.FileMeta{
			Path:     filepath.ToSlash(rel),
			Checksum: checksum,
			Size:     info.Size(),
			ModTime:  info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	return snapshot, nil
}
