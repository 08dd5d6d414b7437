package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// Helper function to create a test tar.gz archive
func createTestTarGz(t *testing.T, files map[string]string) string {
	t.Helper()

	tmpDir := t.TempDir()
	archivePath := filepath.Join(tmpDir, "test.tar.gz")

	archiveFile, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer func() { _ = archiveFile.Close() }()

	gzipWriter := gzip.NewWriter(archiveFile)
	defer func() { _ = gzipWriter.Close() }()

	tarWriter := tar.NewWriter(gzipWriter)
	defer func() { _ = tarWriter.Close() }()

	for name, content := range files {
		header := &tar.Header{
			Name: name,
			Mode: 0644,
			Size: int64(len(content)),
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			t.Fatalf("failed to write header for %s: %v", name, err)
		}
		if _, err := tarWriter.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write content for %s: %v", name, err)
		}
	}

	return archivePath
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{
			name: "simple_extraction",
			files: map[string]string{
				"prefs.js":      "user_pref(...);",
				"places.sqlite": "data",
			},
		},
		{
			name: "nested_directories",
			files: map[string]string{
				"chrome/userChrome.css":            "/* css */",
				"storage/default/example/data.bin": "blob",
				"extensions/addon.xpi":             "zip",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archivePath := createTestTarGz(t, tt.files)
			destDir := t.TempDir()

			if err := Extract(archivePath, destDir); err != nil {
				t.Fatalf("Extract() error = %v", err)
			}

			for name, want := range tt.files {
				data, err := os.ReadFile(filepath.Join(destDir, filepath.FromSlash(name)))
				if err != nil {
					t.Errorf("extracted file %s missing: %v", name, err)
					continue
				}
				if string(data) != want {
					t.Errorf("extracted %s = %q, want %q", name, data, want)
				}
			}
		})
	}
}

func TestExtractRejectsPathTraversal(t *testing.T) {
	archivePath := createTestTarGz(t, map[string]string{
		"../escape.txt": "outside",
	})
	destDir := t.TempDir()

	err := Extract(archivePath, destDir)

	var archiveErr *ArchiveError
	if !errors.As(err, &archiveErr) {
		t.Fatalf("Extract() error = %v, want *ArchiveError", err)
	}
	if _, statErr := os.Stat(filepath.Join(filepath.Dir(destDir), "escape.txt")); statErr == nil {
		t.Error("traversal entry escaped the destination directory")
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.zip")
	if err := os.WriteFile(path, []byte("PK"), 0644); err != nil {
		t.Fatal(err)
	}

	var archiveErr *ArchiveError
	if err := Extract(path, t.TempDir()); !errors.As(err, &archiveErr) {
		t.Errorf("Extract() error = %v, want *ArchiveError", err)
	}
}

func TestExtractMissingArchive(t *testing.T) {
	var archiveErr *ArchiveError
	err := Extract(filepath.Join(t.TempDir(), "missing.tar.gz"), t.TempDir())
	if !errors.As(err, &archiveErr) {
		t.Errorf("Extract() error = %v, want *ArchiveError", err)
	}
}

func TestExtractCorruptGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.tar.gz")
	if err := os.WriteFile(path, []byte("not gzip data"), 0644); err != nil {
		t.Fatal(err)
	}

	var archiveErr *ArchiveError
	if err := Extract(path, t.TempDir()); !errors.As(err, &archiveErr) {
		t.Errorf("Extract() error = %v, want *ArchiveError", err)
	}
}
