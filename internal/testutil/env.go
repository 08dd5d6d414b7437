// Package testutil provides utilities for testing hprofile in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SetupTestEnv creates isolated test directories for each test.
// This ensures hprofile tests never interfere with:
// - The user's shared archive cache
// - The developer's own git identity
//
// The cleanup function is automatically handled by t.TempDir(),
// so callers don't need to manually clean up.
func SetupTestEnv(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	// Archives fetched without an explicit target land in the cache dir
	cacheDir := filepath.Join(tmpDir, "cache")
	t.Setenv("HPROFILE_CACHE_DIR", cacheDir)

	// Generation history must never pick up the developer's identity
	t.Setenv("HPROFILE_GIT_NAME", "")
	t.Setenv("HPROFILE_GIT_EMAIL", "")
	t.Setenv("GIT_AUTHOR_NAME", "")
	t.Setenv("GIT_AUTHOR_EMAIL", "")

	if err := os.MkdirAll(cacheDir, 0o750); err != nil {
		t.Fatalf("failed to create test directory %s: %v", cacheDir, err)
	}

	return tmpDir
}
