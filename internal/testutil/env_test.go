package testutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/heavyprofile/hprofile/internal/testutil"
)

func TestSetupTestEnv(t *testing.T) {
	testutil.SetupTestEnv(t)

	cacheDir := os.Getenv("HPROFILE_CACHE_DIR")
	if cacheDir == "" {
		t.Error("HPROFILE_CACHE_DIR not set")
	}

	// The developer's git identity must be masked
	for _, key := range []string{"HPROFILE_GIT_NAME", "HPROFILE_GIT_EMAIL", "GIT_AUTHOR_NAME", "GIT_AUTHOR_EMAIL"} {
		if os.Getenv(key) != "" {
			t.Errorf("%s should be cleared", key)
		}
	}

	// Verify the cache directory exists and is absolute
	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		t.Errorf("directory %s does not exist", cacheDir)
	}
	if !filepath.IsAbs(cacheDir) {
		t.Errorf("path %s is not absolute", cacheDir)
	}
}

func TestSetupTestEnv_Isolation(t *testing.T) {
	// Test that multiple test runs get different directories
	testutil.SetupTestEnv(t)
	dir1 := os.Getenv("HPROFILE_CACHE_DIR")

	t.Run("subtest", func(t *testing.T) {
		testutil.SetupTestEnv(t)
		dir2 := os.Getenv("HPROFILE_CACHE_DIR")

		if dir1 == dir2 {
			t.Error("expected different temp directories for different test contexts")
		}
	})
}
