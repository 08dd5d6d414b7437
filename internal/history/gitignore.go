package history

import (
	"fmt"
	"os"
	"path/filepath"
)

// gitignoreTemplate excludes browser runtime churn from generation history.
// Tracked content is the state directory plus whatever the update cycle
// stages explicitly; caches and lock files would bloat every generation.
const gitignoreTemplate = `# hprofile .gitignore
# This file is managed by hprofile. Edit with caution.

# Browser caches (regenerated on every run)
cache2/
startupCache/
shader-cache/
thumbnails/
jumpListCache/

# Runtime lock and crash state
lock
.parentlock
parent.lock
minidumps/

# Session churn
sessionstore-backups/
*.sqlite-wal
*.sqlite-shm

# Partial downloads
*.part
`

// writeGitignore writes the profile .gitignore into dir with 0644 permissions.
func writeGitignore(dir string) error {
	path := filepath.Join(dir, ".gitignore")
	if err := os.WriteFile(path, []byte(gitignoreTemplate), 0644); err != nil {
		return fmt.Errorf("write .gitignore: %w", err)
	}
	return nil
}
