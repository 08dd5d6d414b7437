package profile

import (
	"fmt"
	"os"
)

// Fresh creates a new profile at targetDir from the template tree at
// templateDir and stamps it with a marker naming the template. targetDir must
// not already exist.
func Fresh(templateDir, targetDir, name string) (*Marker, error) {
	if _, err := os.Stat(targetDir); err == nil {
		return nil, fmt.Errorf("target %s already exists", targetDir)
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return nil, fmt.Errorf("create target dir: %w", err)
	}

	if err := os.CopyFS(targetDir, os.DirFS(templateDir)); err != nil {
		return nil, fmt.Errorf("copy template: %w", err)
	}

	marker, err := WriteMarker(targetDir, name)
	if err != nil {
		return nil, err
	}

	return marker, nil
}
