package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/heavyprofile/hprofile/internal/config"
	"github.com/heavyprofile/hprofile/internal/platform"
	"github.com/heavyprofile/hprofile/internal/signing"
)

// loadConfig reads the hprofile.lua config from dir, falling back to defaults
// when none exists.
func loadConfig(ctx context.Context, dir string) (*config.Config, error) {
	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("check config: %w", err)
	}

	parser := config.NewParser(platform.NewDetector())
	cfg, err := parser.ParseFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return cfg, nil
}

// newSigner builds the signer from config, resolving the passphrase from the
// environment variable the config names. keyPath overrides the config's key
// when non-empty.
func newSigner(cfg *config.Config, keyPath string) (*signing.Signer, error) {
	if keyPath == "" {
		keyPath = cfg.Signing.Key
	}
	var passphrase string
	if cfg.Signing.PassphraseEnv != "" {
		passphrase = os.Getenv(cfg.Signing.PassphraseEnv)
	}
	return signing.NewSigner(keyPath, passphrase)
}
