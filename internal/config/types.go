// Package config provides Lua configuration parsing for hprofile.
//
// Configs are declarative Lua files executed in a sandboxed VM with platform
// detection injected, so a single config can serve several machines. The
// schema is a global `hprofile` table:
//
//	hprofile = {
//	    meta = { name = "simple", description = "baseline browsing profile" },
//	    archive = { server = "https://archives.example.org", chunk_size = 1024, verify = true },
//	    signing = { key = "~/.hprofile/keys/release.asc", passphrase_env = "HP_KEY_PASSPHRASE" },
//	    history = { enabled = true, retention = 30 },
//	}
package config

import (
	"fmt"
	"net/url"
	"strings"
)

// MaxNameLength bounds the profile name accepted from configs.
const MaxNameLength = 64

// Config represents the complete hprofile configuration.
type Config struct {
	Meta    Meta          `json:"meta,omitempty"`
	Archive ArchiveConfig `json:"archive,omitempty"`
	Signing SigningConfig `json:"signing,omitempty"`
	History HistoryConfig `json:"history,omitempty"`
}

// Meta contains metadata about the profile this config manages.
type Meta struct {
	// Name identifies the profile template (written into the .hp.json marker).
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// ArchiveConfig contains settings for artifact fetching.
type ArchiveConfig struct {
	// Server is the base URL archives are fetched from.
	Server string `json:"server,omitempty"`
	// ChunkSize is the streaming download chunk size in bytes. Zero selects
	// the fetcher's default.
	ChunkSize int `json:"chunk_size,omitempty"`
	// Verify controls checksum verification of fetched archives.
	Verify bool `json:"verify"`
}

// SigningConfig locates the verification key. An empty Key falls back to the
// bundled development key.
type SigningConfig struct {
	Key string `json:"key,omitempty"`
	// PassphraseEnv names an environment variable holding the key
	// passphrase. The passphrase itself never lives in the config file.
	PassphraseEnv string `json:"passphrase_env,omitempty"`
}

// HistoryConfig controls generation history recording.
type HistoryConfig struct {
	Enabled bool `json:"enabled"`
	// Retention is the number of generations to keep. Zero keeps all.
	Retention int `json:"retention,omitempty"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Meta:    Meta{Name: "simple"},
		Archive: ArchiveConfig{Verify: true},
		History: HistoryConfig{Enabled: true},
	}
}

// ValidationError describes a config field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validate performs basic validation on a Config.
func (c *Config) Validate() error {
	if len(c.Meta.Name) > MaxNameLength {
		return &ValidationError{
			Field:   "meta.name",
			Message: fmt.Sprintf("name exceeds %d characters", MaxNameLength),
		}
	}
	if strings.ContainsAny(c.Meta.Name, "/\\") {
		return &ValidationError{
			Field:   "meta.name",
			Message: "name must not contain path separators",
		}
	}

	if c.Archive.Server != "" {
		parsed, err := url.Parse(c.Archive.Server)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return &ValidationError{
				Field:   "archive.server",
				Message: fmt.Sprintf("%q is not a valid http(s) URL", c.Archive.Server),
			}
		}
	}

	if c.Archive.ChunkSize < 0 {
		return &ValidationError{
			Field:   "archive.chunk_size",
			Message: "must not be negative",
		}
	}

	if c.History.Retention < 0 {
		return &ValidationError{
			Field:   "history.retention",
			Message: "must not be negative",
		}
	}

	return nil
}
