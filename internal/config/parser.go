package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/heavyprofile/hprofile/internal/platform"
	lua "github.com/yuin/gopher-lua"
)

// Parser represents a Lua config parser with platform detection.
type Parser struct {
	detector platform.Detector
}

// NewParser creates a new config parser. detector may be nil when platform
// conditionals are not needed (e.g. server-side tooling).
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector}
}

// ParseFile parses a Lua config from a file path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return p.ParseString(ctx, string(content))
}

// ParseString parses a Lua config from a string.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Config, error) {
	L := newSandboxedVM()
	defer L.Close()

	if p.detector != nil {
		platformInfo, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, platformInfo); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractConfig(L)
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractConfig extracts the config from a Lua state.
// It expects a global "hprofile" table with the config structure.
func extractConfig(L *lua.LState) (*Config, error) {
	root := L.GetGlobal(luaGlobalHProfile)
	if root.Type() != lua.LTTable {
		return nil, &ParseError{
			Message: "missing or invalid 'hprofile' table",
			Detail:  fmt.Sprintf("expected table, got %s", root.Type()),
		}
	}

	config := Default()
	table := root.(*lua.LTable)

	if metaVal := table.RawGetString(luaFieldMeta); metaVal.Type() == lua.LTTable {
		config.Meta = extractMeta(metaVal.(*lua.LTable))
	}

	if archiveVal := table.RawGetString(luaFieldArchive); archiveVal.Type() == lua.LTTable {
		config.Archive = extractArchive(archiveVal.(*lua.LTable))
	}

	if signingVal := table.RawGetString(luaFieldSigning); signingVal.Type() == lua.LTTable {
		config.Signing = extractSigning(signingVal.(*lua.LTable))
	}

	if historyVal := table.RawGetString(luaFieldHistory); historyVal.Type() == lua.LTTable {
		config.History = extractHistory(historyVal.(*lua.LTable))
	}

	if err := config.Validate(); err != nil {
		return nil, &ParseError{
			Message: "config validation failed",
			Detail:  err.Error(),
		}
	}

	return config, nil
}

func extractMeta(table *lua.LTable) Meta {
	meta := Meta{}

	if nameVal := table.RawGetString(luaFieldName); nameVal.Type() == lua.LTString {
		meta.Name = nameVal.String()
	}
	if descVal := table.RawGetString(luaFieldDesc); descVal.Type() == lua.LTString {
		meta.Description = descVal.String()
	}

	return meta
}

func extractArchive(table *lua.LTable) ArchiveConfig {
	// Verify defaults on; configs opt out explicitly.
	archive := ArchiveConfig{Verify: true}

	if serverVal := table.RawGetString(luaFieldServer); serverVal.Type() == lua.LTString {
		archive.Server = serverVal.String()
	}
	if chunkVal := table.RawGetString(luaFieldChunkSize); chunkVal.Type() == lua.LTNumber {
		archive.ChunkSize = int(lua.LVAsNumber(chunkVal))
	}
	if verifyVal := table.RawGetString(luaFieldVerify); verifyVal.Type() == lua.LTBool {
		archive.Verify = bool(verifyVal.(lua.LBool))
	}

	return archive
}

func extractSigning(table *lua.LTable) SigningConfig {
	signing := SigningConfig{}

	if keyVal := table.RawGetString(luaFieldKey); keyVal.Type() == lua.LTString {
		signing.Key = keyVal.String()
	}
	if envVal := table.RawGetString(luaFieldPassphraseEnv); envVal.Type() == lua.LTString {
		signing.PassphraseEnv = envVal.String()
	}

	return signing
}

func extractHistory(table *lua.LTable) HistoryConfig {
	history := HistoryConfig{}

	if enabledVal := table.RawGetString(luaFieldEnabled); enabledVal.Type() == lua.LTBool {
		history.Enabled = bool(enabledVal.(lua.LBool))
	}
	if retentionVal := table.RawGetString(luaFieldRetention); retentionVal.Type() == lua.LTNumber {
		history.Retention = int(lua.LVAsNumber(retentionVal))
	}

	return history
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	if parseErr, ok := err.(*ParseError); ok {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
