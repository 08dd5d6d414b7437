package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/heavyprofile/hprofile/internal/history"
	"github.com/heavyprofile/hprofile/internal/profile"
)

// runNew handles the `hprofile new` subcommand.
func runNew(args []string) error {
	var (
		template string
		name     string
	)
	var positional []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--help", "-h":
			printNewHelp()
			return nil
		case "--template", "-t":
			i++
			if i >= len(args) {
				return fmt.Errorf("--template requires a directory")
			}
			template = args[i]
		case "--name", "-n":
			i++
			if i >= len(args) {
				return fmt.Errorf("--name requires a value")
			}
			name = args[i]
		default:
			positional = append(positional, args[i])
		}
	}

	if len(positional) != 1 {
		printNewHelp()
		return fmt.Errorf("new requires exactly one target directory")
	}
	if template == "" {
		return fmt.Errorf("new requires --template")
	}
	target := positional[0]

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := loadConfig(ctx, template)
	if err != nil {
		return err
	}
	if name == "" {
		name = cfg.Meta.Name
	}

	log.Info().Str("template", template).Str("name", name).Msg("Creating fresh profile")
	marker, err := profile.Fresh(template, target, name)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	// A baseline snapshot makes the first update diff meaningful.
	snapshot, err := profile.Scan(target)
	if err != nil {
		return fmt.Errorf("scan profile: %w", err)
	}
	state := profile.NewState(target)
	if err := state.SaveSnapshot(snapshot); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	if cfg.History.Enabled {
		repo := history.NewLog(target)
		if err := repo.Init(ctx, history.DetectAuthor()); err != nil {
			return fmt.Errorf("init history: %w", err)
		}
		snapshotRel, err := filepath.Rel(target, state.SnapshotPath())
		if err != nil {
			return fmt.Errorf("resolve snapshot path: %w", err)
		}
		_, err = repo.Record(ctx, history.Generation{
			ID:      marker.ID,
			Summary: fmt.Sprintf("fresh profile %q from %s", name, template),
			Files:   []string{profile.MarkerName, snapshotRel},
		})
		if err != nil {
			return fmt.Errorf("record initial generation: %w", err)
		}
	}

	log.Info().Str("id", marker.ID).Str("dir", target).Msg("Profile ready")
	return nil
}

func printNewHelp() {
	fmt.Println("Usage: hprofile new [options] <target-dir>")
	fmt.Println()
	fmt.Println("Create a fresh profile directory from a template. The new profile is")
	fmt.Println("stamped with a marker file and, unless disabled in the template's")
	fmt.Println("hprofile.lua, starts a generation history.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h, --help            Show this help message")
	fmt.Println("  -t, --template <dir>  Template directory to copy (required)")
	fmt.Println("  -n, --name <name>     Profile name (default: from config)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  hprofile new --template ./templates/simple ./work/profile-1")
	fmt.Println("  hprofile new -t ./templates/heavy -n heavy ./work/profile-2")
}
