package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/heavyprofile/hprofile/internal/history"
	"github.com/heavyprofile/hprofile/internal/lock"
	"github.com/heavyprofile/hprofile/internal/profile"
)

// runUpdate handles the `hprofile update` subcommand.
func runUpdate(args []string) error {
	dir := "."
	for _, arg := range args {
		switch arg {
		case "--help", "-h":
			printUpdateHelp()
			return nil
		default:
			dir = arg
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Refuse to update a directory that was never stamped as a profile.
	marker, err := profile.ReadMarker(dir)
	if err != nil {
		return fmt.Errorf("%s is not an hprofile workspace: %w", dir, err)
	}

	cfg, err := loadConfig(ctx, dir)
	if err != nil {
		return err
	}

	state := profile.NewState(dir)
	l, err := lock.Acquire(filepath.Join(dir, profile.StateDirName), "update")
	if err != nil {
		return err
	}
	defer l.Release()

	log.Info().Str("profile", marker.Name).Msg("Scanning profile")
	current, err := profile.Scan(dir)
	if err != nil {
		return fmt.Errorf("scan profile: %w", err)
	}

	previous, err := state.LoadSnapshot()
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	cs, err := state.ReadChangeLog()
	if err != nil {
		return fmt.Errorf("read change log: %w", err)
	}

	before := cs.Len()
	cs.Update(current, previous)
	fmt.Println(cs.String())

	if cs.Len() == before {
		log.Info().Msg("No changes since last update")
		return nil
	}

	if err := state.SaveSnapshot(current); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err := state.WriteChangeLog(cs); err != nil {
		return fmt.Errorf("write change log: %w", err)
	}

	if cfg.History.Enabled {
		repo := history.NewLog(dir)
		initialized, err := repo.Initialized(ctx)
		if err != nil {
			return err
		}
		if !initialized {
			if err := repo.Init(ctx, history.DetectAuthor()); err != nil {
				return fmt.Errorf("init history: %w", err)
			}
		}

		snapshotRel, err := filepath.Rel(dir, state.SnapshotPath())
		if err != nil {
			return fmt.Errorf("resolve snapshot path: %w", err)
		}
		changesRel, err := filepath.Rel(dir, state.ChangeLogPath())
		if err != nil {
			return fmt.Errorf("resolve change log path: %w", err)
		}

		hash, err := repo.Record(ctx, history.Generation{
			Summary: cs.String(),
			Files:   []string{snapshotRel, changesRel},
		})
		if err != nil {
			return fmt.Errorf("record generation: %w", err)
		}
		log.Info().Str("generation", hash[:12]).Msg("Generation recorded")

		if cfg.History.Retention > 0 {
			dropped, err := repo.Prune(ctx, cfg.History.Retention)
			if err != nil {
				return fmt.Errorf("prune history: %w", err)
			}
			if dropped > 0 {
				log.Info().Int("dropped", dropped).Msg("Old generations pruned")
			}
		}
	}

	return nil
}

func printUpdateHelp() {
	fmt.Println("Usage: hprofile update [profile-dir]")
	fmt.Println()
	fmt.Println("Scan the profile, compute what changed since the last recorded")
	fmt.Println("snapshot, and append the changes to the profile's change log. When")
	fmt.Println("history is enabled the new state is recorded as a generation.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h, --help  Show this help message")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  hprofile update              Update the profile in the current directory")
	fmt.Println("  hprofile update ./profiles/simple")
}
