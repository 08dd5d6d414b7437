package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/heavyprofile/hprofile/internal/archive"
	"github.com/heavyprofile/hprofile/internal/nightly"
	"github.com/heavyprofile/hprofile/internal/platform"
)

// runNightly handles the `hprofile nightly` subcommand.
func runNightly(args []string) error {
	var (
		baseURL    string
		target     string
		extractDir string
		timeout    = 30 * time.Minute
	)

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--help", "-h":
			printNightlyHelp()
			return nil
		case "--base-url":
			i++
			if i >= len(args) {
				return fmt.Errorf("--base-url requires a URL")
			}
			baseURL = args[i]
		case "--target", "-o":
			i++
			if i >= len(args) {
				return fmt.Errorf("--target requires a path")
			}
			target = args[i]
		case "--extract", "-x":
			i++
			if i >= len(args) {
				return fmt.Errorf("--extract requires a directory")
			}
			extractDir = args[i]
		case "--timeout":
			i++
			if i >= len(args) {
				return fmt.Errorf("--timeout requires a duration")
			}
			d, err := time.ParseDuration(args[i])
			if err != nil {
				return fmt.Errorf("invalid timeout %q: %w", args[i], err)
			}
			timeout = d
		default:
			return fmt.Errorf("unknown argument %q", args[i])
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	info, err := platform.NewDetector().Detect(ctx)
	if err != nil {
		return fmt.Errorf("detect platform: %w", err)
	}

	resolver := nightly.New(nightly.Config{BaseURL: baseURL})
	link, err := resolver.DownloadLink(ctx, info)
	if err != nil {
		return fmt.Errorf("resolve nightly link: %w", err)
	}

	if target == "" {
		derived, err := archive.TargetFromURL(link)
		if err != nil {
			return fmt.Errorf("derive target from %s: %w", link, err)
		}
		if cacheDir := os.Getenv("HPROFILE_CACHE_DIR"); cacheDir != "" {
			derived = filepath.Join(cacheDir, derived)
		}
		target = derived
	}

	fetcher := archive.New(archive.Config{
		Sink:    newLogSink(log),
		Timeout: timeout,
	})

	// Nightly builds publish no .sha256 companion, so checksum
	// verification is off for them.
	path, err := fetcher.Fetch(ctx, link, archive.FetchOptions{
		Target:         target,
		VerifyChecksum: false,
	})
	if err != nil {
		return err
	}

	if extractDir != "" {
		log.Info().Str("dir", extractDir).Msg("Unpacking nightly build")
		if err := archive.Extract(path, extractDir); err != nil {
			return err
		}
	}

	log.Info().Str("path", path).Msg("Nightly build downloaded")
	return nil
}

func printNightlyHelp() {
	fmt.Println("Usage: hprofile nightly [options]")
	fmt.Println()
	fmt.Println("Resolve and download the latest Firefox nightly build for this")
	fmt.Println("platform. Nightly archives carry no checksum companion, so no")
	fmt.Println("verification is performed.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h, --help          Show this help message")
	fmt.Println("  --base-url <url>    Mirror base URL (default: https://ftp.mozilla.org)")
	fmt.Println("  -o, --target <path> Destination path (default: archive file name,")
	fmt.Println("                      placed in $HPROFILE_CACHE_DIR when set)")
	fmt.Println("  -x, --extract <dir> Unpack the downloaded build into <dir>")
	fmt.Println("  --timeout <dur>     Overall timeout (default: 30m)")
}
