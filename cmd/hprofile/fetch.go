package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/heavyprofile/hprofile/internal/archive"
	"github.com/heavyprofile/hprofile/internal/lock"
)

// runFetch handles the `hprofile fetch` subcommand.
func runFetch(args []string) error {
	var (
		server     string
		target     string
		keyPath    string
		extractDir string
		noVerify   bool
		timeout    = archive.DefaultTimeout
	)
	var positional []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--help", "-h":
			printFetchHelp()
			return nil
		case "--server", "-s":
			i++
			if i >= len(args) {
				return fmt.Errorf("--server requires a URL")
			}
			server = args[i]
		case "--target", "-o":
			i++
			if i >= len(args) {
				return fmt.Errorf("--target requires a path")
			}
			target = args[i]
		case "--key", "-k":
			i++
			if i >= len(args) {
				return fmt.Errorf("--key requires a path")
			}
			keyPath = args[i]
		case "--extract", "-x":
			i++
			if i >= len(args) {
				return fmt.Errorf("--extract requires a directory")
			}
			extractDir = args[i]
		case "--no-verify":
			noVerify = true
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
			positional = append(positional, args[i])
		}
	}

	if len(positional) != 1 {
		printFetchHelp()
		return fmt.Errorf("fetch requires exactly one archive URL or name")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := loadConfig(ctx, ".")
	if err != nil {
		return err
	}
	if server == "" {
		server = cfg.Archive.Server
	}

	rawURL := positional[0]
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		if server == "" {
			return fmt.Errorf("%q is not a URL and no server is configured", rawURL)
		}
		rawURL = strings.TrimSuffix(server, "/") + "/" + rawURL
	}

	verify := cfg.Archive.Verify && !noVerify

	if target == "" {
		// Shared derivation so the lock covers the file the fetcher will
		// actually write.
		derived, err := archive.TargetFromURL(rawURL)
		if err != nil {
			return fmt.Errorf("derive target from %s: %w", rawURL, err)
		}
		if cacheDir := os.Getenv("HPROFILE_CACHE_DIR"); cacheDir != "" {
			derived = filepath.Join(cacheDir, derived)
		}
		target = derived
	}
	l, err := lock.Acquire(filepath.Dir(target), "fetch")
	if err != nil {
		return err
	}
	defer l.Release()

	fetcher := archive.New(archive.Config{
		Sink:      newLogSink(log),
		ChunkSize: cfg.Archive.ChunkSize,
		Timeout:   timeout,
	})

	path, err := fetcher.Fetch(ctx, rawURL, archive.FetchOptions{
		Target:         target,
		VerifyChecksum: verify,
	})
	if err != nil {
		return err
	}

	if verify {
		// Fetch retrieved and persisted the checksum companion; the
		// signature companion still has to come down before the trust
		// check can run against the local pair.
		if err := fetcher.FetchSignature(ctx, rawURL, path); err != nil {
			return err
		}
		signer, err := newSigner(cfg, keyPath)
		if err != nil {
			return fmt.Errorf("load signing key: %w", err)
		}
		if err := archive.Verify(path, signer); err != nil {
			return err
		}
	}

	if extractDir != "" {
		log.Info().Str("dir", extractDir).Msg("Extracting archive")
		if err := archive.Extract(path, extractDir); err != nil {
			return err
		}
	}

	log.Info().Str("path", path).Msg("Archive ready")
	return nil
}

func printFetchHelp() {
	fmt.Println("Usage: hprofile fetch [options] <url-or-name>")
	fmt.Println()
	fmt.Println("Download an archive, reusing an existing verified copy when present.")
	fmt.Println("A bare name is resolved against the configured archive server. After")
	fmt.Println("download the archive's checksum companion and detached signature are")
	fmt.Println("verified unless --no-verify is given.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h, --help          Show this help message")
	fmt.Println("  -s, --server <url>  Archive server base URL (default: from config)")
	fmt.Println("  -o, --target <path> Destination path (default: last URL segment,")
	fmt.Println("                      placed in $HPROFILE_CACHE_DIR when set)")
	fmt.Println("  -k, --key <path>    Verification key (default: from config or bundled)")
	fmt.Println("  -x, --extract <dir> Unpack the archive into <dir> after verification")
	fmt.Println("  --no-verify         Skip checksum and signature verification")
	fmt.Println("  --timeout <dur>     Overall timeout (default: 5m)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  hprofile fetch simple-2024-01-15.tar.gz")
	fmt.Println("  hprofile fetch https://archives.example.org/simple.tar.gz")
	fmt.Println("  hprofile fetch --no-verify --timeout 30m big-profile.tar.gz")
}
