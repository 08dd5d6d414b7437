package main

import (
	"context"
	"fmt"
	"time"

	"github.com/heavyprofile/hprofile/internal/archive"
)

// runVerify handles the `hprofile verify` subcommand.
func runVerify(args []string) error {
	var keyPath string
	var positional []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--help", "-h":
			printVerifyHelp()
			return nil
		case "--key", "-k":
			i++
			if i >= len(args) {
				return fmt.Errorf("--key requires a path")
			}
			keyPath = args[i]
		default:
			positional = append(positional, args[i])
		}
	}

	if len(positional) != 1 {
		printVerifyHelp()
		return fmt.Errorf("verify requires exactly one file")
	}
	path := positional[0]

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := loadConfig(ctx, ".")
	if err != nil {
		return err
	}

	signer, err := newSigner(cfg, keyPath)
	if err != nil {
		return fmt.Errorf("load signing key: %w", err)
	}

	if err := archive.Verify(path, signer); err != nil {
		return err
	}

	log.Info().Str("path", path).Msg("Checksum and signature OK")
	return nil
}

func printVerifyHelp() {
	fmt.Println("Usage: hprofile verify [options] <file>")
	fmt.Println()
	fmt.Println("Verify a file against its .sha256 checksum companion and its detached")
	fmt.Println("signature (<file>.asc), which signs the checksum bytes.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h, --help        Show this help message")
	fmt.Println("  -k, --key <path>  Verification key (default: from config or bundled)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  hprofile verify simple-2024-01-15.tar.gz")
	fmt.Println("  hprofile verify --key ~/.hprofile/release.asc archive.tar.gz")
}
