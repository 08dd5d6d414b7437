package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Version will be set at build time via -ldflags
var Version = "v0.1.0"

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

func main() {
	// Handle subcommands
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version":
			fmt.Printf("hprofile %s\n", Version)
			fmt.Println("Reproducible browser profile workspaces")
			return
		case "new":
			exit(runNew(os.Args[2:]))
			return
		case "fetch":
			exit(runFetch(os.Args[2:]))
			return
		case "verify":
			exit(runVerify(os.Args[2:]))
			return
		case "update":
			exit(runUpdate(os.Args[2:]))
			return
		case "nightly":
			exit(runNightly(os.Args[2:]))
			return
		case "history":
			exit(runHistory(os.Args[2:]))
			return
		}
	}

	// Default: show help
	fmt.Println("hprofile - reproducible browser profile workspaces")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  hprofile --version            Show version information")
	fmt.Println("  hprofile new [options] <dir>  Create a fresh profile from a template")
	fmt.Println("  hprofile fetch [options] <archive>  Download and verify an archive")
	fmt.Println("  hprofile verify [options] <file>    Verify a file's checksum and signature")
	fmt.Println("  hprofile update [dir]         Record profile changes since the last update")
	fmt.Println("  hprofile nightly [options]    Download the latest Firefox nightly")
	fmt.Println("  hprofile history [dir]        List recorded profile generations")
	fmt.Println()
	fmt.Println("Run any subcommand with --help for details.")
}

func exit(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
