package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/heavyprofile/hprofile/internal/history"
	"github.com/heavyprofile/hprofile/internal/profile"
)

// runHistory handles the `hprofile history` subcommand.
func runHistory(args []string) error {
	dir := "."
	limit := 20

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--help", "-h":
			printHistoryHelp()
			return nil
		case "--limit", "-l":
			i++
			if i >= len(args) {
				return fmt.Errorf("--limit requires a number")
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				return fmt.Errorf("invalid limit %q: %w", args[i], err)
			}
			limit = n
		default:
			dir = args[i]
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := profile.ReadMarker(dir); err != nil {
		return fmt.Errorf("%s is not an hprofile workspace: %w", dir, err)
	}

	entries, err := history.NewLog(dir).Entries(ctx, limit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No generations recorded.")
		return nil
	}

	for _, entry := range entries {
		subject, _, _ := strings.Cut(entry.Summary, "\n")
		fmt.Printf("%s  %s  %s\n",
			entry.Hash[:12],
			entry.When.Format("2006-01-02 15:04"),
			subject)
	}
	return nil
}

func printHistoryHelp() {
	fmt.Println("Usage: hprofile history [options] [profile-dir]")
	fmt.Println()
	fmt.Println("List recorded profile generations, newest first.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h, --help         Show this help message")
	fmt.Println("  -l, --limit <n>    Maximum generations to list (default: 20)")
}
