package history

import (
	"os"
)

// Author is the commit identity used for recorded generations.
type Author struct {
	Name      string
	Email     string
	FromEnv   bool
	IsDefault bool
}

// DetectAuthor resolves the commit identity from environment variables.
// It implements a three-tier fallback:
// 1. hprofile-specific variables (HPROFILE_GIT_NAME, HPROFILE_GIT_EMAIL)
// 2. Standard git variables (GIT_AUTHOR_NAME, GIT_AUTHOR_EMAIL)
// 3. Placeholder values (hprofile, hprofile@localhost)
//
// Global git config is never consulted so profile history stays isolated
// from the user's own repositories.
func DetectAuthor() Author {
	if name := os.Getenv("HPROFILE_GIT_NAME"); name != "" {
		email := os.Getenv("HPROFILE_GIT_EMAIL")
		if email == "" {
			email = "hprofile@localhost"
		}
		return Author{Name: name, Email: email, FromEnv: true}
	}

	if name := os.Getenv("GIT_AUTHOR_NAME"); name != "" {
		email := os.Getenv("GIT_AUTHOR_EMAIL")
		if email == "" {
			email = "git@localhost"
		}
		return Author{Name: name, Email: email, FromEnv: true}
	}

	return Author{
		Name:      "hprofile",
		Email:     "hprofile@localhost",
		IsDefault: true,
	}
}
