// Package history records profile generations in a git repository rooted at
// the profile directory. Each successful update cycle becomes one commit
// carrying the state files of that generation, so any previous generation can
// be inspected or restored with ordinary git tooling.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/google/uuid"
)

// Common history errors
var (
	ErrNotInitialized = errors.New("profile history not initialized")
	ErrEmptySummary   = errors.New("generation summary cannot be empty")
	ErrNoFiles        = errors.New("no files specified to record")
	ErrInitFailed     = errors.New("history initialization failed")
	ErrInvalidHistory = errors.New("invalid history repository")
)

// Generation describes one recorded update cycle. ID is assigned by Record
// when left empty.
type Generation struct {
	ID      string
	Summary string
	Files   []string
}

// Entry is a recorded generation as read back from the history.
type Entry struct {
	Hash    string
	Summary string
	When    time.Time
}

// Recorder is the interface for generation history operations.
type Recorder interface {
	Init(ctx context.Context, author Author) error
	Record(ctx context.Context, gen Generation) (string, error)
	Head(ctx context.Context) (string, error)
	Entries(ctx context.Context, limit int) ([]Entry, error)
	Initialized(ctx context.Context) (bool, error)
	Prune(ctx context.Context, keep int) (int, error)
}

// Log implements Recorder on top of go-git.
type Log struct {
	dir string // profile directory, doubles as the repository root
}

// NewLog creates a history log for the given profile directory.
func NewLog(profileDir string) *Log {
	return &Log{dir: profileDir}
}

// Init initializes the history repository, configures the commit author in
// repository-local config, and writes the profile .gitignore. Global git
// config is never touched.
func (l *Log) Init(ctx context.Context, author Author) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	repo, err := gogit.PlainInit(l.dir, false)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInitFailed, err.Error())
	}

	cfg, err := repo.Config()
	if err != nil {
		return fmt.Errorf("read repo config: %w", err)
	}
	cfg.User.Name = author.Name
	cfg.User.Email = author.Email
	if err := repo.Storer.SetConfig(cfg); err != nil {
		return fmt.Errorf("write repo config: %w", err)
	}

	if err := writeGitignore(l.dir); err != nil {
		return err
	}

	return nil
}

// Initialized reports whether the profile directory holds a history
// repository. Returns (false, nil) when none exists and an error only when
// the repository is present but unreadable.
func (l *Log) Initialized(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context cancelled: %w", err)
	}

	_, err := gogit.PlainOpen(l.dir)
	if err == gogit.ErrRepositoryNotExists {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrInvalidHistory, err.Error())
	}
	return true, nil
}

// Record stages the generation's files and commits them. The commit subject
// is "generation <id>" and the body carries the summary. It returns the
// commit hash of the new generation.
func (l *Log) Record(ctx context.Context, gen Generation) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context cancelled: %w", err)
	}

	if gen.Summary == "" {
		return "", ErrEmptySummary
	}
	if len(gen.Files) == 0 {
		return "", ErrNoFiles
	}
	if gen.ID == "" {
		gen.ID = uuid.NewString()
	}

	repo, err := gogit.PlainOpen(l.dir)
	if err != nil {
		if err == gogit.ErrRepositoryNotExists {
			return "", ErrNotInitialized
		}
		return "", fmt.Errorf("open history: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("get worktree: %w", err)
	}

	for _, file := range gen.Files {
		if _, err := worktree.Add(file); err != nil {
			return "", fmt.Errorf("stage file %s: %w", file, err)
		}
	}

	cfg, err := repo.Config()
	if err != nil {
		return "", fmt.Errorf("read repo config: %w", err)
	}

	msg := fmt.Sprintf("generation %s\n\n%s", gen.ID, gen.Summary)
	hash, err := worktree.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  cfg.User.Name,
			Email: cfg.User.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("record generation: %w", err)
	}

	return hash.String(), nil
}

// Head returns the commit hash of the latest recorded generation.
func (l *Log) Head(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context cancelled: %w", err)
	}

	repo, err := gogit.PlainOpen(l.dir)
	if err != nil {
		if err == gogit.ErrRepositoryNotExists {
			return "", ErrNotInitialized
		}
		return "", fmt.Errorf("open history: %w", err)
	}

	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("get HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}

// Entries walks the history from HEAD and returns up to limit recorded
// generations, newest first. A limit of 0 or less returns all of them.
func (l *Log) Entries(ctx context.Context, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	repo, err := gogit.PlainOpen(l.dir)
	if err != nil {
		if err == gogit.ErrRepositoryNotExists {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("open history: %w", err)
	}

	iter, err := repo.Log(&gogit.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	var entries []Entry
	err = iter.ForEach(func(commit *object.Commit) error {
		entries = append(entries, Entry{
			Hash:    commit.Hash.String(),
			Summary: commit.Message,
			When:    commit.Author.When,
		})
		if limit > 0 && len(entries) >= limit {
			return errStopIteration
		}
		return nil
	})
	if err != nil && err != errStopIteration {
		return nil, fmt.Errorf("walk log: %w", err)
	}

	return entries, nil
}

// Prune rewrites the history so that only the newest keep generations remain,
// dropping the oldest ones. A keep of 0 or less keeps everything. It returns
// the number of generations dropped.
//
// Kept commits retain their tree, author, timestamp, and message, but their
// hashes change because the oldest kept commit loses its parent. The worktree
// is untouched: the branch moves to a commit with the same tree HEAD had.
func (l *Log) Prune(ctx context.Context, keep int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context cancelled: %w", err)
	}
	if keep <= 0 {
		return 0, nil
	}

	repo, err := gogit.PlainOpen(l.dir)
	if err != nil {
		if err == gogit.ErrRepositoryNotExists {
			return 0, ErrNotInitialized
		}
		return 0, fmt.Errorf("open history: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return 0, fmt.Errorf("get HEAD: %w", err)
	}

	iter, err := repo.Log(&gogit.LogOptions{})
	if err != nil {
		return 0, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	var commits []*object.Commit
	if err := iter.ForEach(func(commit *object.Commit) error {
		commits = append(commits, commit)
		return nil
	}); err != nil {
		return 0, fmt.Errorf("walk log: %w", err)
	}

	if len(commits) <= keep {
		return 0, nil
	}

	// Rebuild the kept chain oldest first, rooting it at the oldest kept
	// commit. Tree hashes are reused, so file content is shared with the
	// old commits until gc.
	kept := commits[:keep]
	var parents []plumbing.Hash
	var newHead plumbing.Hash
	for i := len(kept) - 1; i >= 0; i-- {
		old := kept[i]
		rewritten := &object.Commit{
			Author:       old.Author,
			Committer:    old.Committer,
			Message:      old.Message,
			TreeHash:     old.TreeHash,
			ParentHashes: parents,
		}

		obj := repo.Storer.NewEncodedObject()
		if err := rewritten.Encode(obj); err != nil {
			return 0, fmt.Errorf("encode commit: %w", err)
		}
		newHead, err = repo.Storer.SetEncodedObject(obj)
		if err != nil {
			return 0, fmt.Errorf("store commit: %w", err)
		}
		parents = []plumbing.Hash{newHead}
	}

	if err := repo.Storer.SetReference(plumbing.NewHashReference(head.Name(), newHead)); err != nil {
		return 0, fmt.Errorf("move branch: %w", err)
	}

	return len(commits) - keep, nil
}

var errStopIteration = errors.New("stop iteration")
