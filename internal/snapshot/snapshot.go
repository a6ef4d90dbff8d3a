// Package snapshot turns a plain working directory into a tracked,
// taggable history. Tags are write-once: the backend commits the full
// directory state first and labels it second, so an interrupted
// snapshot never leaves a partial tag behind.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/akari-env/akari/internal/git"
	"github.com/akari-env/akari/internal/models"
)

var (
	ErrTagAlreadyExists      = errors.New("tag already exists")
	ErrUnknownReference      = errors.New("unknown history reference")
	ErrDirtyStateUnsupported = errors.New("directory state cannot be captured")
)

// LockFileName is the advisory lock kept beside the history metadata.
// Checkout must never wipe it while the lock is held.
const LockFileName = ".akari.lock"

// EnsureTracked initializes history for the working directory if none
// exists. Idempotent; an already-tracked directory is left untouched.
func EnsureTracked(dir, userName, userEmail string) error {
	if !git.IsRepo(dir) {
		if err := git.Init(dir); err != nil {
			return err
		}
		log.Debugf("initialized history in %s", dir)
	}

	// Snapshot commits need an identity even on machines with no
	// global git config.
	if err := git.SetConfig(dir, "user.name", userName); err != nil {
		return err
	}
	if err := git.SetConfig(dir, "user.email", userEmail); err != nil {
		return err
	}

	if err := excludeLockFile(dir); err != nil {
		return err
	}

	if !git.HasCommits(dir) {
		if err := git.AddAll(dir); err != nil {
			return fmt.Errorf("%w: %w", ErrDirtyStateUnsupported, err)
		}
		if err := git.Commit(dir, "akari: initial state"); err != nil {
			return err
		}
	}
	return nil
}

// excludeLockFile keeps the advisory lock out of captured state via the
// repository-local exclude file.
func excludeLockFile(dir string) error {
	excludePath := filepath.Join(dir, ".git", "info", "exclude")
	data, err := os.ReadFile(excludePath)
	if err == nil && strings.Contains(string(data), LockFileName) {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(excludePath), 0755); err != nil {
		return fmt.Errorf("failed to prepare exclude file: %w", err)
	}
	file, err := os.OpenFile(excludePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open exclude file: %w", err)
	}
	defer file.Close()

	if _, err := fmt.Fprintf(file, "%s\n", LockFileName); err != nil {
		return fmt.Errorf("failed to write exclude file: %w", err)
	}
	return nil
}

// Create captures the full current state of the directory, including
// untracked files, as a new history entry parented on the current head,
// then labels it with the tag name.
func Create(dir, tagName, description string) (models.Snapshot, error) {
	if git.TagExists(dir, tagName) {
		return models.Snapshot{}, fmt.Errorf("%s: %w", tagName, ErrTagAlreadyExists)
	}

	if err := git.AddAll(dir); err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %w", ErrDirtyStateUnsupported, err)
	}
	if err := git.Commit(dir, fmt.Sprintf("akari snapshot: %s", tagName)); err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %w", ErrDirtyStateUnsupported, err)
	}
	if err := git.CreateTag(dir, tagName, description); err != nil {
		return models.Snapshot{}, err
	}

	head, err := git.Head(dir)
	if err != nil {
		return models.Snapshot{}, err
	}

	log.Debugf("created snapshot %s at %s in %s", tagName, head, dir)
	return models.Snapshot{Name: tagName, Ref: head, Description: description}, nil
}

// List returns every snapshot in the history, in no particular order.
// Ordering is the resolver's business.
func List(dir string) ([]models.Snapshot, error) {
	tags, err := git.ListTags(dir)
	if err != nil {
		return nil, err
	}

	snapshots := make([]models.Snapshot, 0, len(tags))
	for _, tag := range tags {
		snapshots = append(snapshots, models.Snapshot{
			Name:        tag.Name,
			Ref:         tag.Commit,
			Description: tag.Message,
		})
	}
	return snapshots, nil
}

// Checkout replaces the working directory's contents with exactly the
// referenced snapshot's recorded state. Destructive to untagged local
// changes; callers are responsible for warning the user first.
func Checkout(dir, ref string) error {
	commit, err := git.ResolveCommit(dir, ref)
	if err != nil {
		return fmt.Errorf("%s: %w", ref, ErrUnknownReference)
	}

	if err := git.CheckoutDetach(dir, commit); err != nil {
		return err
	}
	return git.CleanUntracked(dir, LockFileName)
}

// Head returns the current tip of the history.
func Head(dir string) (string, error) {
	return git.Head(dir)
}
