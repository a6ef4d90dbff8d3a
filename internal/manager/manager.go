// Package manager is the orchestration surface the CLI calls. It
// validates environment existence against the registry, serializes
// mutating operations with the advisory lock, and delegates to the
// snapshot backend, resolver, and synchronizer.
package manager

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/akari-env/akari/internal/git"
	"github.com/akari-env/akari/internal/lockfile"
	"github.com/akari-env/akari/internal/models"
	"github.com/akari-env/akari/internal/registry"
	"github.com/akari-env/akari/internal/remote"
	"github.com/akari-env/akari/internal/resolve"
	"github.com/akari-env/akari/internal/snapshot"
)

// Manager composes the engine components behind one API.
type Manager struct {
	Registry  *registry.Registry
	UserName  string
	UserEmail string
}

// New builds a manager over a loaded registry handle.
func New(reg *registry.Registry, userName, userEmail string) *Manager {
	return &Manager{Registry: reg, UserName: userName, UserEmail: userEmail}
}

// Init registers a new environment. With a source URL the working
// directory is cloned from the remote and the remote stays bound;
// otherwise an empty tracked directory is created.
func (m *Manager) Init(name, workingDirectory, sourceURL string) (*models.Environment, error) {
	if _, err := m.Registry.Lookup(name); err == nil {
		return nil, fmt.Errorf("%s: %w", name, registry.ErrDuplicateName)
	}

	if sourceURL != "" {
		if _, err := os.Stat(workingDirectory); err == nil {
			return nil, fmt.Errorf("%s already exists: %w", workingDirectory, registry.ErrInvalidPath)
		}
		if err := cloneSource(sourceURL, workingDirectory); err != nil {
			return nil, err
		}
	} else if err := os.MkdirAll(workingDirectory, 0755); err != nil {
		return nil, fmt.Errorf("%s: %w", workingDirectory, registry.ErrInvalidPath)
	}

	env, err := m.Registry.Register(name, workingDirectory)
	if err != nil {
		return nil, err
	}

	if err := snapshot.EnsureTracked(env.WorkingDirectory, m.UserName, m.UserEmail); err != nil {
		return nil, err
	}

	if sourceURL != "" {
		if err := m.Registry.AttachRemote(name, sourceURL); err != nil {
			return nil, err
		}
	}

	if err := m.Registry.Flush(); err != nil {
		return nil, err
	}
	log.Infof("initialized environment %s at %s", name, env.WorkingDirectory)
	return env, nil
}

// Tag creates an immutable snapshot of the environment's current state.
func (m *Manager) Tag(envName, tagName, description string) (models.Snapshot, error) {
	env, err := m.Registry.Lookup(envName)
	if err != nil {
		return models.Snapshot{}, err
	}

	lock, err := lockfile.Acquire(env.WorkingDirectory, snapshot.LockFileName)
	if err != nil {
		return models.Snapshot{}, err
	}
	defer lock.Release()

	if err := snapshot.EnsureTracked(env.WorkingDirectory, m.UserName, m.UserEmail); err != nil {
		return models.Snapshot{}, err
	}
	return snapshot.Create(env.WorkingDirectory, tagName, description)
}

// List returns the environment's snapshots.
func (m *Manager) List(envName string) ([]models.Snapshot, error) {
	env, err := m.Registry.Lookup(envName)
	if err != nil {
		return nil, err
	}
	return snapshot.List(env.WorkingDirectory)
}

// Checkout restores the environment's working directory to the state of
// ref, which is a tag name or the reserved name "latest". Destroys any
// untagged local changes.
func (m *Manager) Checkout(envName, ref string) (string, error) {
	env, err := m.Registry.Lookup(envName)
	if err != nil {
		return "", err
	}

	lock, err := lockfile.Acquire(env.WorkingDirectory, snapshot.LockFileName)
	if err != nil {
		return "", err
	}
	defer lock.Release()

	commit, err := resolve.Ref(env.WorkingDirectory, ref)
	if err != nil {
		return "", err
	}
	if err := snapshot.Checkout(env.WorkingDirectory, commit); err != nil {
		return "", err
	}
	return commit, nil
}

// HasUntaggedChanges reports whether the working directory differs from
// the current history head. The CLI uses this to warn before a
// destructive checkout.
func (m *Manager) HasUntaggedChanges(envName string) (bool, error) {
	env, err := m.Registry.Lookup(envName)
	if err != nil {
		return false, err
	}
	if err := snapshot.EnsureTracked(env.WorkingDirectory, m.UserName, m.UserEmail); err != nil {
		return false, err
	}
	return git.HasUncommittedChanges(env.WorkingDirectory)
}

// Push transmits a tag to the environment's bound remote.
func (m *Manager) Push(envName, tagName string) error {
	env, err := m.Registry.Lookup(envName)
	if err != nil {
		return err
	}
	return remote.Push(env, tagName)
}

// Pull reconciles the environment's history with its bound remote.
func (m *Manager) Pull(envName string) error {
	env, err := m.Registry.Lookup(envName)
	if err != nil {
		return err
	}

	lock, err := lockfile.Acquire(env.WorkingDirectory, snapshot.LockFileName)
	if err != nil {
		return err
	}
	defer lock.Release()

	return remote.Pull(env)
}

// Envs lists all registered environments, name-ordered.
func (m *Manager) Envs() []*models.Environment {
	return m.Registry.List()
}

// Remove unregisters an environment and, unless keepDir is set, deletes
// its working directory.
func (m *Manager) Remove(name string, keepDir bool) error {
	env, err := m.Registry.Lookup(name)
	if err != nil {
		return err
	}
	if err := m.Registry.Remove(name); err != nil {
		return err
	}
	if err := m.Registry.Flush(); err != nil {
		return err
	}
	if !keepDir {
		if err := os.RemoveAll(env.WorkingDirectory); err != nil {
			return fmt.Errorf("failed to remove %s: %w", env.WorkingDirectory, err)
		}
	}
	return nil
}

// DefaultEnv resolves which environment a command targets: an explicit
// name wins, then AKARI_ENV from an activated shell, then the
// registered environment whose working directory contains the cwd.
func (m *Manager) DefaultEnv(explicit string) (string, error) {
	if explicit != "" {
		if _, err := m.Registry.Lookup(explicit); err != nil {
			return "", err
		}
		return explicit, nil
	}
	if name := os.Getenv("AKARI_ENV"); name != "" {
		if _, err := m.Registry.Lookup(name); err != nil {
			return "", err
		}
		return name, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("no environment selected: %w", registry.ErrNotFound)
	}
	for _, env := range m.Registry.List() {
		if cwd == env.WorkingDirectory ||
			strings.HasPrefix(cwd, env.WorkingDirectory+string(filepath.Separator)) {
			return env.Name, nil
		}
	}
	return "", fmt.Errorf("no environment selected (use --env or activate one): %w", registry.ErrNotFound)
}

// cloneSource clones a remote history into the working directory,
// cleaning up the partial clone on failure.
func cloneSource(url, dir string) error {
	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return fmt.Errorf("%s: %w", dir, registry.ErrInvalidPath)
	}
	if err := remote.CloneInto(url, dir); err != nil {
		os.RemoveAll(dir)
		return err
	}
	return nil
}
