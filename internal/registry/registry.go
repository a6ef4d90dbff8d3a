// Package registry persists the mapping from environment names to
// working directories and remote bindings. The registry is loaded once
// per invocation and flushed explicitly; there is no ambient singleton.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"

	"github.com/akari-env/akari/internal/models"
)

var (
	ErrNotFound      = errors.New("environment not found")
	ErrDuplicateName = errors.New("environment name already registered")
	ErrAlreadyBound  = errors.New("environment already has a remote")
	ErrInvalidPath   = errors.New("working directory is not usable")
)

// Registry is a handle on the loaded registry file.
type Registry struct {
	path string
	envs map[string]*models.Environment
}

type registryFile struct {
	Environments map[string]*models.Environment `toml:"environments"`
}

// Load reads the registry at path. A missing file yields an empty
// registry; it is created on the first Flush.
func Load(path string) (*Registry, error) {
	reg := &Registry{path: path, envs: make(map[string]*models.Environment)}

	var file registryFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		if os.IsNotExist(err) {
			log.Debugf("no registry at %s, starting empty", path)
			return reg, nil
		}
		return nil, fmt.Errorf("failed to read registry %s: %w", path, err)
	}

	for name, env := range file.Environments {
		env.Name = name
		reg.envs[name] = env
	}
	return reg, nil
}

// Flush writes the registry back to disk. The write goes through a
// temp file and rename so a crash never leaves a truncated registry.
func (r *Registry) Flush() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".registry-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create registry temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	file := registryFile{Environments: r.envs}
	if err := toml.NewEncoder(tmp).Encode(file); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace registry %s: %w", r.path, err)
	}
	return nil
}

// Register records a new environment. The working directory must exist
// and be a directory.
func (r *Registry) Register(name, workingDirectory string) (*models.Environment, error) {
	if name == "" {
		return nil, fmt.Errorf("empty environment name: %w", ErrInvalidPath)
	}
	if _, ok := r.envs[name]; ok {
		return nil, fmt.Errorf("%s: %w", name, ErrDuplicateName)
	}

	info, err := os.Stat(workingDirectory)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", workingDirectory, ErrInvalidPath)
	}

	abs, err := filepath.Abs(workingDirectory)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", workingDirectory, ErrInvalidPath)
	}

	env := &models.Environment{
		Name:             name,
		WorkingDirectory: abs,
		CreatedAt:        time.Now().UTC(),
	}
	r.envs[name] = env
	log.Debugf("registered environment %s at %s", name, abs)
	return env, nil
}

// Lookup returns the environment registered under name.
func (r *Registry) Lookup(name string) (*models.Environment, error) {
	env, ok := r.envs[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return env, nil
}

// List returns all environments ordered by name.
func (r *Registry) List() []*models.Environment {
	names := make([]string, 0, len(r.envs))
	for name := range r.envs {
		names = append(names, name)
	}
	sort.Strings(names)

	envs := make([]*models.Environment, 0, len(names))
	for _, name := range names {
		envs = append(envs, r.envs[name])
	}
	return envs
}

// AttachRemote binds a remote URL to an environment. An environment has
// at most one remote; rebinding requires an explicit detach first.
func (r *Registry) AttachRemote(name, url string) error {
	env, err := r.Lookup(name)
	if err != nil {
		return err
	}
	if env.HasRemote() {
		return fmt.Errorf("%s is bound to %s: %w", name, env.RemoteURL, ErrAlreadyBound)
	}
	env.RemoteURL = url
	return nil
}

// DetachRemote removes the remote binding from an environment.
func (r *Registry) DetachRemote(name string) error {
	env, err := r.Lookup(name)
	if err != nil {
		return err
	}
	env.RemoteURL = ""
	return nil
}

// Remove unregisters an environment. The working directory is left in
// place; callers decide whether to delete it.
func (r *Registry) Remove(name string) error {
	if _, ok := r.envs[name]; !ok {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	delete(r.envs, name)
	return nil
}
