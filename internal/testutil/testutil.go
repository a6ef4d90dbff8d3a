// Package testutil provides fixtures for exercising akari against real
// git histories in temp directories.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akari-env/akari/internal/manager"
	"github.com/akari-env/akari/internal/models"
	"github.com/akari-env/akari/internal/registry"
)

const (
	TestUserName  = "akari-test"
	TestUserEmail = "akari-test@example.com"
)

// Fixture is a registry plus manager rooted in a temp directory.
type Fixture struct {
	T        *testing.T
	Root     string
	Registry *registry.Registry
	Manager  *manager.Manager
}

// NewFixture builds an empty registry and manager under t.TempDir().
func NewFixture(t *testing.T) *Fixture {
	t.Helper()

	root := t.TempDir()
	reg, err := registry.Load(filepath.Join(root, "registry.toml"))
	require.NoError(t, err)

	return &Fixture{
		T:        t,
		Root:     root,
		Registry: reg,
		Manager:  manager.New(reg, TestUserName, TestUserEmail),
	}
}

// InitEnv initializes an empty environment under the fixture root.
func (f *Fixture) InitEnv(name string) *models.Environment {
	f.T.Helper()

	env, err := f.Manager.Init(name, filepath.Join(f.Root, "envs", name), "")
	require.NoError(f.T, err)
	return env
}

// WriteFile writes a file inside an environment's working directory.
func (f *Fixture) WriteFile(env *models.Environment, name, content string) {
	f.T.Helper()

	path := filepath.Join(env.WorkingDirectory, name)
	require.NoError(f.T, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(f.T, os.WriteFile(path, []byte(content), 0644))
}

// ReadFile reads a file from an environment's working directory.
func (f *Fixture) ReadFile(env *models.Environment, name string) string {
	f.T.Helper()

	data, err := os.ReadFile(filepath.Join(env.WorkingDirectory, name))
	require.NoError(f.T, err)
	return string(data)
}

// FileExists reports whether a file exists in the working directory.
func (f *Fixture) FileExists(env *models.Environment, name string) bool {
	f.T.Helper()

	_, err := os.Stat(filepath.Join(env.WorkingDirectory, name))
	return err == nil
}

// BareRemote creates a bare repository usable as an ssh-free stand-in
// for a remote store.
func BareRemote(t *testing.T) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "remote.git")
	cmd := exec.Command("git", "init", "-q", "--bare", "-b", "main", dir)
	require.NoError(t, cmd.Run())
	return dir
}

// InitRepo turns dir into a git repository with a test identity and an
// initial commit, for tests below the manager layer.
func InitRepo(t *testing.T, dir string) {
	t.Helper()

	commands := [][]string{
		{"init", "-q", "-b", "main"},
		{"config", "user.name", TestUserName},
		{"config", "user.email", TestUserEmail},
	}
	for _, args := range commands {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		require.NoError(t, cmd.Run())
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# test\n"), 0644))
	Git(t, dir, "add", ".")
	Git(t, dir, "commit", "-q", "-m", "initial")
}

// Git runs a git command in dir, failing the test on error.
func Git(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return string(out)
}
