package cmd

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akari-env/akari/internal/config"
	"github.com/akari-env/akari/internal/registry"
)

// setupCLI points every config key at a temp root so command tests
// never touch the user's real registry.
func setupCLI(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	viper.Set("root", root)
	viper.Set("registry.path", filepath.Join(root, "registry.toml"))
	viper.Set("envs.dir", filepath.Join(root, "envs"))
	viper.Set("shim.bin_dir", filepath.Join(root, "bin"))
	viper.Set("git.user_name", "akari-test")
	viper.Set("git.user_email", "akari-test@example.com")
	viper.Set("remote.default_host", "github.com")
	viper.Set("shell.flavor", "posix")
	t.Cleanup(viper.Reset)

	return root
}

func TestInitCommand(t *testing.T) {
	root := setupCLI(t)
	initSource = ""
	initDir = ""

	require.NoError(t, runInit(nil, []string{"myproj"}))

	reg, err := registry.Load(config.RegistryPath())
	require.NoError(t, err)
	env, err := reg.Lookup("myproj")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "envs", "myproj"), env.WorkingDirectory)
	assert.DirExists(t, env.WorkingDirectory)
}

func TestInitCommandDuplicate(t *testing.T) {
	setupCLI(t)
	initSource = ""
	initDir = ""

	require.NoError(t, runInit(nil, []string{"myproj"}))

	err := runInit(nil, []string{"myproj"})
	assert.ErrorIs(t, err, registry.ErrDuplicateName)
}

func TestInitCommandExplicitDir(t *testing.T) {
	root := setupCLI(t)
	initSource = ""
	initDir = filepath.Join(root, "custom")

	require.NoError(t, runInit(nil, []string{"custom-home"}))

	reg, err := registry.Load(config.RegistryPath())
	require.NoError(t, err)
	env, err := reg.Lookup("custom-home")
	require.NoError(t, err)
	assert.Equal(t, initDir, env.WorkingDirectory)
}

func TestInitCommandRejectsBadSource(t *testing.T) {
	setupCLI(t)
	initDir = ""
	initSource = "not a remote"

	err := runInit(nil, []string{"myproj"})
	assert.Error(t, err)
}
