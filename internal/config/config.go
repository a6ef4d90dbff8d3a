package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// AkariRoot returns the akari state directory (default ~/.akari).
func AkariRoot() string {
	if root := viper.GetString("root"); root != "" {
		return root
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".akari"
	}
	return filepath.Join(home, ".akari")
}

// RegistryPath returns the path of the environment registry file.
func RegistryPath() string {
	if path := viper.GetString("registry.path"); path != "" {
		return path
	}
	return filepath.Join(AkariRoot(), "registry.toml")
}

// EnvsDir returns the directory where working directories created by
// `akari init` are placed.
func EnvsDir() string {
	if dir := viper.GetString("envs.dir"); dir != "" {
		return dir
	}
	return filepath.Join(AkariRoot(), "envs")
}

// BinDir returns the shim bin directory that activation prepends to PATH.
func BinDir() string {
	if dir := viper.GetString("shim.bin_dir"); dir != "" {
		return dir
	}
	return filepath.Join(AkariRoot(), "bin")
}

// GitUserName returns the committer name used for snapshot commits.
func GitUserName() string {
	return viper.GetString("git.user_name")
}

// GitUserEmail returns the committer email used for snapshot commits.
func GitUserEmail() string {
	return viper.GetString("git.user_email")
}

// DefaultRemoteHost returns the host used when a remote is given in
// org/repo shorthand.
func DefaultRemoteHost() string {
	return viper.GetString("remote.default_host")
}

// DefaultShell returns the shell flavor used when --shell is not given.
func DefaultShell() string {
	return viper.GetString("shell.flavor")
}
