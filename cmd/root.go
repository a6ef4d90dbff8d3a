package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/akari-env/akari/internal/config"
	"github.com/akari-env/akari/internal/manager"
	"github.com/akari-env/akari/internal/registry"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "akari",
	Short: "Versioned, shareable software environments",
	Long: `akari layers checkpoint semantics on top of a directory your package
manager already controls: initialize a named environment, mutate it
freely, then tag immutable snapshots of its state, check historical
snapshots back out, and synchronize history with an ssh remote.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/akari/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "akari")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("akari")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("git.user_name", "akari")
	viper.SetDefault("git.user_email", "akari@localhost")
	viper.SetDefault("remote.default_host", "github.com")
	viper.SetDefault("shell.flavor", "posix")

	if err := viper.ReadInConfig(); err == nil {
		log.Debugf("using config file: %s", viper.ConfigFileUsed())
	}

	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

// newManager loads the registry and wires the orchestrator. Each CLI
// invocation is one manager call run to completion.
func newManager() (*manager.Manager, error) {
	reg, err := registry.Load(config.RegistryPath())
	if err != nil {
		return nil, err
	}
	return manager.New(reg, config.GitUserName(), config.GitUserEmail()), nil
}

// resolveEnv picks the target environment for a command.
func resolveEnv(m *manager.Manager, explicit string) (string, error) {
	name, err := m.DefaultEnv(explicit)
	if err != nil && errors.Is(err, registry.ErrNotFound) {
		return "", fmt.Errorf("%w (run `akari envs ls` to see registered environments)", err)
	}
	return name, err
}
