package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/akari-env/akari/internal/config"
	"github.com/akari-env/akari/internal/remote"
)

var (
	initSource string
	initDir    string
)

var initCmd = &cobra.Command{
	Use:   "init NAME",
	Short: "Initialize a new environment",
	Long: `Register a named environment and create its working directory.

Without --source an empty tracked directory is created under the akari
envs dir. With --source the environment's history is cloned from an
existing remote and the remote stays bound, so tag/push/pull work
against it immediately.

Examples:
  akari init myproj
  akari init myproj --source git@github.com:acme/myproj.git
  akari init myproj --source acme/myproj`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initSource, "source", "", "Remote URL or org/repo to clone the environment from")
	initCmd.Flags().StringVar(&initDir, "dir", "", "Working directory (default is the akari envs dir)")
}

func runInit(cmd *cobra.Command, args []string) error {
	name := args[0]

	m, err := newManager()
	if err != nil {
		return err
	}

	dir := initDir
	if dir == "" {
		dir = filepath.Join(config.EnvsDir(), name)
	}

	source := ""
	if initSource != "" {
		source, err = remote.NormalizeURL(initSource, config.DefaultRemoteHost())
		if err != nil {
			return err
		}
	}

	env, err := m.Init(name, dir, source)
	if err != nil {
		return err
	}

	fmt.Printf("%s Initialized environment %s\n", okMark(), env.Name)
	fmt.Printf("  Directory: %s\n", env.WorkingDirectory)
	if env.HasRemote() {
		fmt.Printf("  Remote:    %s\n", env.RemoteURL)
	}
	fmt.Printf("\nActivate it with: eval \"$(akari activate %s)\"\n", env.Name)

	return nil
}
