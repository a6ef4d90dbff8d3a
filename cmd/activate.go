package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akari-env/akari/internal/config"
	"github.com/akari-env/akari/internal/shell"
)

var activateShell string

var activateCmd = &cobra.Command{
	Use:   "activate NAME",
	Short: "Print shell statements that activate an environment",
	Long: `Print export statements for the enclosing shell to evaluate. akari
never mutates the calling shell's environment itself; wrap the command
in eval:

  eval "$(akari activate myproj)"`,
	Args: cobra.ExactArgs(1),
	RunE: runActivate,
}

var deactivateCmd = &cobra.Command{
	Use:   "deactivate",
	Short: "Print shell statements that deactivate the active environment",
	Long: `Print unset statements undoing a previous activation:

  eval "$(akari deactivate)"`,
	Args: cobra.NoArgs,
	RunE: runDeactivate,
}

func init() {
	rootCmd.AddCommand(activateCmd)
	rootCmd.AddCommand(deactivateCmd)

	activateCmd.Flags().StringVar(&activateShell, "shell", "", "Shell flavor: bash|zsh|posix (default from config)")
	deactivateCmd.Flags().StringVar(&activateShell, "shell", "", "Shell flavor: bash|zsh|posix (default from config)")
}

func runActivate(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}
	env, err := m.Registry.Lookup(args[0])
	if err != nil {
		return err
	}

	flavor, err := shellFlavor()
	if err != nil {
		return err
	}

	fmt.Print(shell.ActivateScript(env, config.BinDir(), flavor))
	return nil
}

func runDeactivate(cmd *cobra.Command, args []string) error {
	flavor, err := shellFlavor()
	if err != nil {
		return err
	}

	fmt.Print(shell.DeactivateScript(flavor))
	return nil
}

func shellFlavor() (shell.Flavor, error) {
	name := activateShell
	if name == "" {
		name = config.DefaultShell()
	}
	return shell.ParseFlavor(name)
}
