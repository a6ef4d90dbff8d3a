package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akari-env/akari/internal/config"
)

var shimCmd = &cobra.Command{
	Use:    "shim TOOL [ARGS...]",
	Short:  "Gate for shimmed package-manager tools",
	Hidden: true,
	Long: `Called by shim files in the akari bin dir when the user runs a shimmed
environment-management tool. Refuses to run the tool unless
AKARI_OVERRIDE_SHIM=1, in which case the tool is re-executed with the
akari bin dir stripped from PATH. Not intended to be called directly.`,
	Args:               cobra.MinimumNArgs(1),
	DisableFlagParsing: true,
	RunE:               runShim,
}

func init() {
	rootCmd.AddCommand(shimCmd)
}

func runShim(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(os.Getenv("AKARI_OVERRIDE_SHIM")) != "1" {
		return fmt.Errorf("refusing to run %q; use akari for environment management, "+
			"or set AKARI_OVERRIDE_SHIM=1 to run it anyway", strings.Join(args, " "))
	}

	tool := args[0]
	toolArgs := args[1:]

	path := stripShimPath(os.Getenv("PATH"), config.BinDir())

	run := exec.Command(tool, toolArgs...)
	run.Env = append(os.Environ(), "PATH="+path)
	run.Stdin = os.Stdin
	run.Stdout = os.Stdout
	run.Stderr = os.Stderr
	if err := run.Run(); err != nil {
		return fmt.Errorf("failed to run %s: %w", tool, err)
	}
	return nil
}

// stripShimPath removes the akari bin dir from a colon-separated PATH.
func stripShimPath(path, shimDir string) string {
	var kept []string
	for _, item := range strings.Split(path, ":") {
		if item != shimDir {
			kept = append(kept, item)
		}
	}
	return strings.Join(kept, ":")
}
