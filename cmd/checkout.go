package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	checkoutEnv   string
	checkoutForce bool
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout REF",
	Short: "Restore the environment to a snapshot",
	Long: `Replace the environment's working directory with the exact state
recorded in a snapshot. REF is a tag name or the reserved name
"latest", which resolves to the most recent tagged snapshot reachable
from the history head.

Checkout discards any changes made since the last tag. It asks for
confirmation when such changes exist; --force skips the prompt.

Examples:
  akari checkout v1
  akari checkout latest --env myproj`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckout,
}

func init() {
	rootCmd.AddCommand(checkoutCmd)

	checkoutCmd.Flags().StringVar(&checkoutEnv, "env", "", "Target environment (default from AKARI_ENV or the current directory)")
	checkoutCmd.Flags().BoolVarP(&checkoutForce, "force", "f", false, "Discard untagged changes without asking")
}

func runCheckout(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}
	envName, err := resolveEnv(m, checkoutEnv)
	if err != nil {
		return err
	}

	if !checkoutForce {
		dirty, err := m.HasUntaggedChanges(envName)
		if err != nil {
			return err
		}
		if dirty && !confirm(fmt.Sprintf("Environment %s has untagged changes that checkout will discard. Continue?", envName)) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	commit, err := m.Checkout(envName, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s Restored %s to %s (%s)\n", okMark(), envName, args[0], shortRef(commit))
	return nil
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func shortRef(ref string) string {
	if len(ref) > 8 {
		return ref[:8]
	}
	return ref
}
