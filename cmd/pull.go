package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pullEnv string

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull snapshots from the environment's remote",
	Long: `Fetch all remote tags and history not already present locally and
fast-forward the local head. Existing local tags are never rewritten
or deleted; a remote that has diverged from local history is reported
as an error for the user to reconcile.`,
	Args: cobra.NoArgs,
	RunE: runPull,
}

func init() {
	rootCmd.AddCommand(pullCmd)

	pullCmd.Flags().StringVar(&pullEnv, "env", "", "Target environment (default from AKARI_ENV or the current directory)")
}

func runPull(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}
	envName, err := resolveEnv(m, pullEnv)
	if err != nil {
		return err
	}

	if err := m.Pull(envName); err != nil {
		return err
	}

	fmt.Printf("%s Pulled %s\n", okMark(), envName)
	return nil
}
