package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pushEnv string

var pushCmd = &cobra.Command{
	Use:   "push TAG",
	Short: "Push a snapshot to the environment's remote",
	Long: `Transmit the snapshot identified by TAG, along with any of its history
the remote is missing, to the environment's bound remote. Pushing a tag
the remote already has is a no-op.

Authentication is delegated to the ambient ssh agent; akari supplies no
credentials of its own.`,
	Args: cobra.ExactArgs(1),
	RunE: runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)

	pushCmd.Flags().StringVar(&pushEnv, "env", "", "Target environment (default from AKARI_ENV or the current directory)")
}

func runPush(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}
	envName, err := resolveEnv(m, pushEnv)
	if err != nil {
		return err
	}

	if err := m.Push(envName, args[0]); err != nil {
		return err
	}

	fmt.Printf("%s Pushed %s from %s\n", okMark(), args[0], envName)
	return nil
}
