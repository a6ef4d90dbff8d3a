package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	tagEnv         string
	tagDescription string
)

var tagCmd = &cobra.Command{
	Use:   "tag NAME",
	Short: "Snapshot the environment's current state under an immutable tag",
	Long: `Capture the full current state of the environment's working directory,
including files the package manager added since the last tag, as a new
snapshot labeled NAME. Tags are write-once; re-tagging a used name is
an error.

Examples:
  akari tag v1 --description "baseline"
  akari tag py312-numpy --env myproj`,
	Args: cobra.ExactArgs(1),
	RunE: runTag,
}

func init() {
	rootCmd.AddCommand(tagCmd)

	tagCmd.Flags().StringVar(&tagEnv, "env", "", "Target environment (default from AKARI_ENV or the current directory)")
	tagCmd.Flags().StringVarP(&tagDescription, "description", "d", "", "Snapshot description")
}

func runTag(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}
	envName, err := resolveEnv(m, tagEnv)
	if err != nil {
		return err
	}

	snap, err := m.Tag(envName, args[0], tagDescription)
	if err != nil {
		return err
	}

	fmt.Printf("%s Created snapshot %s (%s) in %s\n", okMark(), snap.Name, snap.ShortRef(), envName)
	return nil
}
