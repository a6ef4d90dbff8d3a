package cmd

import (
	"fmt"
	"sort"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"
)

var (
	listEnv    string
	listFormat string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List an environment's snapshots",
	Long: `List every snapshot tag in the environment's history.

Examples:
  akari list
  akari list --env myproj
  akari list --format toon`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listEnv, "env", "", "Target environment (default from AKARI_ENV or the current directory)")
	listCmd.Flags().StringVar(&listFormat, "format", "text", "Output format: text|toon")
}

func runList(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}
	envName, err := resolveEnv(m, listEnv)
	if err != nil {
		return err
	}

	snapshots, err := m.List(envName)
	if err != nil {
		return err
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Name < snapshots[j].Name
	})

	if listFormat == "toon" {
		output, err := gotoon.Encode(snapshots)
		if err != nil {
			return fmt.Errorf("failed to encode snapshots: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	if len(snapshots) == 0 {
		fmt.Printf("No snapshots in %s\n", envName)
		return nil
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("Snapshots in %s:", envName)))
	for _, snap := range snapshots {
		line := fmt.Sprintf("  %-20s %s", snap.Name, dimStyle.Render(snap.ShortRef()))
		if snap.Description != "" {
			line += "  " + snap.Description
		}
		fmt.Println(line)
	}
	return nil
}
