package cmd

import (
	"fmt"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"

	"github.com/akari-env/akari/internal/config"
	"github.com/akari-env/akari/internal/remote"
)

var (
	envsFormat  string
	envsKeepDir bool
)

var envsCmd = &cobra.Command{
	Use:   "envs",
	Short: "Manage the environment registry",
}

var envsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List registered environments",
	RunE:  runEnvsLs,
}

var envsRmCmd = &cobra.Command{
	Use:   "rm NAME",
	Short: "Remove an environment",
	Long: `Unregister an environment and delete its working directory. With
--keep-dir the directory and its history are left in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnvsRm,
}

var envsRemoteCmd = &cobra.Command{
	Use:   "remote NAME [URL]",
	Short: "Attach or detach an environment's remote",
	Long: `With a URL, bind the remote to the environment; an environment has at
most one remote. With --detach, remove the current binding. A bound
remote must be detached before a different one can be attached.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runEnvsRemote,
}

var envsRemoteDetach bool

func init() {
	rootCmd.AddCommand(envsCmd)
	envsCmd.AddCommand(envsLsCmd)
	envsCmd.AddCommand(envsRmCmd)
	envsCmd.AddCommand(envsRemoteCmd)

	envsLsCmd.Flags().StringVar(&envsFormat, "format", "text", "Output format: text|toon")
	envsRmCmd.Flags().BoolVar(&envsKeepDir, "keep-dir", false, "Keep the working directory on disk")
	envsRemoteCmd.Flags().BoolVar(&envsRemoteDetach, "detach", false, "Detach the bound remote")
}

func runEnvsLs(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}

	envs := m.Envs()

	if envsFormat == "toon" {
		output, err := gotoon.Encode(envs)
		if err != nil {
			return fmt.Errorf("failed to encode environments: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	if len(envs) == 0 {
		fmt.Println("No environments registered")
		return nil
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%d environment(s):", len(envs))))
	for _, env := range envs {
		fmt.Printf("  %-20s %s\n", env.Name, dimStyle.Render(env.WorkingDirectory))
		if env.HasRemote() {
			fmt.Printf("  %-20s %s\n", "", dimStyle.Render("remote: "+env.RemoteURL))
		}
	}
	return nil
}

func runEnvsRm(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}

	if err := m.Remove(args[0], envsKeepDir); err != nil {
		return err
	}

	fmt.Printf("%s Removed environment %s\n", okMark(), args[0])
	return nil
}

func runEnvsRemote(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}
	name := args[0]

	if envsRemoteDetach {
		if err := m.Registry.DetachRemote(name); err != nil {
			return err
		}
		if err := m.Registry.Flush(); err != nil {
			return err
		}
		fmt.Printf("%s Detached remote from %s\n", okMark(), name)
		return nil
	}

	if len(args) != 2 {
		return fmt.Errorf("a remote URL is required unless --detach is given")
	}
	url, err := remote.NormalizeURL(args[1], config.DefaultRemoteHost())
	if err != nil {
		return err
	}
	if err := m.Registry.AttachRemote(name, url); err != nil {
		return err
	}
	if err := m.Registry.Flush(); err != nil {
		return err
	}

	fmt.Printf("%s Bound %s to %s\n", okMark(), name, url)
	return nil
}
