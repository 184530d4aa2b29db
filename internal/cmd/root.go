// Package cmd wires monorel's cobra command tree to the config,
// discovery, filter, runner, script, version, and changelog engines.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	GroupCore    = "core"
	GroupRelease = "release"
	GroupWork    = "work"
)

var rootCmd = &cobra.Command{
	Use:   "monorel",
	Short: "Monorepo workflow orchestrator",
	Long: `monorel discovers packages in a monorepo workspace, filters them by
scope or dependency relationships, and runs scripts or commands across
the matched set with bounded concurrency.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupCore, Title: "Core commands:"},
		&cobra.Group{ID: GroupRelease, Title: "Release commands:"},
		&cobra.Group{ID: GroupWork, Title: "Workflow commands:"},
	)
	rootCmd.AddCommand(listCmd, execCmd, runCmd)
	rootCmd.AddCommand(versionCmd, publishCmd)
	rootCmd.AddCommand(bootstrapCmd, cleanCmd, healthCmd)
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorLine(err))
		return 1
	}
	return 0
}
