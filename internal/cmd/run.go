package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/monorel/internal/render"
	"github.com/xcawolfe-amzn/monorel/internal/runner"
	"github.com/xcawolfe-amzn/monorel/internal/script"
)

var runFlags filterFlags
var runDryRun bool

var runCmd = &cobra.Command{
	Use:     "run <script>",
	Short:   "Run a named script from workspace configuration",
	GroupID: GroupCore,
	Args:    cobra.ExactArgs(1),
	RunE:    runScript,
}

func init() {
	registerFilterFlags(runCmd, &runFlags)
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "print the plan without executing")
}

func runScript(c *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	env := map[string]string{}
	eng := script.New(ws.Config, ws.Filter, ws.Graph, ws.Packages, env)
	eng.RootPath = ws.Root
	eng.SDKPath = ws.Config.SDKPath

	events, wait := eng.Run(context.Background(), args[0], script.RunOptions{
		CLIFilters: runFlags.toSpec(),
		DryRun:     runDryRun,
	})

	plain := render.NewPlain(c.OutOrStdout())
	for ev := range events {
		plain.Render(ev)
	}
	results, err := wait()
	if err != nil {
		return err
	}

	plain.Finish(results)
	if !runner.Overall(results) {
		return errExecFailed
	}
	return nil
}
