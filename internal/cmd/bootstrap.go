package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/monorel/internal/render"
	"github.com/xcawolfe-amzn/monorel/internal/runner"
)

var bootstrapFlags filterFlags
var bootstrapConcurrency int

var bootstrapCmd = &cobra.Command{
	Use:     "bootstrap",
	Short:   "Resolve dependencies across the matched packages",
	GroupID: GroupWork,
	RunE:    runBootstrap,
}

func init() {
	registerFilterFlags(bootstrapCmd, &bootstrapFlags)
	bootstrapCmd.Flags().IntVarP(&bootstrapConcurrency, "concurrency", "c", 4, "max concurrent child processes")
}

func runBootstrap(c *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	if hooked, err := runVerbOverride(c, ws, "bootstrap", bootstrapFlags); hooked {
		return err
	}

	matched, err := ws.Filter.Evaluate(bootstrapFlags.toSpec())
	if err != nil {
		return err
	}

	plain := render.NewPlain(c.OutOrStdout())
	if err := runHook(c, ws, ws.Config.Command.Bootstrap.Pre); err != nil {
		return err
	}

	env := runner.EnvPlan{RootPath: ws.Root, SDKPath: ws.Config.SDKPath}
	events, wait := runner.Run(context.Background(), matched, "pub get", env, runner.Options{Concurrency: bootstrapConcurrency})
	for ev := range events {
		plain.Render(ev)
	}
	results := wait()
	plain.Finish(results)

	if err := runHook(c, ws, ws.Config.Command.Bootstrap.Post); err != nil {
		return err
	}
	if !runner.Overall(results) {
		return errExecFailed
	}
	return nil
}
