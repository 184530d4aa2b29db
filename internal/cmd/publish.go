package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/monorel/internal/render"
	"github.com/xcawolfe-amzn/monorel/internal/runner"
)

var publishFlags filterFlags
var publishDryRun bool

var publishCmd = &cobra.Command{
	Use:     "publish",
	Short:   "Publish matched, non-private packages",
	GroupID: GroupRelease,
	RunE:    runPublish,
}

func init() {
	registerFilterFlags(publishCmd, &publishFlags)
	publishFlags.noPrivate = true
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "validate without uploading")
}

func runPublish(c *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	if hooked, err := runVerbOverride(c, ws, "publish", publishFlags); hooked {
		return err
	}

	if err := runHook(c, ws, ws.Config.Command.Publish.Pre); err != nil {
		return err
	}

	spec := publishFlags.toSpec()
	spec.NoPrivate = true
	matched, err := ws.Filter.Evaluate(spec)
	if err != nil {
		return err
	}

	// MELOS_PUBLISH_DRY_RUN forces dry-run even for scripted invocations
	// that didn't pass --dry-run explicitly; it mirrors the env-var gate
	// CI pipelines commonly rely on to keep publish steps side-effect-free.
	dryRun := publishDryRun || os.Getenv("MELOS_PUBLISH_DRY_RUN") != ""

	command := "pub publish --force"
	if dryRun {
		command = "pub publish --dry-run"
	}

	plain := render.NewPlain(c.OutOrStdout())
	env := runner.EnvPlan{RootPath: ws.Root, SDKPath: ws.Config.SDKPath}
	events, wait := runner.Run(context.Background(), matched, command, env, runner.Options{Concurrency: 1})
	for ev := range events {
		plain.Render(ev)
	}
	results := wait()
	plain.Finish(results)

	if err := runHook(c, ws, ws.Config.Command.Publish.Post); err != nil {
		return err
	}
	if !runner.Overall(results) {
		return errExecFailed
	}
	return nil
}
