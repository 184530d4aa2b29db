package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/xcawolfe-amzn/monorel/internal/pkgmodel"
	"github.com/xcawolfe-amzn/monorel/internal/render"
	"github.com/xcawolfe-amzn/monorel/internal/runner"
	"github.com/xcawolfe-amzn/monorel/internal/script"
)

// runVerbOverride detects whether a script named verb exists and the
// user invoked the command without setting any verb-specific flag; if
// so, it runs that script instead of the built-in behavior and
// reports hooked=true so the caller returns immediately.
func runVerbOverride(c *cobra.Command, ws *workspace, verb string, flags filterFlags) (hooked bool, err error) {
	if _, ok := ws.Config.Scripts[verb]; !ok {
		return false, nil
	}
	if anyFlagChanged(c) {
		return false, nil
	}

	eng := script.New(ws.Config, ws.Filter, ws.Graph, ws.Packages, nil)
	eng.RootPath = ws.Root
	eng.SDKPath = ws.Config.SDKPath

	events, wait := eng.Run(context.Background(), verb, script.RunOptions{})
	plain := render.NewPlain(c.OutOrStdout())
	for ev := range events {
		plain.Render(ev)
	}
	results, err := wait()
	if err != nil {
		return true, err
	}
	plain.Finish(results)
	if !runner.Overall(results) {
		return true, errExecFailed
	}
	return true, nil
}

func anyFlagChanged(c *cobra.Command) bool {
	changed := false
	c.Flags().Visit(func(f *pflag.Flag) {
		changed = true
	})
	return changed
}

// runHook executes a configured pre/post hook shell string at the
// workspace root, a no-op when hook is empty.
func runHook(c *cobra.Command, ws *workspace, hook string) error {
	if hook == "" {
		return nil
	}
	root := &pkgmodel.Package{Name: ws.Config.Name, Path: ws.Root}
	env := runner.EnvPlan{RootPath: ws.Root, SDKPath: ws.Config.SDKPath}
	events, wait := runner.Run(context.Background(), []*pkgmodel.Package{root}, hook, env, runner.Options{Concurrency: 1})
	plain := render.NewPlain(c.OutOrStdout())
	for ev := range events {
		plain.Render(ev)
	}
	results := wait()
	if !runner.Overall(results) {
		return errExecFailed
	}
	return nil
}
