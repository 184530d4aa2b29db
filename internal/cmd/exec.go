package cmd

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/monorel/internal/pkgmodel"
	"github.com/xcawolfe-amzn/monorel/internal/render"
	"github.com/xcawolfe-amzn/monorel/internal/runner"
)

var errExecFailed = errors.New("one or more tasks failed")

var execFlags filterFlags
var execConcurrency int
var execFailFast bool
var execOrderDependents bool
var execTimeoutSeconds int
var execDryRun bool

var execCmd = &cobra.Command{
	Use:     "exec -- <command>",
	Short:   "Run a shell command across matched packages",
	GroupID: GroupCore,
	Args:    cobra.ArbitraryArgs,
	RunE:    runExec,
}

func init() {
	registerFilterFlags(execCmd, &execFlags)
	execCmd.Flags().IntVarP(&execConcurrency, "concurrency", "c", 4, "max concurrent child processes")
	execCmd.Flags().BoolVar(&execFailFast, "fail-fast", false, "stop dispatching after the first failure")
	execCmd.Flags().BoolVar(&execOrderDependents, "order-dependents", false, "run in dependency-then-dependent order")
	execCmd.Flags().IntVar(&execTimeoutSeconds, "timeout", 0, "per-task timeout in seconds (0 disables)")
	execCmd.Flags().BoolVar(&execDryRun, "dry-run", false, "print the plan without executing")
}

func runExec(c *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	matched, err := ws.Filter.Evaluate(execFlags.toSpec())
	if err != nil {
		return err
	}
	if execOrderDependents {
		order, _, ok := ws.Graph.TopoSort()
		if ok {
			matched = reorderByName(matched, order)
		}
	}

	command := strings.Join(args, " ")
	if execDryRun {
		plain := render.NewPlain(c.OutOrStdout())
		plain.Render(runner.InfoEvent("would run " + command + " across " + strconv.Itoa(len(matched)) + " package(s)"))
		return nil
	}

	plain := render.NewPlain(c.OutOrStdout())
	timeout := time.Duration(execTimeoutSeconds) * time.Second
	env := runner.EnvPlan{RootPath: ws.Root}
	events, wait := runner.Run(context.Background(), matched, command, env, runner.Options{
		Concurrency: execConcurrency,
		FailFast:    execFailFast,
		Timeout:     timeout,
	})
	for ev := range events {
		plain.Render(ev)
	}
	results := wait()
	plain.Finish(results)
	if !runner.Overall(results) {
		return errExecFailed
	}
	return nil
}

func reorderByName(matched, order []*pkgmodel.Package) []*pkgmodel.Package {
	want := map[string]bool{}
	for _, p := range matched {
		want[p.Name] = true
	}
	out := make([]*pkgmodel.Package, 0, len(matched))
	for _, p := range order {
		if want[p.Name] {
			out = append(out, p)
		}
	}
	return out
}
