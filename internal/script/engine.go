// Package script resolves a named script from workspace configuration
// into a concrete execution plan — inline shell, exec-mode per-package
// invocation, or an ordered chain of steps — and runs it.
package script

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/xcawolfe-amzn/monorel/internal/config"
	"github.com/xcawolfe-amzn/monorel/internal/diagnostics"
	"github.com/xcawolfe-amzn/monorel/internal/filter"
	"github.com/xcawolfe-amzn/monorel/internal/graph"
	"github.com/xcawolfe-amzn/monorel/internal/pkgmodel"
	"github.com/xcawolfe-amzn/monorel/internal/runner"
)

const maxDepth = 16

// ToolName is the invocation name substituted for the standalone
// `melos` token when expanding `melos run X` references.
const ToolName = "monorel"

// Engine resolves and executes named scripts.
type Engine struct {
	Config   *config.WorkspaceConfig
	Filter   *filter.Engine
	Graph    *graph.Graph
	Packages []*pkgmodel.Package
	Env      map[string]string

	RootPath string
	SDKPath  string

	visited map[string]bool
}

// New builds a script Engine over a resolved workspace.
func New(cfg *config.WorkspaceConfig, f *filter.Engine, g *graph.Graph, packages []*pkgmodel.Package, env map[string]string) *Engine {
	return &Engine{
		Config:   cfg,
		Filter:   f,
		Graph:    g,
		Packages: packages,
		Env:      env,
		visited:  map[string]bool{},
	}
}

// RunOptions carries the CLI-supplied overlay for a script invocation:
// extra filters, and whether dry-run was requested at the CLI level.
type RunOptions struct {
	CLIFilters config.FilterSpec
	DryRun     bool
}

// Run resolves name and executes it, returning the event stream and a
// function that blocks for final results (and the resolution error, if
// any) once the stream is drained. The caller must drain events to
// completion before calling wait, since evaluation runs concurrently
// and the channel is unbuffered-equivalent beyond its small burst cap.
func (e *Engine) Run(ctx context.Context, name string, opts RunOptions) (events <-chan runner.Event, wait func() ([]runner.Result, error)) {
	ch := make(chan runner.Event, 64)
	var results []runner.Result
	errCh := make(chan error, 1)

	go func() {
		errCh <- e.eval(ctx, name, opts, 0, ch, &results)
		close(ch)
	}()

	return ch, func() ([]runner.Result, error) {
		return results, <-errCh
	}
}

func (e *Engine) eval(ctx context.Context, name string, opts RunOptions, depth int, events chan runner.Event, results *[]runner.Result) error {
	if depth > maxDepth {
		return diagnostics.New(diagnostics.KindScriptDepthExceed, "script %q exceeds max recursion depth %d", name, maxDepth)
	}
	if e.visited[name] {
		return diagnostics.New(diagnostics.KindScriptCycle, "script %q references itself through a cycle", name)
	}

	s, ok := e.Config.Scripts[name]
	if !ok {
		return diagnostics.New(diagnostics.KindScriptNotFound, "script %q not found", name)
	}

	e.visited[name] = true
	defer delete(e.visited, name)

	if len(s.Steps) > 0 {
		for _, step := range s.Steps {
			trimmed := trimSpace(step)
			if _, isScript := e.Config.Scripts[trimmed]; isScript {
				if err := e.eval(ctx, trimmed, opts, depth+1, events, results); err != nil {
					return err
				}
				continue
			}
			if err := e.runShellAtRoot(ctx, trimmed, s, opts, events, results); err != nil {
				return err
			}
		}
		return nil
	}

	if s.ExecShorthand != "" {
		return e.runExec(ctx, s, opts, fmt.Sprintf("-- %s", s.ExecShorthand), events, results)
	}
	if s.HasExecOptions {
		return e.runExecWithOptions(ctx, s, opts, events, results)
	}

	command := substituteEnv(s.RunString(), e.mergedEnv(s))
	command = normalizeContinuations(command)

	pieces := expandToolInvocation(command, ToolName)
	for _, piece := range pieces {
		if target, ok := scriptRunTarget(piece, ToolName); ok {
			if err := e.eval(ctx, target, opts, depth+1, events, results); err != nil {
				return err
			}
			continue
		}
		if isExecInvocation(piece, ToolName) {
			inv := parseExecFlags(stripExecPrefix(piece, ToolName))
			if err := e.dispatch(ctx, s, opts, inv, events, results); err != nil {
				return err
			}
			continue
		}
		if err := e.shell(ctx, piece, events, results); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) runShellAtRoot(ctx context.Context, command string, s config.Script, opts RunOptions, events chan runner.Event, results *[]runner.Result) error {
	command = substituteEnv(command, e.mergedEnv(s))
	command = normalizeContinuations(command)
	return e.shell(ctx, command, events, results)
}

func (e *Engine) runExec(ctx context.Context, s config.Script, opts RunOptions, rawInvocation string, events chan runner.Event, results *[]runner.Result) error {
	inv := parseExecFlags(rawInvocation)
	return e.dispatch(ctx, s, opts, inv, events, results)
}

func (e *Engine) runExecWithOptions(ctx context.Context, s config.Script, opts RunOptions, events chan runner.Event, results *[]runner.Result) error {
	inv := execInvocation{
		Concurrency:     s.ExecOptions.Concurrency,
		FailFast:        s.ExecOptions.FailFast,
		OrderDependents: s.ExecOptions.OrderDependents,
		Command:         substituteEnv(s.Run, e.mergedEnv(s)),
	}
	return e.dispatch(ctx, s, opts, inv, events, results)
}

// dispatch merges filters, evaluates the package set, orders it, and
// either emits a dry-run plan or invokes the process runner.
func (e *Engine) dispatch(ctx context.Context, s config.Script, opts RunOptions, inv execInvocation, events chan runner.Event, results *[]runner.Result) error {
	merged := s.PackageFilters.Merge(opts.CLIFilters)
	if inv.FileExists != "" {
		merged.FileExists = inv.FileExists
	}
	matched, err := e.Filter.Evaluate(merged)
	if err != nil {
		return diagnostics.Wrap(diagnostics.KindFilterError, err, "evaluating script filters")
	}

	if inv.OrderDependents {
		order, _, ok := e.Graph.TopoSort()
		if ok {
			matched = reorderByTopo(matched, order)
		}
	}

	dryRun := inv.DryRun || opts.DryRun
	if dryRun {
		planID := uuid.New().String()
		events <- runner.InfoEvent(fmt.Sprintf("[plan %s] would run %q across %d package(s)", planID, inv.Command, len(matched)))
		for _, p := range matched {
			events <- runner.InfoEvent(fmt.Sprintf("  - %s", p.Name))
		}
		return nil
	}

	ropts := runner.Options{
		Concurrency: inv.Concurrency,
		FailFast:    inv.FailFast,
		Timeout:     inv.Timeout,
	}
	if ropts.Concurrency < 1 {
		ropts.Concurrency = 4
	}

	env := runner.EnvPlan{RootPath: e.RootPath, SDKPath: e.SDKPath, Extra: e.Env}
	sub, wait := runner.Run(ctx, matched, inv.Command, env, ropts)
	for ev := range sub {
		events <- ev
	}
	*results = append(*results, wait()...)
	return nil
}

// shell executes command once at the workspace root via the process
// runner against a single synthetic package entry.
func (e *Engine) shell(ctx context.Context, command string, events chan runner.Event, results *[]runner.Result) error {
	root := &pkgmodel.Package{Name: e.Config.Name, Path: e.RootPath}
	env := runner.EnvPlan{RootPath: e.RootPath, SDKPath: e.SDKPath, Extra: e.Env}
	sub, wait := runner.Run(ctx, []*pkgmodel.Package{root}, command, env, runner.Options{Concurrency: 1})
	for ev := range sub {
		events <- ev
	}
	*results = append(*results, wait()...)
	return nil
}

func (e *Engine) mergedEnv(s config.Script) map[string]string {
	if len(s.Env) == 0 {
		return e.Env
	}
	out := make(map[string]string, len(e.Env)+len(s.Env))
	for k, v := range e.Env {
		out[k] = v
	}
	for k, v := range s.Env {
		out[k] = v
	}
	return out
}

func reorderByTopo(matched []*pkgmodel.Package, order []*pkgmodel.Package) []*pkgmodel.Package {
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

func stripExecPrefix(piece, toolName string) string {
	for _, prefix := range []string{toolName + " exec", "melos exec"} {
		if idx := indexToken(piece, prefix); idx >= 0 {
			return piece[idx+len(prefix):]
		}
	}
	return piece
}

func indexToken(haystack, token string) int {
	for i := 0; i+len(token) <= len(haystack); i++ {
		if haystack[i:i+len(token)] == token {
			before := i == 0 || !isWordByte(haystack[i-1])
			after := i+len(token) >= len(haystack) || !isWordByte(haystack[i+len(token)])
			if before && after {
				return i
			}
		}
	}
	return -1
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpaceByte(s[start]) {
		start++
	}
	for end > start && isSpaceByte(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
