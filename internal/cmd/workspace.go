package cmd

import (
	"fmt"
	"os"

	"github.com/xcawolfe-amzn/monorel/internal/config"
	"github.com/xcawolfe-amzn/monorel/internal/diagnostics"
	"github.com/xcawolfe-amzn/monorel/internal/discovery"
	"github.com/xcawolfe-amzn/monorel/internal/filter"
	"github.com/xcawolfe-amzn/monorel/internal/gitutil"
	"github.com/xcawolfe-amzn/monorel/internal/graph"
	"github.com/xcawolfe-amzn/monorel/internal/pkgmodel"
)

// workspace bundles everything a command needs after config load,
// discovery, and graph construction: the shared setup every verb does
// before it diverges into its own behavior.
type workspace struct {
	Root     string
	Config   *config.WorkspaceConfig
	Packages []*pkgmodel.Package
	Graph    *graph.Graph
	Filter   *filter.Engine
	Git      gitutil.Runner
	Warnings []string
}

// loadWorkspace performs config load, package discovery, and graph
// construction, printing any collected warnings to stderr.
func loadWorkspace() (*workspace, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, diagnostics.Wrap(diagnostics.KindConfigNotFound, err, "resolving working directory")
	}

	cfgResult, err := config.Load(cwd)
	if err != nil {
		return nil, err
	}

	discResult, err := discovery.Discover(cfgResult.Root, cfgResult.Config)
	if err != nil {
		return nil, err
	}

	g := graph.Build(discResult.Packages)
	git := gitutil.New(cfgResult.Root)
	f := filter.New(cfgResult.Root, discResult.Packages, g, cfgResult.Config.Categories, git)

	warnings := append(append([]string{}, cfgResult.Warnings...), discResult.Warnings...)
	for _, w := range warnings {
		printWarning(w)
	}

	return &workspace{
		Root:     cfgResult.Root,
		Config:   &cfgResult.Config,
		Packages: discResult.Packages,
		Graph:    g,
		Filter:   f,
		Git:      git,
		Warnings: warnings,
	}, nil
}

func printWarning(message string) {
	fmt.Fprintln(os.Stderr, diagnostics.Line(diagnostics.LabelWarning, "%s", message))
}
