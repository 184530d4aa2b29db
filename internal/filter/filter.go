// Package filter evaluates a declarative FilterSpec over the discovered
// package set: per-package predicates (phase A), then git-diff and
// closure expansion (phase B).
package filter

import (
	"os"
	"path/filepath"

	"github.com/xcawolfe-amzn/monorel/internal/config"
	"github.com/xcawolfe-amzn/monorel/internal/gitutil"
	"github.com/xcawolfe-amzn/monorel/internal/globmatch"
	"github.com/xcawolfe-amzn/monorel/internal/graph"
	"github.com/xcawolfe-amzn/monorel/internal/pkgmodel"
)

// Engine evaluates FilterSpecs against a fixed package set and graph.
type Engine struct {
	Root       string
	Packages   []*pkgmodel.Package
	Graph      *graph.Graph
	Categories map[string][]string
	Git        gitutil.Runner
}

// New builds a filter Engine. git may be nil if diff-based filters will
// never be used; calling Evaluate with Diff set against a nil git returns
// gitutil.ErrNoRunner instead of a nil-pointer crash.
func New(root string, packages []*pkgmodel.Package, g *graph.Graph, categories map[string][]string, git gitutil.Runner) *Engine {
	return &Engine{Root: root, Packages: packages, Graph: g, Categories: categories, Git: git}
}

// Evaluate returns the ordered subset of packages matching spec, in
// discovery (insertion) order. An empty result is not an error.
func (e *Engine) Evaluate(spec config.FilterSpec) ([]*pkgmodel.Package, error) {
	survivors := e.phaseA(spec)

	survivors, err := e.phaseB(spec, survivors)
	if err != nil {
		return nil, err
	}
	return survivors, nil
}

func (e *Engine) phaseA(spec config.FilterSpec) []*pkgmodel.Package {
	scope := globmatch.CompileAll(spec.Scope)
	ignore := globmatch.CompileAll(spec.Ignore)
	depends := spec.DependsOn
	noDepends := spec.NoDependsOn

	var out []*pkgmodel.Package
	for _, p := range e.Packages {
		if len(scope) > 0 && !globmatch.MatchAny(scope, p.Name) {
			continue
		}
		if len(ignore) > 0 && globmatch.MatchAny(ignore, p.Name) {
			continue
		}
		if spec.FlutterLike != nil && p.IsFlutterLike != *spec.FlutterLike {
			continue
		}
		if spec.DirExists != "" && !dirExists(filepath.Join(p.Path, spec.DirExists)) {
			continue
		}
		if spec.FileExists != "" && !fileExists(filepath.Join(p.Path, spec.FileExists)) {
			continue
		}
		if !allDependenciesPresent(p, depends) {
			continue
		}
		if anyDependencyPresent(p, noDepends) {
			continue
		}
		if spec.NoPrivate && p.Private() {
			continue
		}
		if spec.Published != nil {
			published := !p.Private()
			if published != *spec.Published {
				continue
			}
		}
		if len(spec.Category) > 0 && !e.matchesAnyCategory(p.Name, spec.Category) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (e *Engine) phaseB(spec config.FilterSpec, survivors []*pkgmodel.Package) ([]*pkgmodel.Package, error) {
	if spec.Diff != "" {
		if e.Git == nil {
			return nil, gitutil.ErrNoRunner
		}
		changed, err := e.Git.DiffNameOnly(spec.Diff)
		if err != nil {
			return nil, err
		}
		survivors = e.intersectChanged(survivors, changed)
	}

	if spec.IncludeDependencies {
		survivors = e.Graph.ForwardClosure(survivors)
	}
	if spec.IncludeDependents {
		survivors = e.Graph.ReverseClosure(survivors)
	}
	return survivors, nil
}

func (e *Engine) matchesAnyCategory(name string, categoryNames []string) bool {
	for _, cat := range categoryNames {
		globs, ok := e.Categories[cat]
		if !ok {
			continue // unknown category: warning, not failure; contributes no matches
		}
		if globmatch.MatchAny(globmatch.CompileAll(globs), name) {
			return true
		}
	}
	return false
}

func allDependenciesPresent(p *pkgmodel.Package, names []string) bool {
	for _, n := range names {
		if !p.DependsOn(n) {
			return false
		}
	}
	return true
}

func anyDependencyPresent(p *pkgmodel.Package, names []string) bool {
	for _, n := range names {
		if p.DependsOn(n) {
			return true
		}
	}
	return false
}

// intersectChanged keeps only packages whose Path is a prefix of at
// least one changed file (changed files are workspace-root-relative,
// as returned by `git diff --name-only`).
func (e *Engine) intersectChanged(packages []*pkgmodel.Package, changedFiles []string) []*pkgmodel.Package {
	var out []*pkgmodel.Package
	for _, p := range packages {
		for _, f := range changedFiles {
			abs := filepath.Join(e.Root, f)
			if pathUnder(abs, p.Path) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// pathUnder reports whether abs is pkgPath itself or a descendant of it.
func pathUnder(abs, pkgPath string) bool {
	rel, err := filepath.Rel(pkgPath, abs)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !hasDotDotPrefix(rel) && !filepath.IsAbs(rel)
}

func hasDotDotPrefix(rel string) bool {
	return len(rel) >= 2 && rel[0] == '.' && rel[1] == '.'
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
