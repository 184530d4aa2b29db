package changelog

import (
	"github.com/xcawolfe-amzn/monorel/internal/config"
	"github.com/xcawolfe-amzn/monorel/internal/globmatch"
	"github.com/xcawolfe-amzn/monorel/internal/pkgmodel"
	"github.com/xcawolfe-amzn/monorel/internal/version"
)

// SourceCommits pairs a package with the conventional commits mapped
// to it, the unit the aggregate filters operate over.
type SourceCommits struct {
	Package *pkgmodel.Package
	Commits []version.Commit
}

// MatchesAggregateFilter reports whether pkg passes an aggregate
// changelog's filter, which only honors scope and ignore globs —
// every other FilterSpec predicate is ignored for aggregates.
func MatchesAggregateFilter(pkg *pkgmodel.Package, spec config.FilterSpec) bool {
	if len(spec.Scope) > 0 {
		patterns := globmatch.CompileAll(spec.Scope)
		if !globmatch.MatchAny(patterns, pkg.Name) {
			return false
		}
	}
	if len(spec.Ignore) > 0 {
		patterns := globmatch.CompileAll(spec.Ignore)
		if globmatch.MatchAny(patterns, pkg.Name) {
			return false
		}
	}
	return true
}

// UnionCommits collects every commit from sources whose package
// matches spec's scope/ignore globs.
func UnionCommits(sources []SourceCommits, spec config.FilterSpec) []version.Commit {
	var out []version.Commit
	for _, s := range sources {
		if !MatchesAggregateFilter(s.Package, spec) {
			continue
		}
		out = append(out, s.Commits...)
	}
	return out
}
