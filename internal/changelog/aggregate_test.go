package changelog

import (
	"testing"

	"github.com/xcawolfe-amzn/monorel/internal/config"
	"github.com/xcawolfe-amzn/monorel/internal/pkgmodel"
	"github.com/xcawolfe-amzn/monorel/internal/version"
)

func TestMatchesAggregateFilter_ScopeAndIgnore(t *testing.T) {
	pkg := &pkgmodel.Package{Name: "app_mobile"}
	spec := config.FilterSpec{Scope: []string{"app_*"}}
	if !MatchesAggregateFilter(pkg, spec) {
		t.Fatalf("expected app_mobile to match app_* scope")
	}

	spec = config.FilterSpec{Ignore: []string{"app_*"}}
	if MatchesAggregateFilter(pkg, spec) {
		t.Fatalf("expected app_mobile to be excluded by app_* ignore")
	}

	spec = config.FilterSpec{Scope: []string{"lib_*"}}
	if MatchesAggregateFilter(pkg, spec) {
		t.Fatalf("expected app_mobile not to match lib_* scope")
	}
}

func TestUnionCommits_OnlyMatchedPackages(t *testing.T) {
	sources := []SourceCommits{
		{Package: &pkgmodel.Package{Name: "app_a"}, Commits: []version.Commit{{Type: "feat", Description: "one"}}},
		{Package: &pkgmodel.Package{Name: "lib_b"}, Commits: []version.Commit{{Type: "fix", Description: "two"}}},
	}
	spec := config.FilterSpec{Scope: []string{"app_*"}}
	commits := UnionCommits(sources, spec)
	if len(commits) != 1 || commits[0].Description != "one" {
		t.Fatalf("expected only app_a's commit, got %+v", commits)
	}
}

func TestUnionCommits_NoFilterIncludesEverything(t *testing.T) {
	sources := []SourceCommits{
		{Package: &pkgmodel.Package{Name: "a"}, Commits: []version.Commit{{Type: "feat", Description: "one"}}},
		{Package: &pkgmodel.Package{Name: "b"}, Commits: []version.Commit{{Type: "fix", Description: "two"}}},
	}
	commits := UnionCommits(sources, config.FilterSpec{})
	if len(commits) != 2 {
		t.Fatalf("expected both commits with an empty filter, got %d", len(commits))
	}
}
