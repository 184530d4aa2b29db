package changelog

import (
	"os"
	"path/filepath"

	"github.com/xcawolfe-amzn/monorel/internal/config"
	"github.com/xcawolfe-amzn/monorel/internal/version"
)

// WriteWorkspaceChangelog writes the top-level changelog at root,
// composed from every commit across sources, headed by the first
// versioned package's new version. It is a no-op when disabled or
// when no package was actually versioned.
func WriteWorkspaceChangelog(root string, sources []SourceCommits, firstNewVersion string, opts config.EffectiveChangelogConfig, repository string) error {
	if !opts.WorkspaceChangelog || firstNewVersion == "" {
		return nil
	}
	var all []version.Commit
	for _, s := range sources {
		all = append(all, s.Commits...)
	}
	entry := RenderEntry(firstNewVersion, all, opts, repository)
	if entry == "" {
		return nil
	}
	return Prepend(filepath.Join(root, "CHANGELOG.md"), entry)
}

// WriteAggregateChangelogs writes every configured aggregate output.
func WriteAggregateChangelogs(root string, sources []SourceCommits, aggregates []config.AggregateChangelog, targetVersion string, opts config.EffectiveChangelogConfig, repository string) error {
	for _, agg := range aggregates {
		commits := UnionCommits(sources, agg.Filters)
		entry := RenderEntry(targetVersion, commits, opts, repository)
		if entry == "" {
			continue
		}
		path := agg.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := PrependWithDescription(path, entry, agg.Description); err != nil {
			return err
		}
	}
	return nil
}
