package changelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xcawolfe-amzn/monorel/internal/config"
	"github.com/xcawolfe-amzn/monorel/internal/pkgmodel"
	"github.com/xcawolfe-amzn/monorel/internal/version"
)

func effectiveDefaults() config.EffectiveChangelogConfig {
	return config.ChangelogConfig{}.Effective()
}

func TestWriteWorkspaceChangelog_NoOpWhenDisabled(t *testing.T) {
	root := t.TempDir()
	opts := effectiveDefaults()
	opts.WorkspaceChangelog = false
	sources := []SourceCommits{{Package: &pkgmodel.Package{Name: "a"}, Commits: []version.Commit{{Type: "feat", Description: "x"}}}}

	if err := WriteWorkspaceChangelog(root, sources, "1.0.0", opts, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "CHANGELOG.md")); !os.IsNotExist(err) {
		t.Fatalf("expected no CHANGELOG.md to be written when disabled")
	}
}

func TestWriteWorkspaceChangelog_NoOpWithoutVersion(t *testing.T) {
	root := t.TempDir()
	opts := effectiveDefaults()
	sources := []SourceCommits{{Package: &pkgmodel.Package{Name: "a"}, Commits: []version.Commit{{Type: "feat", Description: "x"}}}}

	if err := WriteWorkspaceChangelog(root, sources, "", opts, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "CHANGELOG.md")); !os.IsNotExist(err) {
		t.Fatalf("expected no CHANGELOG.md to be written with no new version")
	}
}

func TestWriteWorkspaceChangelog_WritesAggregateEntry(t *testing.T) {
	root := t.TempDir()
	opts := effectiveDefaults()
	sources := []SourceCommits{
		{Package: &pkgmodel.Package{Name: "a"}, Commits: []version.Commit{{Type: "feat", Description: "new thing"}}},
		{Package: &pkgmodel.Package{Name: "b"}, Commits: []version.Commit{{Type: "fix", Description: "broken thing"}}},
	}

	if err := WriteWorkspaceChangelog(root, sources, "1.2.0", opts, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "CHANGELOG.md"))
	if err != nil {
		t.Fatalf("expected CHANGELOG.md to be written: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "## 1.2.0") || !strings.Contains(text, "new thing") || !strings.Contains(text, "broken thing") {
		t.Fatalf("expected combined entry across packages, got:\n%s", text)
	}
}

func TestWriteAggregateChangelogs_WritesConfiguredOutputs(t *testing.T) {
	root := t.TempDir()
	opts := effectiveDefaults()
	sources := []SourceCommits{
		{Package: &pkgmodel.Package{Name: "app_mobile"}, Commits: []version.Commit{{Type: "feat", Description: "mobile feature"}}},
		{Package: &pkgmodel.Package{Name: "lib_core"}, Commits: []version.Commit{{Type: "feat", Description: "core feature"}}},
	}
	aggregates := []config.AggregateChangelog{
		{
			Path:        "apps/CHANGELOG.md",
			Description: "Changes across app packages.",
			Filters:     config.FilterSpec{Scope: []string{"app_*"}},
		},
	}

	if err := WriteAggregateChangelogs(root, sources, aggregates, "2.0.0", opts, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "apps", "CHANGELOG.md"))
	if err != nil {
		t.Fatalf("expected apps/CHANGELOG.md to be written: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "mobile feature") {
		t.Fatalf("expected mobile feature entry, got:\n%s", text)
	}
	if strings.Contains(text, "core feature") {
		t.Fatalf("did not expect lib_core's commit in the app-scoped aggregate, got:\n%s", text)
	}
	if !strings.Contains(text, "Changes across app packages.") {
		t.Fatalf("expected configured description in new aggregate file, got:\n%s", text)
	}
}
