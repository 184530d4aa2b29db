package changelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xcawolfe-amzn/monorel/internal/config"
	"github.com/xcawolfe-amzn/monorel/internal/version"
)

func TestRenderEntry_GroupingAndOrdering(t *testing.T) {
	commits := []version.Commit{
		{Type: "fix", Description: "patch a leak", Hash: "bbb"},
		{Type: "feat", Description: "add widgets", Hash: "aaa"},
		{Type: "chore", Description: "bump deps", Hash: "ccc"},
	}
	opts := config.ChangelogConfig{}.Effective()
	entry := RenderEntry("1.2.0", commits, opts, "")

	featIdx := strings.Index(entry, "### Features")
	fixIdx := strings.Index(entry, "### Bug Fixes")
	choreIdx := strings.Index(entry, "### Chores")
	if featIdx < 0 || fixIdx < 0 || choreIdx < 0 {
		t.Fatalf("expected all three sections present:\n%s", entry)
	}
	if !(featIdx < fixIdx && fixIdx < choreIdx) {
		t.Fatalf("expected fixed section ordering, got:\n%s", entry)
	}
	if !strings.HasPrefix(entry, "## 1.2.0") {
		t.Fatalf("expected header without date, got:\n%s", entry)
	}
}

func TestRenderEntry_BreakingChangeAnnotated(t *testing.T) {
	commits := []version.Commit{
		{Type: "feat", Description: "remove old flag", Breaking: true, Hash: "x"},
	}
	opts := config.ChangelogConfig{}.Effective()
	entry := RenderEntry("2.0.0", commits, opts, "")
	if !strings.Contains(entry, "**BREAKING CHANGE**") {
		t.Fatalf("expected breaking annotation, got:\n%s", entry)
	}
}

func TestRenderEntry_IncludeTypesWinsOverExclude(t *testing.T) {
	commits := []version.Commit{
		{Type: "feat", Description: "a", Hash: "1"},
		{Type: "fix", Description: "b", Hash: "2"},
	}
	opts := config.ChangelogConfig{}.Effective()
	opts.IncludeTypes = []string{"feat"}
	opts.ExcludeTypes = []string{"feat"}
	entry := RenderEntry("1.0.0", commits, opts, "")
	if !strings.Contains(entry, "### Features") || strings.Contains(entry, "### Bug Fixes") {
		t.Fatalf("expected include_types to win, got:\n%s", entry)
	}
}

func TestRenderEntry_NoSurvivingCommitsIsEmpty(t *testing.T) {
	opts := config.ChangelogConfig{}.Effective()
	opts.IncludeTypes = []string{"feat"}
	entry := RenderEntry("1.0.0", []version.Commit{{Type: "fix", Description: "x"}}, opts, "")
	if entry != "" {
		t.Fatalf("expected empty entry, got %q", entry)
	}
}

func TestPrepend_MissingFileCreatesHeading(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CHANGELOG.md")
	if err := Prepend(path, "## 1.0.0\n\nfirst entry\n"); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "# Changelog\n\n") {
		t.Fatalf("expected heading, got:\n%s", data)
	}
}

func TestPrepend_ExistingHeadingInsertsAfter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CHANGELOG.md")
	if err := os.WriteFile(path, []byte("# Changelog\n\n## 1.0.0\n\nold entry\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Prepend(path, "## 2.0.0\n\nnew entry\n"); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "# Changelog\n\n## 2.0.0") {
		t.Fatalf("expected new entry right after heading, got:\n%s", data)
	}
	if !strings.Contains(string(data), "## 1.0.0") {
		t.Fatalf("expected old entry preserved, got:\n%s", data)
	}
}
