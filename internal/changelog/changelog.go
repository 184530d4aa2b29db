// Package changelog renders and prepends CHANGELOG.md entries from
// conventional commits, grouped into fixed sections.
package changelog

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xcawolfe-amzn/monorel/internal/config"
	"github.com/xcawolfe-amzn/monorel/internal/version"
)

// sectionOrder is the fixed rendering order; sections not present are omitted.
var sectionOrder = []string{
	"Features", "Bug Fixes", "Performance Improvements", "Code Refactoring",
	"Documentation", "Tests", "CI", "Build", "Style", "Chores", "Other Changes",
}

// RenderEntry renders one `## <version>` changelog entry from commits
// under opts, or "" if no commit survives the type filters.
func RenderEntry(targetVersion string, commits []version.Commit, opts config.EffectiveChangelogConfig, repository string) string {
	filtered := filterByType(commits, opts)
	if len(filtered) == 0 {
		return ""
	}

	grouped := map[string][]version.Commit{}
	for _, c := range filtered {
		grouped[c.Section()] = append(grouped[c.Section()], c)
	}

	var sb strings.Builder
	sb.WriteString(header(targetVersion, opts.IncludeDate))
	sb.WriteString("\n\n")

	wroteSection := false
	for _, section := range sectionOrder {
		entries := grouped[section]
		if len(entries) == 0 {
			continue
		}
		if wroteSection {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("### %s\n\n", section))
		for _, c := range entries {
			sb.WriteString(renderBullet(c, opts, repository))
			sb.WriteString("\n")
		}
		wroteSection = true
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func header(targetVersion string, includeDate bool) string {
	if includeDate {
		return fmt.Sprintf("## %s (%s)", targetVersion, time.Now().Format("2006-01-02"))
	}
	return fmt.Sprintf("## %s", targetVersion)
}

func filterByType(commits []version.Commit, opts config.EffectiveChangelogConfig) []version.Commit {
	if len(opts.IncludeTypes) == 0 && len(opts.ExcludeTypes) == 0 {
		return commits
	}
	var out []version.Commit
	for _, c := range commits {
		if len(opts.IncludeTypes) > 0 {
			if contains(opts.IncludeTypes, c.Type) {
				out = append(out, c)
			}
			continue
		}
		if !contains(opts.ExcludeTypes, c.Type) {
			out = append(out, c)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func renderBullet(c version.Commit, opts config.EffectiveChangelogConfig, repository string) string {
	var sb strings.Builder
	sb.WriteString("- ")
	if opts.IncludeScopes && c.Scope != "" {
		sb.WriteString(fmt.Sprintf("**%s**: ", c.Scope))
	}
	sb.WriteString(c.Description)
	if opts.IncludeCommitID {
		if repository != "" {
			sb.WriteString(fmt.Sprintf(" ([%s](%s/commit/%s))", c.Hash, repository, c.Hash))
		} else {
			sb.WriteString(fmt.Sprintf(" (%s)", c.Hash))
		}
	}
	if opts.IncludeCommitBody && (!opts.OnlyBreakingBody || c.Breaking) && c.Body != "" {
		sb.WriteString("\n  " + strings.ReplaceAll(c.Body, "\n", "\n  "))
	}
	if c.Breaking {
		sb.WriteString("\n  **BREAKING CHANGE**")
	}
	return sb.String()
}

// Prepend writes entry to path, inserting it after an existing `# `
// heading when present, or creating `# Changelog` when the file is
// missing or empty.
func Prepend(path, entry string) error {
	existing, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		existing = nil
	}

	if len(strings.TrimSpace(string(existing))) == 0 {
		return os.WriteFile(path, []byte("# Changelog\n\n"+entry), 0644)
	}

	text := string(existing)
	if strings.HasPrefix(text, "# ") {
		nl := strings.IndexByte(text, '\n')
		if nl < 0 {
			nl = len(text)
		}
		heading := text[:nl]
		rest := strings.TrimPrefix(text[nl:], "\n")
		return os.WriteFile(path, []byte(heading+"\n\n"+entry+"\n"+rest), 0644)
	}

	return os.WriteFile(path, []byte(entry+"\n"+text), 0644)
}

// PrependWithDescription is Prepend's variant for a not-yet-existing
// aggregate changelog that carries a configured description line.
func PrependWithDescription(path, entry, description string) error {
	if _, err := os.Stat(path); err == nil {
		return Prepend(path, entry)
	}
	header := "# Changelog\n\n"
	if description != "" {
		header += description + "\n\n"
	}
	return os.WriteFile(path, []byte(header+entry), 0644)
}
