package version

import (
	"regexp"
	"strings"
)

// Commit is a parsed conventional-commit, carrying enough to compute a
// BumpKind and to feed the changelog engine.
type Commit struct {
	Hash        string
	Type        string
	Scope       string
	Breaking    bool
	Description string
	Body        string
}

var headerRe = regexp.MustCompile(`^(?P<type>[a-z]+)(?:\((?P<scope>[^)]+)\))?(?P<breaking>!)?:\s*(?P<desc>.+)$`)

var breakingFooterRe = regexp.MustCompile(`(?m)^BREAKING[ -]CHANGE:\s*(.*)$`)

// ParseCommit parses a raw commit header+body into a Commit. ok is
// false when the header line doesn't match the conventional-commits
// grammar, in which case the commit contributes no bump.
func ParseCommit(hash, header, body string) (Commit, bool) {
	m := headerRe.FindStringSubmatch(header)
	if m == nil {
		return Commit{}, false
	}
	names := headerRe.SubexpNames()
	c := Commit{Hash: hash, Body: body}
	for i, name := range names {
		switch name {
		case "type":
			c.Type = m[i]
		case "scope":
			c.Scope = m[i]
		case "breaking":
			c.Breaking = m[i] != ""
		case "desc":
			c.Description = strings.TrimSpace(m[i])
		}
	}
	if breakingFooterRe.MatchString(body) {
		c.Breaking = true
	}
	return c, true
}

// Bump derives the BumpKind implied by this commit alone: Major if
// breaking, Minor for feat, Patch for fix, None otherwise.
func (c Commit) Bump() BumpKind {
	switch {
	case c.Breaking:
		return BumpMajor
	case c.Type == "feat":
		return BumpMinor
	case c.Type == "fix":
		return BumpPatch
	default:
		return BumpNone
	}
}

// Section maps a commit type to its fixed changelog section name.
func (c Commit) Section() string {
	switch c.Type {
	case "feat":
		return "Features"
	case "fix":
		return "Bug Fixes"
	case "perf":
		return "Performance Improvements"
	case "refactor":
		return "Code Refactoring"
	case "docs":
		return "Documentation"
	case "test":
		return "Tests"
	case "ci":
		return "CI"
	case "build":
		return "Build"
	case "style":
		return "Style"
	case "chore":
		return "Chores"
	default:
		return "Other Changes"
	}
}
