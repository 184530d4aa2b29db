package version

import "testing"

func TestParseCommit_FeatWithScope(t *testing.T) {
	c, ok := ParseCommit("abc123", "feat(auth): add SSO login", "")
	if !ok {
		t.Fatal("expected match")
	}
	if c.Type != "feat" || c.Scope != "auth" || c.Breaking {
		t.Fatalf("got %+v", c)
	}
	if c.Bump() != BumpMinor {
		t.Fatalf("expected minor bump, got %v", c.Bump())
	}
}

func TestParseCommit_BreakingBang(t *testing.T) {
	c, ok := ParseCommit("abc", "feat!: drop legacy API", "")
	if !ok || !c.Breaking {
		t.Fatalf("expected breaking commit, got %+v ok=%v", c, ok)
	}
	if c.Bump() != BumpMajor {
		t.Fatalf("expected major bump")
	}
}

func TestParseCommit_BreakingFooter(t *testing.T) {
	c, ok := ParseCommit("abc", "fix: patch a bug", "BREAKING CHANGE: removes old flag")
	if !ok || !c.Breaking {
		t.Fatalf("expected footer to mark breaking, got %+v ok=%v", c, ok)
	}
}

func TestParseCommit_NonConventionalRejected(t *testing.T) {
	_, ok := ParseCommit("abc", "just a random message", "")
	if ok {
		t.Fatal("expected no match")
	}
}

func TestCommit_Section(t *testing.T) {
	cases := map[string]string{
		"feat": "Features", "fix": "Bug Fixes", "perf": "Performance Improvements",
		"refactor": "Code Refactoring", "docs": "Documentation", "test": "Tests",
		"ci": "CI", "build": "Build", "style": "Style", "chore": "Chores",
		"weird": "Other Changes",
	}
	for typ, want := range cases {
		c := Commit{Type: typ}
		if got := c.Section(); got != want {
			t.Errorf("Section(%q) = %q, want %q", typ, got, want)
		}
	}
}
