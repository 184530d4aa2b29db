// Package globmatch implements the shell-glob-with-substring-fallback
// matching semantics shared by package discovery, the filter engine,
// and category membership checks.
package globmatch

import "github.com/gobwas/glob"

// Pattern is one compiled glob, or (when compilation fails) a raw
// string matched by substring containment.
type Pattern struct {
	compiled glob.Glob
	raw      string
}

// Compile builds a Pattern from a glob string. Compilation failures are
// not reported: the pattern silently falls back to substring matching,
// per spec (§4.4: "when pattern compilation fails, fall back to
// substring containment").
func Compile(pattern string) Pattern {
	g, err := glob.Compile(pattern)
	if err != nil {
		return Pattern{raw: pattern}
	}
	return Pattern{compiled: g, raw: pattern}
}

// CompileAll compiles a slice of glob strings.
func CompileAll(patterns []string) []Pattern {
	out := make([]Pattern, len(patterns))
	for i, p := range patterns {
		out[i] = Compile(p)
	}
	return out
}

// Match reports whether name matches the pattern.
func (p Pattern) Match(name string) bool {
	if p.compiled != nil {
		return p.compiled.Match(name)
	}
	return contains(name, p.raw)
}

// MatchAny reports whether name matches at least one of the patterns.
// An empty pattern list always returns false.
func MatchAny(patterns []Pattern, name string) bool {
	for _, p := range patterns {
		if p.Match(name) {
			return true
		}
	}
	return false
}

func contains(s, sub string) bool {
	if sub == "" {
		return false
	}
	n, m := len(s), len(sub)
	if m > n {
		return false
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == sub {
			return true
		}
	}
	return false
}
