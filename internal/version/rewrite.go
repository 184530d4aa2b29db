package version

import (
	"fmt"
	"os"
	"regexp"

	"github.com/gofrs/flock"

	"github.com/xcawolfe-amzn/monorel/internal/diagnostics"
	"github.com/xcawolfe-amzn/monorel/internal/pkgmodel"
)

var versionLineRe = regexp.MustCompile(`(?m)^version:\s*\S+`)

// RewriteManifestVersion rewrites the `version:` line in the manifest
// at manifestPath to next, under an flock-guarded read-modify-write so
// concurrent rewrites across the workspace don't interleave.
func RewriteManifestVersion(manifestPath, next string) error {
	return withLock(manifestPath, func() error {
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			return diagnostics.Wrap(diagnostics.KindVersionError, err, "reading manifest %s", manifestPath)
		}
		rewritten := versionLineRe.ReplaceAll(data, []byte("version: "+next))
		return os.WriteFile(manifestPath, rewritten, 0644)
	})
}

var constraintPrefixRe = regexp.MustCompile(`^[<>=^~0-9]`)

// RewriteDependentConstraint rewrites the constraint entry for
// depName inside the manifest at manifestPath to `^<version>`. Path-only,
// git-only, and SDK-only dependency entries (detected by the caller via
// pkgmodel.Package.DependencyVersions, which only tracks version-bearing
// entries) are never reached by this call.
//
// depName may be declared either in same-line string form
// (`depName: ^1.0.0`) or in map form (`depName:` followed by an indented
// block with its own `version:` sub-key); both are rewritten in place.
func RewriteDependentConstraint(manifestPath, depName, version string) error {
	return withLock(manifestPath, func() error {
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			return diagnostics.Wrap(diagnostics.KindVersionError, err, "reading manifest %s", manifestPath)
		}

		line := regexp.MustCompile(`(?m)^(\s*` + regexp.QuoteMeta(depName) + `:[ \t]*)\S+\s*$`)
		if line.Match(data) {
			rewritten := line.ReplaceAllFunc(data, func(match []byte) []byte {
				sub := line.FindSubmatch(match)
				return append(append([]byte{}, sub[1]...), []byte(fmt.Sprintf("^%s", version))...)
			})
			return os.WriteFile(manifestPath, rewritten, 0644)
		}

		rewritten := rewriteMapFormConstraint(data, depName, version)
		return os.WriteFile(manifestPath, rewritten, 0644)
	})
}

// rewriteMapFormConstraint rewrites the `version:` sub-key of depName's
// mapping-form dependency block. The block runs from depName's bare-key
// header line up to (but not including) the next line indented at or
// below the header's own indentation, mirroring YAML's block-scoping
// rule without a full parse. data is returned unchanged if depName has
// no bare-key header, or its block has no `version:` sub-key.
func rewriteMapFormConstraint(data []byte, depName, version string) []byte {
	header := regexp.MustCompile(`(?m)^([ \t]*)` + regexp.QuoteMeta(depName) + `:[ \t]*$`)
	loc := header.FindSubmatchIndex(data)
	if loc == nil {
		return data
	}
	indent := data[loc[2]:loc[3]]

	bodyStart := loc[1]
	if bodyStart < len(data) && data[bodyStart] == '\n' {
		bodyStart++
	}

	bodyEnd := len(data)
	sibling := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(string(indent)) + `\S`)
	if m := sibling.FindIndex(data[bodyStart:]); m != nil {
		bodyEnd = bodyStart + m[0]
	}

	block := data[bodyStart:bodyEnd]
	versionKey := regexp.MustCompile(`(?m)^(\s*version:[ \t]*)\S+`)
	vloc := versionKey.FindSubmatchIndex(block)
	if vloc == nil {
		return data
	}

	out := append([]byte{}, data[:bodyStart]...)
	out = append(out, block[:vloc[3]]...)
	out = append(out, []byte(fmt.Sprintf("^%s", version))...)
	out = append(out, block[vloc[1]:]...)
	out = append(out, data[bodyEnd:]...)
	return out
}

// ShouldRewriteConstraint reports whether a raw constraint value (as
// found in pkgmodel.Package.DependencyVersions) is a version-form
// constraint eligible for rewrite, versus path/git/SDK entries which
// this function excludes.
func ShouldRewriteConstraint(raw string) bool {
	return constraintPrefixRe.MatchString(raw)
}

// RewriteGitTagRef updates the `ref: <dep>-v<old>` line inside a git
// dependency block for depName to point at newVersion.
func RewriteGitTagRef(manifestPath, depName, newVersion string) error {
	return withLock(manifestPath, func() error {
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			return diagnostics.Wrap(diagnostics.KindVersionError, err, "reading manifest %s", manifestPath)
		}
		pattern := regexp.MustCompile(fmt.Sprintf(`(?s)(%s:.*?ref:\s*)%s-v[^\s]+`, regexp.QuoteMeta(depName), regexp.QuoteMeta(depName)))
		rewritten := pattern.ReplaceAll(data, []byte(fmt.Sprintf("${1}%s-v%s", depName, newVersion)))
		return os.WriteFile(manifestPath, rewritten, 0644)
	})
}

// withLock serializes reads/rewrites of one manifest path across
// goroutines using a sibling lockfile, mirroring the teacher's use of
// gofrs/flock to guard concurrent state mutation.
func withLock(path string, fn func() error) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return diagnostics.Wrap(diagnostics.KindVersionError, err, "locking %s", path)
	}
	defer lock.Unlock()
	return fn()
}

// PlanEntry is one (package, next version) row in a version plan.
type PlanEntry struct {
	Package *pkgmodel.Package
	Next    string
}

// DependentsToUpdate returns, for a bumped package, the set of other
// packages whose manifest constraint on it must be rewritten.
func DependentsToUpdate(all []*pkgmodel.Package, bumped *pkgmodel.Package) []*pkgmodel.Package {
	var out []*pkgmodel.Package
	for _, q := range all {
		if q.Name == bumped.Name {
			continue
		}
		if raw, ok := q.DependencyVersions[bumped.Name]; ok && ShouldRewriteConstraint(raw) {
			out = append(out, q)
		}
	}
	return out
}
