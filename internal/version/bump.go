// Package version computes next-version strings and rewrites manifests
// and dependent constraints, covering independent, coordinated, and
// conventional-commits versioning modes.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/xcawolfe-amzn/monorel/internal/diagnostics"
)

// BumpKind enumerates the kinds of version bump the engine understands.
type BumpKind int

const (
	BumpNone BumpKind = iota
	BumpPatch
	BumpMinor
	BumpMajor
	BumpBuild
)

// Max returns the larger of two BumpKinds, used when folding multiple
// conventional commits down to one bump per package.
func (b BumpKind) Max(other BumpKind) BumpKind {
	if other > b {
		return other
	}
	return b
}

var buildSuffixRe = regexp.MustCompile(`^(.*?)\+(\d+)$`)

// splitBuildSuffix separates an ecosystem `+N` build suffix (not a
// standard semver +metadata tag, a bare trailing integer) from the
// base version string, for versions that carry one.
func splitBuildSuffix(v string) (base string, build int, hasBuild bool) {
	if m := buildSuffixRe.FindStringSubmatch(v); m != nil {
		n, err := strconv.Atoi(m[2])
		if err == nil {
			return m[1], n, true
		}
	}
	return v, 0, false
}

// Bump computes the next version string for current given mode and an
// optional explicit semver, which is used when mode is BumpNone (the
// zero value) or not one of the named kinds; BumpNone with no explicit
// version keeps current. preid is consulted only by PrereleaseBump.
func Bump(current string, mode BumpKind, explicit string) (string, error) {
	base, build, hasBuild := splitBuildSuffix(current)

	sv, err := semver.NewVersion(base)
	if err != nil {
		return "", diagnostics.Wrap(diagnostics.KindVersionError, err, "parsing current version %q", current)
	}

	switch mode {
	case BumpMajor:
		next := sv.IncMajor()
		return reattachBuild(next.String(), build, hasBuild), nil
	case BumpMinor:
		next := sv.IncMinor()
		return reattachBuild(next.String(), build, hasBuild), nil
	case BumpPatch:
		next := sv.IncPatch()
		return reattachBuild(next.String(), build, hasBuild), nil
	case BumpBuild:
		return fmt.Sprintf("%d.%d.%d+%d", sv.Major(), sv.Minor(), sv.Patch(), build+1), nil
	case BumpNone:
		if explicit == "" {
			return current, nil
		}
		fallthrough
	default:
		if explicit == "" {
			return "", diagnostics.New(diagnostics.KindVersionError, "explicit version required when bump kind is unset")
		}
		if _, err := semver.NewVersion(explicit); err != nil {
			return "", diagnostics.Wrap(diagnostics.KindVersionError, err, "parsing explicit version %q", explicit)
		}
		return explicit, nil
	}
}

func reattachBuild(base string, build int, hasBuild bool) string {
	if !hasBuild {
		return base
	}
	return fmt.Sprintf("%s+%d", base, build)
}

var prereleaseRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9.\-]*)\.(\d+)$`)

// PrereleaseBump computes the next version when --preid is set. See
// the three cases: same-preid counter bump, preid change, and a
// stable version transitioning into a prerelease.
func PrereleaseBump(current string, mode BumpKind, explicit, preid string) (string, error) {
	base, build, hasBuild := splitBuildSuffix(current)
	sv, err := semver.NewVersion(base)
	if err != nil {
		return "", diagnostics.Wrap(diagnostics.KindVersionError, err, "parsing current version %q", current)
	}

	pre := sv.Prerelease()
	if pre != "" {
		if m := prereleaseRe.FindStringSubmatch(pre); m != nil && m[1] == preid {
			k, _ := strconv.Atoi(m[2])
			next := fmt.Sprintf("%d.%d.%d-%s.%d", sv.Major(), sv.Minor(), sv.Patch(), preid, k+1)
			return reattachBuild(next, build, hasBuild), nil
		}
		next := fmt.Sprintf("%d.%d.%d-%s.0", sv.Major(), sv.Minor(), sv.Patch(), preid)
		return reattachBuild(next, build, hasBuild), nil
	}

	bumped, err := Bump(base, mode, explicit)
	if err != nil {
		return "", err
	}
	bumpedBase, _, _ := splitBuildSuffix(bumped)
	bsv, err := semver.NewVersion(bumpedBase)
	if err != nil {
		return "", diagnostics.Wrap(diagnostics.KindVersionError, err, "parsing bumped base %q", bumpedBase)
	}
	next := fmt.Sprintf("%d.%d.%d-%s.0", bsv.Major(), bsv.Minor(), bsv.Patch(), preid)
	return reattachBuild(next, build, hasBuild), nil
}

// Graduate strips a prerelease tag, leaving the stable base. It is a
// no-op when current is already stable.
func Graduate(current string) (string, error) {
	base, build, hasBuild := splitBuildSuffix(current)
	sv, err := semver.NewVersion(base)
	if err != nil {
		return "", diagnostics.Wrap(diagnostics.KindVersionError, err, "parsing current version %q", current)
	}
	next := fmt.Sprintf("%d.%d.%d", sv.Major(), sv.Minor(), sv.Patch())
	return reattachBuild(next, build, hasBuild), nil
}

// HighestBase returns the highest M.m.p among currents, ignoring
// prerelease tags and build suffixes, for coordinated-mode versioning.
func HighestBase(currents []string) (string, error) {
	if len(currents) == 0 {
		return "", diagnostics.New(diagnostics.KindVersionError, "no package versions supplied")
	}
	var max *semver.Version
	for _, c := range currents {
		base, _, _ := splitBuildSuffix(c)
		sv, err := semver.NewVersion(base)
		if err != nil {
			return "", diagnostics.Wrap(diagnostics.KindVersionError, err, "parsing version %q", c)
		}
		stable := semver.New(sv.Major(), sv.Minor(), sv.Patch(), "", "")
		if max == nil || stable.GreaterThan(max) {
			max = stable
		}
	}
	return max.String(), nil
}

// StripBuildSuffix removes a trailing `+N` suffix, used when rewriting
// dependent constraints (which never reference the build counter).
func StripBuildSuffix(v string) string {
	base, _, _ := splitBuildSuffix(v)
	return base
}

// ParseBumpKind maps a CLI bump token to a BumpKind; ok is false for
// an explicit-version token, which the caller treats as explicit input.
func ParseBumpKind(token string) (BumpKind, bool) {
	switch strings.ToLower(token) {
	case "major":
		return BumpMajor, true
	case "minor":
		return BumpMinor, true
	case "patch":
		return BumpPatch, true
	case "build":
		return BumpBuild, true
	case "none":
		return BumpNone, true
	default:
		return BumpNone, false
	}
}
