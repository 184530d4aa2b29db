package version

import (
	"path/filepath"
	"strings"

	"github.com/xcawolfe-amzn/monorel/internal/diagnostics"
	"github.com/xcawolfe-amzn/monorel/internal/gitutil"
	"github.com/xcawolfe-amzn/monorel/internal/pkgmodel"
)

// Request describes one version invocation's inputs.
type Request struct {
	Mode             BumpKind
	Explicit         string
	Preid            string
	Coordinated      bool
	Overrides        map[string]string // name -> bump token or explicit version
	ConventionalMode bool
	DependentVersions bool
	DependentPreid   string
	Prerelease       bool
}

// BuildPlan computes the (package, next version) assignment for the
// given packages under req. In conventional-commits mode, commitsByPackage
// supplies the pre-parsed, per-package-mapped commit set; otherwise it
// is ignored.
func BuildPlan(packages []*pkgmodel.Package, req Request, commitsByPackage map[string][]Commit) ([]PlanEntry, error) {
	if req.ConventionalMode {
		return buildConventionalPlan(packages, req, commitsByPackage)
	}
	if req.Coordinated {
		return buildCoordinatedPlan(packages, req)
	}
	return buildIndependentPlan(packages, req)
}

func buildIndependentPlan(packages []*pkgmodel.Package, req Request) ([]PlanEntry, error) {
	var out []PlanEntry
	for _, p := range packages {
		mode, explicit := resolveOverride(p.Name, req)
		next, err := bumpOne(p.Version, mode, explicit, req.Preid, req.Prerelease)
		if err != nil {
			return nil, err
		}
		out = append(out, PlanEntry{Package: p, Next: next})
	}
	return out, nil
}

func buildCoordinatedPlan(packages []*pkgmodel.Package, req Request) ([]PlanEntry, error) {
	currents := make([]string, 0, len(packages))
	for _, p := range packages {
		currents = append(currents, p.Version)
	}
	highest, err := HighestBase(currents)
	if err != nil {
		return nil, err
	}
	target, err := bumpOne(highest, req.Mode, req.Explicit, req.Preid, req.Prerelease)
	if err != nil {
		return nil, err
	}
	out := make([]PlanEntry, 0, len(packages))
	for _, p := range packages {
		out = append(out, PlanEntry{Package: p, Next: target})
	}
	return out, nil
}

func buildConventionalPlan(packages []*pkgmodel.Package, req Request, commitsByPackage map[string][]Commit) ([]PlanEntry, error) {
	var out []PlanEntry
	for _, p := range packages {
		commits := commitsByPackage[p.Name]
		bump := BumpNone
		for _, c := range commits {
			bump = bump.Max(c.Bump())
		}
		if bump == BumpNone {
			continue
		}
		next, err := bumpOne(p.Version, bump, "", req.Preid, req.Prerelease)
		if err != nil {
			return nil, err
		}
		out = append(out, PlanEntry{Package: p, Next: next})
	}
	return out, nil
}

// GraduatePlan builds a plan that strips the prerelease tag from every
// package in packages, implementing `monorel version --graduate`.
// Packages already on a stable version are included with Next equal to
// their current version (Graduate is idempotent on those).
func GraduatePlan(packages []*pkgmodel.Package) ([]PlanEntry, error) {
	out := make([]PlanEntry, 0, len(packages))
	for _, p := range packages {
		next, err := Graduate(p.Version)
		if err != nil {
			return nil, err
		}
		out = append(out, PlanEntry{Package: p, Next: next})
	}
	return out, nil
}

// ExpandDependentBumps implements the `--dependent-versions` rule: for
// every package already in plan, any other package whose manifest
// constraint on it will be rewritten (per DependentsToUpdate) gets a
// patch bump of its own, unless it is already present in plan. Preid
// comes from req.DependentPreid, falling back to req.Preid, matching
// the `--dependent-preid` override semantics.
func ExpandDependentBumps(plan []PlanEntry, allPackages []*pkgmodel.Package, req Request) ([]PlanEntry, error) {
	if !req.DependentVersions {
		return plan, nil
	}
	preid := req.DependentPreid
	if preid == "" {
		preid = req.Preid
	}

	inPlan := make(map[string]bool, len(plan))
	for _, e := range plan {
		inPlan[e.Package.Name] = true
	}

	out := append([]PlanEntry{}, plan...)
	for _, e := range plan {
		for _, dependent := range DependentsToUpdate(allPackages, e.Package) {
			if inPlan[dependent.Name] {
				continue
			}
			next, err := bumpOne(dependent.Version, BumpPatch, "", preid, req.Prerelease)
			if err != nil {
				return nil, err
			}
			out = append(out, PlanEntry{Package: dependent, Next: next})
			inPlan[dependent.Name] = true
		}
	}
	return out, nil
}

func resolveOverride(name string, req Request) (BumpKind, string) {
	if token, ok := req.Overrides[name]; ok {
		if kind, isKind := ParseBumpKind(token); isKind {
			return kind, ""
		}
		return 0, token
	}
	return req.Mode, req.Explicit
}

func bumpOne(current string, mode BumpKind, explicit, preid string, prerelease bool) (string, error) {
	if preid != "" || prerelease {
		if preid == "" {
			preid = "rc"
		}
		return PrereleaseBump(current, mode, explicit, preid)
	}
	return Bump(current, mode, explicit)
}

// MapCommitsToPackages maps each commit (identified by hash) to the
// packages whose relative path contains one of its changed files,
// using `git diff-tree --no-commit-id -r --name-only <hash>`.
func MapCommitsToPackages(git gitutil.Runner, root string, packages []*pkgmodel.Package, commits []Commit) (map[string][]Commit, error) {
	out := make(map[string][]Commit, len(packages))
	for _, c := range commits {
		files, err := git.DiffTreeNames(c.Hash)
		if err != nil {
			return nil, diagnostics.Wrap(diagnostics.KindGitError, err, "diff-tree for %s", c.Hash)
		}
		for _, p := range packages {
			rel, err := filepath.Rel(root, p.Path)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			for _, f := range files {
				if strings.HasPrefix(f, rel+"/") || f == rel {
					out[p.Name] = append(out[p.Name], c)
					break
				}
			}
		}
	}
	return out, nil
}
