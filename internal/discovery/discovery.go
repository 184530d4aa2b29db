// Package discovery enumerates every Package reachable from the
// workspace root via the config's glob patterns.
package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/mattn/go-zglob"

	"github.com/xcawolfe-amzn/monorel/internal/config"
	"github.com/xcawolfe-amzn/monorel/internal/globmatch"
	"github.com/xcawolfe-amzn/monorel/internal/manifest"
	"github.com/xcawolfe-amzn/monorel/internal/pkgmodel"
)

// excludedDirNames hold cached/derived artifacts that must never appear
// as workspace packages, even if a glob pattern would otherwise match them.
var excludedDirNames = map[string]struct{}{
	".dart_tool":       {},
	".symlinks":        {},
	".plugin_symlinks": {},
	".pub-cache":       {},
	".pub":             {},
	".fvm":             {},
	"build":            {},
	".idea":            {},
	".vscode":          {},
}

// Result is the outcome of a discovery run: the sorted package set plus
// any non-fatal warnings (duplicate names, unreadable manifests).
type Result struct {
	Packages []*pkgmodel.Package
	Warnings []string
}

// Discover walks cfg's glob patterns under root and returns every valid package.
func Discover(root string, cfg config.WorkspaceConfig) (*Result, error) {
	candidates, err := expandCandidates(root, cfg.Packages)
	if err != nil {
		return nil, err
	}

	if cfg.UseRootAsPackage {
		if hasManifest(root) {
			candidates = appendUnique(candidates, root)
		}
	}

	packages, warnings := parseAll(candidates)

	if cfg.DiscoverNestedWorkspaces {
		nested, nw := discoverNested(root, packages)
		packages = mergeByName(packages, nested)
		warnings = append(warnings, nw...)
	}

	seen := make(map[string]bool, len(packages))
	var deduped []*pkgmodel.Package
	for _, p := range packages {
		if seen[p.Name] {
			warnings = append(warnings, "duplicate package name: "+p.Name)
			continue
		}
		seen[p.Name] = true
		deduped = append(deduped, p)
	}

	deduped = applyIgnore(deduped, cfg.Ignore)

	sort.Slice(deduped, func(i, j int) bool { return deduped[i].Name < deduped[j].Name })

	return &Result{Packages: deduped, Warnings: warnings}, nil
}

func expandCandidates(root string, patterns []string) ([]string, error) {
	var out []string
	for _, pattern := range patterns {
		full := filepath.Join(root, pattern)
		matches, err := zglob.Glob(full)
		if err != nil {
			if err == os.ErrNotExist {
				continue
			}
			// Malformed pattern: skip it rather than failing the whole run.
			continue
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.IsDir() {
				continue
			}
			if isExcluded(root, m) {
				continue
			}
			if hasManifest(m) {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func isExcluded(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, part := range splitPath(rel) {
		if _, bad := excludedDirNames[part]; bad {
			return true
		}
	}
	return false
}

func splitPath(p string) []string {
	p = filepath.ToSlash(p)
	var parts []string
	for _, part := range filepathSplit(p) {
		if part != "" && part != "." {
			parts = append(parts, part)
		}
	}
	return parts
}

func filepathSplit(p string) []string {
	var parts []string
	cur := ""
	for _, r := range p {
		if r == '/' {
			parts = append(parts, cur)
			cur = ""
			continue
		}
		cur += string(r)
	}
	parts = append(parts, cur)
	return parts
}

func hasManifest(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, manifest.FileName))
	return err == nil && !info.IsDir()
}

func appendUnique(list []string, path string) []string {
	for _, p := range list {
		if p == path {
			return list
		}
	}
	return append(list, path)
}

// parseAll parses each candidate manifest in parallel, skipping
// (with a warning) any that fail to parse.
func parseAll(candidates []string) ([]*pkgmodel.Package, []string) {
	type outcome struct {
		pkg *pkgmodel.Package
		err error
		dir string
	}
	results := make([]outcome, len(candidates))

	var wg sync.WaitGroup
	for i, dir := range candidates {
		wg.Add(1)
		go func(i int, dir string) {
			defer wg.Done()
			pkg, err := manifest.Read(dir)
			results[i] = outcome{pkg: pkg, err: err, dir: dir}
		}(i, dir)
	}
	wg.Wait()

	var packages []*pkgmodel.Package
	var warnings []string
	for _, r := range results {
		if r.err != nil {
			warnings = append(warnings, "skipping "+r.dir+": "+r.err.Error())
			continue
		}
		packages = append(packages, r.pkg)
	}
	return packages, warnings
}

func mergeByName(base, extra []*pkgmodel.Package) []*pkgmodel.Package {
	seen := make(map[string]bool, len(base))
	for _, p := range base {
		seen[p.Name] = true
	}
	out := append([]*pkgmodel.Package{}, base...)
	for _, p := range extra {
		if !seen[p.Name] {
			out = append(out, p)
			seen[p.Name] = true
		}
	}
	return out
}

// discoverNested looks for `workspace:` sequences inside each already
// discovered manifest and recurses into those subdirectories, visiting
// each directory at most once.
func discoverNested(root string, packages []*pkgmodel.Package) ([]*pkgmodel.Package, []string) {
	visited := make(map[string]bool)
	var found []*pkgmodel.Package
	var warnings []string

	var walk func(p *pkgmodel.Package)
	walk = func(p *pkgmodel.Package) {
		data, err := os.ReadFile(filepath.Join(p.Path, manifest.FileName))
		if err != nil {
			return
		}
		subdirs := extractWorkspaceSequence(data)
		for _, sub := range subdirs {
			dir := filepath.Join(p.Path, sub)
			if visited[dir] {
				continue
			}
			visited[dir] = true
			if isExcluded(root, dir) || !hasManifest(dir) {
				continue
			}
			child, err := manifest.Read(dir)
			if err != nil {
				warnings = append(warnings, "skipping "+dir+": "+err.Error())
				continue
			}
			found = append(found, child)
			walk(child)
		}
	}
	for _, p := range packages {
		walk(p)
	}
	return found, warnings
}

func applyIgnore(packages []*pkgmodel.Package, patterns []string) []*pkgmodel.Package {
	if len(patterns) == 0 {
		return packages
	}
	compiled := globmatch.CompileAll(patterns)
	var out []*pkgmodel.Package
	for _, p := range packages {
		if !globmatch.MatchAny(compiled, p.Name) {
			out = append(out, p)
		}
	}
	return out
}
