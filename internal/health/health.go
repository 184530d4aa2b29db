// Package health implements monorel's non-interactive validation
// report ("monorel health"), adapted from the teacher's doctor-style
// check registry: each concern is one independent Check returning a
// Status without mutating anything.
package health

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xcawolfe-amzn/monorel/internal/pkgmodel"
)

// Status is a check's outcome severity.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusError
)

// Result is one check's outcome.
type Result struct {
	Name    string
	Status  Status
	Message string
}

// Check is one independent workspace health validation.
type Check interface {
	Name() string
	Run(root string, packages []*pkgmodel.Package) Result
}

// DefaultChecks returns the built-in check set `monorel health` runs.
func DefaultChecks() []Check {
	return []Check{
		duplicateNamesCheck{},
		missingVersionCheck{},
		sdkPathCheck{},
	}
}

// Run executes every check and returns their results in order.
func Run(root string, packages []*pkgmodel.Package, checks []Check) []Result {
	out := make([]Result, 0, len(checks))
	for _, c := range checks {
		out = append(out, c.Run(root, packages))
	}
	return out
}

// Overall returns the most severe Status among results (StatusOK when
// results is empty).
func Overall(results []Result) Status {
	worst := StatusOK
	for _, r := range results {
		if r.Status > worst {
			worst = r.Status
		}
	}
	return worst
}

type duplicateNamesCheck struct{}

func (duplicateNamesCheck) Name() string { return "duplicate-package-names" }

func (duplicateNamesCheck) Run(root string, packages []*pkgmodel.Package) Result {
	seen := map[string]int{}
	for _, p := range packages {
		seen[p.Name]++
	}
	var dupes []string
	for name, n := range seen {
		if n > 1 {
			dupes = append(dupes, name)
		}
	}
	if len(dupes) > 0 {
		return Result{Name: "duplicate-package-names", Status: StatusError, Message: "duplicate package names: " + strings.Join(dupes, ", ")}
	}
	return Result{Name: "duplicate-package-names", Status: StatusOK, Message: "no duplicate package names"}
}

type missingVersionCheck struct{}

func (missingVersionCheck) Name() string { return "package-versions-present" }

func (missingVersionCheck) Run(root string, packages []*pkgmodel.Package) Result {
	var missing []string
	for _, p := range packages {
		if p.Version == "" {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 {
		return Result{Name: "package-versions-present", Status: StatusWarning, Message: "packages missing a version: " + strings.Join(missing, ", ")}
	}
	return Result{Name: "package-versions-present", Status: StatusOK, Message: "every package declares a version"}
}

type sdkPathCheck struct{}

func (sdkPathCheck) Name() string { return "sdk-path-resolves" }

func (sdkPathCheck) Run(root string, packages []*pkgmodel.Package) Result {
	for _, candidate := range []string{".fvm/flutter_sdk", "flutter"} {
		if _, err := os.Stat(filepath.Join(root, candidate)); err == nil {
			return Result{Name: "sdk-path-resolves", Status: StatusOK, Message: "found SDK at " + candidate}
		}
	}
	return Result{Name: "sdk-path-resolves", Status: StatusWarning, Message: "no local SDK path found; relying on PATH"}
}
