package version

import (
	"testing"

	"github.com/xcawolfe-amzn/monorel/internal/gitutil"
	"github.com/xcawolfe-amzn/monorel/internal/pkgmodel"
)

func TestBuildPlan_Independent(t *testing.T) {
	packages := []*pkgmodel.Package{
		{Name: "a", Version: "1.0.0"},
		{Name: "b", Version: "2.3.1"},
	}
	req := Request{Mode: BumpMinor}
	plan, err := BuildPlan(packages, req, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]string{"a": "1.1.0", "b": "2.4.0"}
	for _, e := range plan {
		if e.Next != want[e.Package.Name] {
			t.Fatalf("package %s: expected %s, got %s", e.Package.Name, want[e.Package.Name], e.Next)
		}
	}
}

func TestBuildPlan_IndependentWithOverride(t *testing.T) {
	packages := []*pkgmodel.Package{
		{Name: "a", Version: "1.0.0"},
		{Name: "b", Version: "1.0.0"},
	}
	req := Request{Mode: BumpPatch, Overrides: map[string]string{"a": "major"}}
	plan, err := BuildPlan(packages, req, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, e := range plan {
		if e.Package.Name == "a" && e.Next != "2.0.0" {
			t.Fatalf("expected override to bump a to major, got %s", e.Next)
		}
		if e.Package.Name == "b" && e.Next != "1.0.1" {
			t.Fatalf("expected b to follow the default patch bump, got %s", e.Next)
		}
	}
}

func TestBuildPlan_ExplicitOverride(t *testing.T) {
	packages := []*pkgmodel.Package{{Name: "a", Version: "1.0.0"}}
	req := Request{Mode: BumpPatch, Overrides: map[string]string{"a": "9.9.9"}}
	plan, err := BuildPlan(packages, req, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan[0].Next != "9.9.9" {
		t.Fatalf("expected explicit override version, got %s", plan[0].Next)
	}
}

func TestBuildPlan_Coordinated(t *testing.T) {
	packages := []*pkgmodel.Package{
		{Name: "a", Version: "1.0.0"},
		{Name: "b", Version: "1.5.2"},
		{Name: "c", Version: "1.2.0"},
	}
	req := Request{Coordinated: true, Mode: BumpMinor}
	plan, err := BuildPlan(packages, req, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, e := range plan {
		if e.Next != "1.6.0" {
			t.Fatalf("expected every package pinned to 1.6.0, got %s for %s", e.Next, e.Package.Name)
		}
	}
}

func TestBuildPlan_ConventionalSkipsUnaffectedPackages(t *testing.T) {
	packages := []*pkgmodel.Package{
		{Name: "a", Version: "1.0.0"},
		{Name: "b", Version: "1.0.0"},
	}
	req := Request{ConventionalMode: true}
	commits := map[string][]Commit{
		"a": {{Type: "fix", Description: "x"}},
	}
	plan, err := BuildPlan(packages, req, commits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan) != 1 || plan[0].Package.Name != "a" {
		t.Fatalf("expected only package a to be planned, got %+v", plan)
	}
	if plan[0].Next != "1.0.1" {
		t.Fatalf("expected patch bump from fix commit, got %s", plan[0].Next)
	}
}

func TestBuildPlan_ConventionalBreakingWins(t *testing.T) {
	packages := []*pkgmodel.Package{{Name: "a", Version: "1.0.0"}}
	req := Request{ConventionalMode: true}
	commits := map[string][]Commit{
		"a": {
			{Type: "fix", Description: "x"},
			{Type: "feat", Breaking: true, Description: "y"},
		},
	}
	plan, err := BuildPlan(packages, req, commits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan[0].Next != "2.0.0" {
		t.Fatalf("expected breaking commit to force a major bump, got %s", plan[0].Next)
	}
}

func TestMapCommitsToPackages(t *testing.T) {
	packages := []*pkgmodel.Package{
		{Name: "a", Path: "/root/packages/a"},
		{Name: "b", Path: "/root/packages/b"},
	}
	commits := []Commit{
		{Hash: "h1", Type: "fix", Description: "touch a"},
		{Hash: "h2", Type: "feat", Description: "touch b"},
		{Hash: "h3", Type: "chore", Description: "touch neither"},
	}
	git := &fakeDiffTreeGit{filesByHash: map[string][]string{
		"h1": {"packages/a/lib/main.dart"},
		"h2": {"packages/b/pubspec.yaml"},
		"h3": {"README.md"},
	}}

	mapped, err := MapCommitsToPackages(git, "/root", packages, commits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mapped["a"]) != 1 || mapped["a"][0].Hash != "h1" {
		t.Fatalf("expected package a mapped to h1, got %+v", mapped["a"])
	}
	if len(mapped["b"]) != 1 || mapped["b"][0].Hash != "h2" {
		t.Fatalf("expected package b mapped to h2, got %+v", mapped["b"])
	}
	if len(mapped["a"])+len(mapped["b"]) != 2 {
		t.Fatalf("h3 should not map to any package")
	}
}

func TestExpandDependentBumps_AddsPatchBumpForDependent(t *testing.T) {
	pkgA := &pkgmodel.Package{Name: "a", Version: "1.0.0"}
	pkgB := &pkgmodel.Package{Name: "b", Version: "2.0.0", DependencyVersions: map[string]string{"a": "^1.0.0"}}
	all := []*pkgmodel.Package{pkgA, pkgB}

	plan := []PlanEntry{{Package: pkgA, Next: "1.1.0"}}
	req := Request{DependentVersions: true}

	expanded, err := ExpandDependentBumps(plan, all, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(expanded) != 2 {
		t.Fatalf("expected dependent b to be added to the plan, got %+v", expanded)
	}
	var bEntry *PlanEntry
	for i := range expanded {
		if expanded[i].Package.Name == "b" {
			bEntry = &expanded[i]
		}
	}
	if bEntry == nil || bEntry.Next != "2.0.1" {
		t.Fatalf("expected b to receive a patch bump to 2.0.1, got %+v", bEntry)
	}
}

func TestExpandDependentBumps_SkipsWhenDisabled(t *testing.T) {
	pkgA := &pkgmodel.Package{Name: "a", Version: "1.0.0"}
	pkgB := &pkgmodel.Package{Name: "b", Version: "2.0.0", DependencyVersions: map[string]string{"a": "^1.0.0"}}
	all := []*pkgmodel.Package{pkgA, pkgB}

	plan := []PlanEntry{{Package: pkgA, Next: "1.1.0"}}
	expanded, err := ExpandDependentBumps(plan, all, Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(expanded) != 1 {
		t.Fatalf("expected no expansion when DependentVersions is unset, got %+v", expanded)
	}
}

func TestExpandDependentBumps_SkipsAlreadyPlannedDependent(t *testing.T) {
	pkgA := &pkgmodel.Package{Name: "a", Version: "1.0.0"}
	pkgB := &pkgmodel.Package{Name: "b", Version: "2.0.0", DependencyVersions: map[string]string{"a": "^1.0.0"}}
	all := []*pkgmodel.Package{pkgA, pkgB}

	plan := []PlanEntry{
		{Package: pkgA, Next: "1.1.0"},
		{Package: pkgB, Next: "3.0.0"},
	}
	expanded, err := ExpandDependentBumps(plan, all, Request{DependentVersions: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(expanded) != 2 {
		t.Fatalf("expected b's explicit plan entry to be left untouched, got %+v", expanded)
	}
	for _, e := range expanded {
		if e.Package.Name == "b" && e.Next != "3.0.0" {
			t.Fatalf("expected b to keep its already-planned version, got %s", e.Next)
		}
	}
}

func TestBuildPlan_PrereleaseWithoutPreidFallsBackToRC(t *testing.T) {
	packages := []*pkgmodel.Package{{Name: "a", Version: "1.0.0"}}
	req := Request{Mode: BumpMinor, Prerelease: true}
	plan, err := BuildPlan(packages, req, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan[0].Next != "1.1.0-rc.0" {
		t.Fatalf("expected rc fallback prerelease, got %s", plan[0].Next)
	}
}

func TestBuildPlan_PrereleaseWithPreid(t *testing.T) {
	packages := []*pkgmodel.Package{{Name: "a", Version: "1.2.0"}}
	req := Request{Mode: BumpMinor, Prerelease: true, Preid: "dev"}
	plan, err := BuildPlan(packages, req, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan[0].Next != "1.3.0-dev.0" {
		t.Fatalf("expected 1.3.0-dev.0, got %s", plan[0].Next)
	}
}

func TestGraduatePlan_StripsPrereleaseTag(t *testing.T) {
	packages := []*pkgmodel.Package{
		{Name: "a", Version: "1.3.0-dev.2"},
		{Name: "b", Version: "2.0.0"},
	}
	plan, err := GraduatePlan(packages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]string{"a": "1.3.0", "b": "2.0.0"}
	for _, e := range plan {
		if e.Next != want[e.Package.Name] {
			t.Fatalf("package %s: expected %s, got %s", e.Package.Name, want[e.Package.Name], e.Next)
		}
	}
}

type fakeDiffTreeGit struct {
	filesByHash map[string][]string
}

func (f *fakeDiffTreeGit) DiffNameOnly(ref string) ([]string, error) { return nil, nil }
func (f *fakeDiffTreeGit) LogSince(ref string) ([]gitutil.CommitRaw, error) { return nil, nil }
func (f *fakeDiffTreeGit) DiffTreeNames(hash string) ([]string, error) {
	return f.filesByHash[hash], nil
}
func (f *fakeDiffTreeGit) DescribeLatestTag() (string, error)       { return "", nil }
func (f *fakeDiffTreeGit) CurrentBranch() (string, error)           { return "main", nil }
func (f *fakeDiffTreeGit) FetchTags() error                         { return nil }
func (f *fakeDiffTreeGit) Tag(name, message string) error           { return nil }
func (f *fakeDiffTreeGit) AddAll() error                            { return nil }
func (f *fakeDiffTreeGit) Commit(message string) error              { return nil }
func (f *fakeDiffTreeGit) Push(tags bool) error                     { return nil }
func (f *fakeDiffTreeGit) Checkout(branch string, create bool) error { return nil }
func (f *fakeDiffTreeGit) PushUpstream(branch string) error          { return nil }
