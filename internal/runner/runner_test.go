package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xcawolfe-amzn/monorel/internal/pkgmodel"
)

func testPackages(t *testing.T, names ...string) []*pkgmodel.Package {
	t.Helper()
	root := t.TempDir()
	var pkgs []*pkgmodel.Package
	for _, n := range names {
		dir := filepath.Join(root, n)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		pkgs = append(pkgs, &pkgmodel.Package{Name: n, Path: dir, Version: "1.0.0"})
	}
	return pkgs
}

func drain(events <-chan Event) []Event {
	var out []Event
	for e := range events {
		out = append(out, e)
	}
	return out
}

func TestRun_AllSucceed(t *testing.T) {
	pkgs := testPackages(t, "a", "b", "c")
	events, wait := Run(context.Background(), pkgs, "echo hi", EnvPlan{RootPath: "/root"}, Options{Concurrency: 2})
	_ = drain(events)
	results := wait()

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !Overall(results) {
		t.Fatalf("expected overall success, got %+v", results)
	}
}

func TestRun_EventDiscipline(t *testing.T) {
	pkgs := testPackages(t, "a", "b")
	events, wait := Run(context.Background(), pkgs, "echo line1; echo line2", EnvPlan{RootPath: "/root"}, Options{Concurrency: 2})
	all := drain(events)
	wait()

	started := map[string]int{}
	finished := map[string]int{}
	seenStart := map[string]bool{}
	for _, e := range all {
		switch e.Kind {
		case EventPackageStarted:
			started[e.PackageName]++
			seenStart[e.PackageName] = true
		case EventPackageOutput:
			if !seenStart[e.PackageName] {
				t.Fatalf("output for %s before started", e.PackageName)
			}
		case EventPackageFinished:
			finished[e.PackageName]++
		}
	}
	for _, p := range pkgs {
		if started[p.Name] != 1 {
			t.Errorf("package %s: expected exactly 1 Started, got %d", p.Name, started[p.Name])
		}
		if finished[p.Name] != 1 {
			t.Errorf("package %s: expected exactly 1 Finished, got %d", p.Name, finished[p.Name])
		}
	}
}

func TestRun_FailFastStopsDispatch(t *testing.T) {
	pkgs := testPackages(t, "a", "b", "c", "d", "e")
	events, wait := Run(context.Background(), pkgs, "exit 1", EnvPlan{RootPath: "/root"}, Options{Concurrency: 1, FailFast: true})
	_ = drain(events)
	results := wait()

	if Overall(results) {
		t.Fatalf("expected overall failure")
	}
	if len(results) >= len(pkgs) {
		t.Fatalf("fail-fast with concurrency=1 should dispatch fewer than all %d packages, got %d", len(pkgs), len(results))
	}
}

func TestRun_TimeoutCancelsTask(t *testing.T) {
	pkgs := testPackages(t, "slow")
	events, wait := Run(context.Background(), pkgs, "sleep 5", EnvPlan{RootPath: "/root"}, Options{Concurrency: 1, Timeout: 50 * time.Millisecond})
	_ = drain(events)
	results := wait()

	if len(results) != 1 || results[0].Success {
		t.Fatalf("expected the timed-out task to fail, got %+v", results)
	}
	if results[0].Duration > time.Second {
		t.Fatalf("expected timeout to cut the task short, took %s", results[0].Duration)
	}
}

func TestRun_ZeroTimeoutDisablesLimit(t *testing.T) {
	pkgs := testPackages(t, "fast")
	events, wait := Run(context.Background(), pkgs, "true", EnvPlan{RootPath: "/root"}, Options{Concurrency: 1, Timeout: 0})
	_ = drain(events)
	results := wait()
	if !Overall(results) {
		t.Fatalf("expected success with timeout disabled")
	}
}

func TestRun_EmptyPackageSetIsNotAnError(t *testing.T) {
	events, wait := Run(context.Background(), nil, "echo hi", EnvPlan{RootPath: "/root"}, Options{Concurrency: 2})
	_ = drain(events)
	results := wait()
	if len(results) != 0 {
		t.Fatalf("expected no results for empty package set, got %d", len(results))
	}
}
