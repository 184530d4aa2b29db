package runner

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xcawolfe-amzn/monorel/internal/pkgmodel"
)

// EnvPlan describes the environment additions applied to every child,
// plus the per-package variables layered on top of it.
type EnvPlan struct {
	RootPath string
	SDKPath  string // empty when unconfigured
	Extra    map[string]string
}

// Run executes command in each package with bounded concurrency,
// returning the final per-package results once every task has settled
// or been cancelled. Events are delivered on the returned channel,
// which is closed when the run completes.
func Run(ctx context.Context, packages []*pkgmodel.Package, command string, env EnvPlan, opts Options) (<-chan Event, func() []Result) {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	events := make(chan Event, 64)
	dispatchedResult := make([]*Result, len(packages))

	runCtx, cancel := context.WithCancel(ctx)
	var failed atomic.Bool
	var settled atomic.Int64
	sem := make(chan struct{}, opts.Concurrency)
	var wg sync.WaitGroup

	done := make(chan struct{})

	go func() {
		defer close(events)
		defer close(done)

		for i, pkg := range packages {
			if opts.FailFast && failed.Load() {
				// Not dispatched: no PackageStarted/Finished, no Result entry.
				continue
			}
			select {
			case <-runCtx.Done():
				continue
			case sem <- struct{}{}:
			}

			wg.Add(1)
			go func(i int, pkg *pkgmodel.Package) {
				defer wg.Done()
				defer func() { <-sem }()
				res := runOne(runCtx, pkg, command, env, opts, events)
				dispatchedResult[i] = &res
				n := settled.Add(1)
				events <- ProgressEvent(int(n), len(packages))
				if !res.Success {
					failed.Store(true)
					if opts.FailFast {
						cancel()
					}
				}
			}(i, pkg)
		}

		wg.Wait()
	}()

	wait := func() []Result {
		<-done
		out := make([]Result, 0, len(dispatchedResult))
		for _, r := range dispatchedResult {
			if r != nil {
				out = append(out, *r)
			}
		}
		return out
	}
	return events, wait
}

func runOne(ctx context.Context, pkg *pkgmodel.Package, command string, env EnvPlan, opts Options, events chan<- Event) Result {
	events <- startedEvent(pkg.Name)
	start := time.Now()

	taskCtx := ctx
	var cancel context.CancelFunc
	if opts.Timeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	name, args := shellCommand(command)
	cmd := exec.Command(name, args...)
	cmd.Dir = pkg.Path
	cmd.Env = buildEnv(pkg, env)
	setProcessGroup(cmd)

	stdout, _ := cmd.StdoutPipe()
	stderr, _ := cmd.StderrPipe()

	if err := cmd.Start(); err != nil {
		events <- finishedEvent(pkg.Name, false, time.Since(start))
		return Result{Name: pkg.Name, Success: false, Duration: time.Since(start)}
	}

	var streamWG sync.WaitGroup
	streamWG.Add(2)
	go streamLines(&streamWG, stdout, pkg.Name, false, events)
	go streamLines(&streamWG, stderr, pkg.Name, true, events)

	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()

	var success bool
	select {
	case <-taskCtx.Done():
		killProcessGroup(cmd)
		<-waitErr
		success = false
	case err := <-waitErr:
		success = err == nil
	}

	streamWG.Wait()
	duration := time.Since(start)
	events <- finishedEvent(pkg.Name, success, duration)
	return Result{Name: pkg.Name, Success: success, Duration: duration}
}

func streamLines(wg *sync.WaitGroup, r io.ReadCloser, name string, isStderr bool, events chan<- Event) {
	defer wg.Done()
	if r == nil {
		return
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		events <- outputEvent(name, scanner.Text(), isStderr)
	}
}

func buildEnv(pkg *pkgmodel.Package, env EnvPlan) []string {
	base := os.Environ()
	out := make([]string, 0, len(base)+8)
	out = append(out, base...)

	for k, v := range env.Extra {
		out = append(out, k+"="+v)
	}

	out = append(out, "MELOS_ROOT_PATH="+env.RootPath)
	if env.SDKPath != "" {
		out = append(out, "MELOS_SDK_PATH="+env.SDKPath)
		out = append(out, "PATH="+filepath.Join(env.SDKPath, "bin")+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
	out = append(out, "MELOS_PACKAGE_NAME="+pkg.Name)
	out = append(out, "MELOS_PACKAGE_PATH="+pkg.Path)
	out = append(out, "MELOS_PACKAGE_VERSION="+pkg.Version)

	return out
}
