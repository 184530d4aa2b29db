// Package render turns a stream of runner.Event values into terminal
// output. Three renderers are provided: Plain (colored per-package
// line prefixes), Table (a post-run summary), and Progress (a single
// aggregate bar for non-interactive or CI-style output).
package render

import (
	"fmt"
	"hash/fnv"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/xcawolfe-amzn/monorel/internal/runner"
	"github.com/xcawolfe-amzn/monorel/internal/style"
)

// Renderer consumes a single runner.Event.
type Renderer interface {
	Render(e runner.Event)
	// Finish is called once the event channel is drained and results
	// are known, to print any trailing summary.
	Finish(results []runner.Result)
}

// palette is the fixed set of prefix colors. A package's entry is
// chosen by hashing its name, so the same package gets the same color
// in every run regardless of event order.
var palette = []color.Attribute{
	color.FgCyan,
	color.FgMagenta,
	color.FgYellow,
	color.FgGreen,
	color.FgBlue,
	color.FgRed,
}

// Plain writes one line per output event, prefixed with a
// deterministically-colored `[package]` tag.
type Plain struct {
	Out io.Writer

	mu     sync.Mutex
	colors map[string]*color.Color
}

// NewPlain creates a Plain renderer writing to out.
func NewPlain(out io.Writer) *Plain {
	return &Plain{Out: out, colors: map[string]*color.Color{}}
}

func (p *Plain) colorFor(name string) *color.Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.colors[name]; ok {
		return c
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	c := color.New(palette[h.Sum32()%uint32(len(palette))])
	p.colors[name] = c
	return c
}

func (p *Plain) Render(e runner.Event) {
	c := p.colorFor(e.PackageName)
	prefix := c.Sprintf("[%s]", e.PackageName)

	switch e.Kind {
	case runner.EventPackageStarted:
		fmt.Fprintf(p.Out, "%s %s\n", prefix, style.Dim.Render("started"))
	case runner.EventPackageOutput:
		fmt.Fprintf(p.Out, "%s %s\n", prefix, e.Line)
	case runner.EventPackageFinished:
		status := style.Green.Render("done")
		if !e.Success {
			status = style.Red.Render("failed")
		}
		fmt.Fprintf(p.Out, "%s %s (%s)\n", prefix, status, e.Duration)
	case runner.EventInfo:
		fmt.Fprintf(p.Out, "%s\n", e.Message)
	case runner.EventWarning:
		fmt.Fprintf(p.Out, "%s %s\n", style.Dim.Render("WARNING:"), e.Message)
	}
}

func (p *Plain) Finish(results []runner.Result) {
	ok, fail := 0, 0
	for _, r := range results {
		if r.Success {
			ok++
		} else {
			fail++
		}
	}
	fmt.Fprintf(p.Out, "%d succeeded, %d failed\n", ok, fail)
}

// Table renders only the final per-package outcome summary; it
// ignores streamed output events and prints nothing until Finish.
type Table struct {
	Out io.Writer

	mu   sync.Mutex
	rows map[string]string
}

// NewTable creates a Table renderer writing to out.
func NewTable(out io.Writer) *Table {
	return &Table{Out: out, rows: map[string]string{}}
}

func (t *Table) Render(e runner.Event) {
	if e.Kind != runner.EventPackageFinished {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	status := "done"
	if !e.Success {
		status = "failed"
	}
	t.rows[e.PackageName] = status
}

func (t *Table) Finish(results []runner.Result) {
	tbl := style.NewTable(
		style.Column{Name: "PACKAGE", Width: 32, Align: style.AlignLeft},
		style.Column{Name: "STATUS", Width: 10, Align: style.AlignLeft},
		style.Column{Name: "DURATION", Width: 10, Align: style.AlignRight},
	)
	for _, r := range results {
		status := style.Green.Render("done")
		if !r.Success {
			status = style.Red.Render("failed")
		}
		tbl.AddRow(r.Name, status, r.Duration.String())
	}
	fmt.Fprint(t.Out, tbl.Render())
}

// Progress renders a single aggregate bar and suppresses per-package
// output, for CI logs or narrow terminals.
type Progress struct {
	Out io.Writer
	bar *progressbar.ProgressBar
}

// NewProgress creates a Progress renderer with the given total task
// count, writing its bar to out.
func NewProgress(out io.Writer, total int) *Progress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("running"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return &Progress{Out: out, bar: bar}
}

func (p *Progress) Render(e runner.Event) {
	if e.Kind != runner.EventProgress {
		return
	}
	_ = p.bar.Set(e.Completed)
}

func (p *Progress) Finish(results []runner.Result) {
	_ = p.bar.Finish()
	ok, fail := 0, 0
	for _, r := range results {
		if r.Success {
			ok++
		} else {
			fail++
		}
	}
	fmt.Fprintf(p.Out, "%d succeeded, %d failed\n", ok, fail)
}
