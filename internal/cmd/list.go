package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/monorel/internal/config"
	"github.com/xcawolfe-amzn/monorel/internal/pkgmodel"
	"github.com/xcawolfe-amzn/monorel/internal/style"
)

var listFlags filterFlags
var listLong, listJSON, listGraph, listPlain bool

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List packages in the workspace",
	GroupID: GroupCore,
	RunE:    runList,
}

func init() {
	registerFilterFlags(listCmd, &listFlags)
	listCmd.Flags().BoolVar(&listLong, "long", false, "show version and path columns")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "emit machine-readable JSON")
	listCmd.Flags().BoolVar(&listGraph, "graph", false, "show dependency edges instead of a flat list")
	listCmd.Flags().BoolVar(&listPlain, "plain", false, "render --long output as an unstyled ASCII table, for logs and CI")
}

func registerFilterFlags(c *cobra.Command, f *filterFlags) {
	c.Flags().StringSliceVar(&f.scope, "scope", nil, "include packages matching this glob")
	c.Flags().StringSliceVar(&f.ignore, "ignore", nil, "exclude packages matching this glob")
	c.Flags().BoolVar(&f.noPrivate, "no-private", false, "exclude private packages")
	c.Flags().StringSliceVar(&f.dependsOn, "depends-on", nil, "include packages depending on this name")
	c.Flags().StringSliceVar(&f.noDependsOn, "no-depends-on", nil, "exclude packages depending on this name")
	c.Flags().StringVar(&f.diff, "diff", "", "include only packages changed since this git ref")
	c.Flags().StringSliceVar(&f.category, "category", nil, "include packages in this named category")
	c.Flags().BoolVar(&f.flutterOnly, "flutter", false, "include only Flutter-like packages")
	c.Flags().StringVar(&f.fileExists, "file-exists", "", "include only packages containing this file")
	c.Flags().StringVar(&f.dirExists, "dir-exists", "", "include only packages containing this directory")
	c.Flags().BoolVar(&f.includeDeps, "include-dependencies", false, "expand matched set to include dependencies")
	c.Flags().BoolVar(&f.includeDnts, "include-dependents", false, "expand matched set to include dependents")
}

func (f filterFlags) toSpec() config.FilterSpec {
	spec := config.FilterSpec{
		Scope:               f.scope,
		Ignore:              f.ignore,
		NoPrivate:           f.noPrivate,
		DependsOn:           f.dependsOn,
		NoDependsOn:         f.noDependsOn,
		Diff:                f.diff,
		Category:            f.category,
		DirExists:           f.dirExists,
		FileExists:          f.fileExists,
		IncludeDependencies: f.includeDeps,
		IncludeDependents:   f.includeDnts,
	}
	if f.flutterOnly {
		t := true
		spec.FlutterLike = &t
	}
	return spec
}

func runList(c *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	matched, err := ws.Filter.Evaluate(listFlags.toSpec())
	if err != nil {
		return err
	}

	switch {
	case listJSON:
		return printListJSON(matched)
	case listGraph:
		return printListGraph(matched, ws)
	case listLong && listPlain:
		return printListPlain(matched)
	case listLong:
		return printListLong(matched)
	default:
		for _, p := range matched {
			fmt.Println(p.Name)
		}
		return nil
	}
}

type listEntry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Path    string `json:"path"`
	Private bool   `json:"private"`
}

func printListJSON(matched []*pkgmodel.Package) error {
	entries := make([]listEntry, 0, len(matched))
	for _, p := range matched {
		entries = append(entries, listEntry{Name: p.Name, Version: p.Version, Path: p.Path, Private: p.Private()})
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func printListLong(matched []*pkgmodel.Package) error {
	tbl := style.NewTable(
		style.Column{Name: "NAME", Width: 28, Align: style.AlignLeft},
		style.Column{Name: "VERSION", Width: 12, Align: style.AlignLeft},
		style.Column{Name: "PATH", Width: 40, Align: style.AlignLeft},
	)
	for _, p := range matched {
		tbl.AddRow(p.Name, p.Version, p.Path)
	}
	fmt.Print(tbl.Render())
	return nil
}

// printListPlain renders the long listing through tablewriter instead of
// the lipgloss-styled style.Table, for output consumed by logs or CI where
// ANSI styling is unwanted.
func printListPlain(matched []*pkgmodel.Package) error {
	tbl := tablewriter.NewWriter(os.Stdout)
	tbl.SetHeader([]string{"NAME", "VERSION", "PATH"})
	tbl.SetAutoWrapText(false)
	tbl.SetBorder(false)
	for _, p := range matched {
		tbl.Append([]string{p.Name, p.Version, p.Path})
	}
	tbl.Render()
	return nil
}

func printListGraph(matched []*pkgmodel.Package, ws *workspace) error {
	want := map[string]bool{}
	for _, p := range matched {
		want[p.Name] = true
	}
	for _, p := range matched {
		deps := ws.Graph.DependenciesOf(p.Name)
		for _, d := range deps {
			if want[d] {
				fmt.Printf("%s -> %s\n", p.Name, d)
			}
		}
	}
	return nil
}
