package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/monorel/internal/changelog"
	"github.com/xcawolfe-amzn/monorel/internal/diagnostics"
	"github.com/xcawolfe-amzn/monorel/internal/pkgmodel"
	"github.com/xcawolfe-amzn/monorel/internal/version"
)

var versionFlags filterFlags
var versionPreid string
var versionCoordinated bool
var versionOverrides []string
var versionConventional bool
var versionSince string
var versionYes bool
var versionDryRun bool
var versionTag bool
var versionPush bool
var versionDependentVersions bool
var versionDependentPreid string
var versionPrerelease bool
var versionGraduate bool

var versionCmd = &cobra.Command{
	Use:     "version [bump]",
	Short:   "Bump package versions, rewrite manifests, and update changelogs",
	GroupID: GroupRelease,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runVersion,
}

func init() {
	registerFilterFlags(versionCmd, &versionFlags)
	versionCmd.Flags().StringVar(&versionPreid, "preid", "", "prerelease identifier")
	versionCmd.Flags().BoolVar(&versionCoordinated, "coordinated", false, "assign one target version to every matched package")
	versionCmd.Flags().StringSliceVarP(&versionOverrides, "override", "V", nil, "per-package override, name:bump")
	versionCmd.Flags().BoolVar(&versionConventional, "conventional-commits", false, "derive bumps from conventional commit history")
	versionCmd.Flags().StringVar(&versionSince, "since", "", "git ref to collect commits since (conventional-commits mode)")
	versionCmd.Flags().BoolVar(&versionYes, "yes", false, "skip the confirmation prompt")
	versionCmd.Flags().BoolVar(&versionDryRun, "dry-run", false, "compute and print the plan without writing anything")
	versionCmd.Flags().BoolVar(&versionTag, "tag", true, "create annotated git tags for each bumped package")
	versionCmd.Flags().BoolVar(&versionPush, "push", false, "push the release commit (and tags) after committing")
	versionCmd.Flags().BoolVar(&versionDependentVersions, "dependent-versions", false, "bump dependents whose constraints were rewritten")
	versionCmd.Flags().StringVar(&versionDependentPreid, "dependent-preid", "", "preid override for dependent bumps")
	versionCmd.Flags().BoolVar(&versionPrerelease, "prerelease", false, "compute a prerelease version instead of a stable one")
	versionCmd.Flags().BoolVar(&versionGraduate, "graduate", false, "strip the prerelease tag from each matched package instead of bumping")
}

func runVersion(c *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	if hooked, err := runVerbOverride(c, ws, "version", versionFlags); hooked {
		return err
	}

	matched, err := ws.Filter.Evaluate(versionFlags.toSpec())
	if err != nil {
		return err
	}
	if len(matched) == 0 {
		fmt.Fprintln(c.OutOrStdout(), "no packages matched")
		return nil
	}

	req := version.Request{
		Preid:             versionPreid,
		Coordinated:       versionCoordinated,
		Overrides:         parseOverrides(versionOverrides),
		ConventionalMode:  versionConventional,
		DependentVersions: versionDependentVersions,
		DependentPreid:    versionDependentPreid,
		Prerelease:        versionPrerelease,
	}
	if len(args) == 1 {
		if kind, ok := version.ParseBumpKind(args[0]); ok {
			req.Mode = kind
		} else {
			req.Explicit = args[0]
		}
	}

	var commitsByPackage map[string][]version.Commit
	if versionConventional {
		commitsByPackage, err = collectConventionalCommits(ws, matched)
		if err != nil {
			return err
		}
	}

	var plan []version.PlanEntry
	if versionGraduate {
		plan, err = version.GraduatePlan(matched)
	} else {
		plan, err = version.BuildPlan(matched, req, commitsByPackage)
	}
	if err != nil {
		return err
	}
	plan, err = version.ExpandDependentBumps(plan, ws.Packages, req)
	if err != nil {
		return err
	}
	if len(plan) == 0 {
		fmt.Fprintln(c.OutOrStdout(), "no version changes to make")
		return nil
	}

	flow := version.FlowOptions{
		Yes:            versionYes,
		DryRun:         versionDryRun,
		Tag:            versionTag,
		Push:           versionPush,
		PreHook:        ws.Config.Command.Version.Pre,
		PostHook:       ws.Config.Command.Version.Post,
		Confirm:        confirmPlan(c),
		RunHook:        func(script string) error { return runHook(c, ws, script) },
	}

	urls, err := version.RunFlow(ws.Git, plan, ws.Packages, flow, ws.Config.Repository)
	if err != nil {
		return err
	}
	for _, u := range urls {
		fmt.Fprintln(c.OutOrStdout(), u)
	}

	return writeChangelogs(ws, plan, commitsByPackage)
}

func parseOverrides(raw []string) map[string]string {
	out := map[string]string{}
	for _, entry := range raw {
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) == 2 {
			out[parts[0]] = parts[1]
		}
	}
	return out
}

func confirmPlan(c *cobra.Command) func(plan []version.PlanEntry) (bool, error) {
	return func(plan []version.PlanEntry) (bool, error) {
		fmt.Fprintln(c.OutOrStdout(), "The following packages will be versioned:")
		for _, e := range plan {
			fmt.Fprintf(c.OutOrStdout(), "  - %s -> %s\n", e.Package.Name, e.Next)
		}
		fmt.Fprint(c.OutOrStdout(), "Continue? [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		line = strings.TrimSpace(strings.ToLower(line))
		return line == "y" || line == "yes", nil
	}
}

func collectConventionalCommits(ws *workspace, matched []*pkgmodel.Package) (map[string][]version.Commit, error) {
	ref := versionSince
	if ref == "" {
		if tag, err := ws.Git.DescribeLatestTag(); err == nil && tag != "" {
			ref = tag
		} else {
			ref = "HEAD~10"
		}
	}
	raw, err := ws.Git.LogSince(ref)
	if err != nil {
		return nil, diagnostics.Wrap(diagnostics.KindGitError, err, "collecting commits since %s", ref)
	}

	var commits []version.Commit
	for _, r := range raw {
		if c, ok := version.ParseCommit(r.Hash, r.Header, r.Body); ok {
			commits = append(commits, c)
		}
	}

	return version.MapCommitsToPackages(ws.Git, ws.Root, matched, commits)
}

func writeChangelogs(ws *workspace, plan []version.PlanEntry, commitsByPackage map[string][]version.Commit) error {
	if versionDryRun {
		return nil
	}
	effective := ws.Config.Changelog.Effective()

	var sources []changelog.SourceCommits
	for _, e := range plan {
		entryText := changelog.RenderEntry(e.Next, commitsByPackage[e.Package.Name], effective, ws.Config.Repository)
		if entryText != "" {
			if err := changelog.Prepend(e.Package.Path+"/CHANGELOG.md", entryText); err != nil {
				return err
			}
		}
		sources = append(sources, changelog.SourceCommits{Package: e.Package, Commits: commitsByPackage[e.Package.Name]})
	}

	if err := changelog.WriteAggregateChangelogs(ws.Root, sources, effective.Aggregate, plan[0].Next, effective, ws.Config.Repository); err != nil {
		return err
	}

	return changelog.WriteWorkspaceChangelog(ws.Root, sources, plan[0].Next, effective, ws.Config.Repository)
}
