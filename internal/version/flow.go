package version

import (
	"fmt"
	"strings"

	"github.com/xcawolfe-amzn/monorel/internal/diagnostics"
	"github.com/xcawolfe-amzn/monorel/internal/gitutil"
	"github.com/xcawolfe-amzn/monorel/internal/manifest"
	"github.com/xcawolfe-amzn/monorel/internal/pkgmodel"
)

// FlowOptions controls the end-to-end git-integrated version flow.
type FlowOptions struct {
	ExpectedBranch  string // empty disables the check
	FetchTags       bool
	Yes             bool
	DryRun          bool
	Tag             bool
	Push            bool
	PreHook         string
	PostHook        string
	CommitTemplate  string // default used when empty
	ReleaseBranch   string // e.g. "release/{version}"; empty disables
	Confirm         func(plan []PlanEntry) (bool, error)
	RunHook         func(script string) error
}

const defaultCommitTemplate = "chore(release): publish packages\n\n{new_package_versions}"

// RunFlow executes the git operations described in the end-to-end
// version flow: branch check, fetch, confirm, rewrite, hooks, commit,
// tag, push, release branch. allPackages is the full workspace set,
// used to find dependents of each bumped package. On success it
// returns one release URL per tagged package, derived from
// repository, for the caller to print (step 11 of the flow).
func RunFlow(git gitutil.Runner, plan []PlanEntry, allPackages []*pkgmodel.Package, opts FlowOptions, repository string) ([]string, error) {
	if opts.ExpectedBranch != "" {
		branch, err := git.CurrentBranch()
		if err != nil {
			return nil, diagnostics.Wrap(diagnostics.KindGitError, err, "checking current branch")
		}
		if branch != opts.ExpectedBranch {
			return nil, diagnostics.New(diagnostics.KindGitError, "current branch %q does not match configured branch %q", branch, opts.ExpectedBranch)
		}
	}

	if opts.FetchTags {
		if err := git.FetchTags(); err != nil {
			return nil, diagnostics.Wrap(diagnostics.KindGitError, err, "fetching tags")
		}
	}

	if !opts.Yes && !opts.DryRun {
		if opts.Confirm == nil {
			return nil, diagnostics.New(diagnostics.KindPromptAborted, "confirmation required but no prompt handler configured")
		}
		ok, err := opts.Confirm(plan)
		if err != nil {
			return nil, diagnostics.Wrap(diagnostics.KindPromptAborted, err, "confirmation prompt")
		}
		if !ok {
			return nil, diagnostics.New(diagnostics.KindPromptAborted, "version flow aborted by user")
		}
	}

	if opts.DryRun {
		return nil, nil
	}

	for _, entry := range plan {
		manifestPath := entry.Package.Path + "/" + manifest.FileName
		if err := RewriteManifestVersion(manifestPath, entry.Next); err != nil {
			return nil, err
		}
		for _, dependent := range DependentsToUpdate(allPackages, entry.Package) {
			depManifest := dependent.Path + "/" + manifest.FileName
			if err := RewriteDependentConstraint(depManifest, entry.Package.Name, StripBuildSuffix(entry.Next)); err != nil {
				return nil, err
			}
		}
	}

	if opts.PreHook != "" && opts.RunHook != nil {
		if err := opts.RunHook(opts.PreHook); err != nil {
			return nil, diagnostics.Wrap(diagnostics.KindVersionError, err, "pre-commit hook")
		}
	}

	if err := git.AddAll(); err != nil {
		return nil, diagnostics.Wrap(diagnostics.KindGitError, err, "staging changes")
	}
	message := renderCommitTemplate(opts.CommitTemplate, plan)
	if err := git.Commit(message); err != nil {
		return nil, diagnostics.Wrap(diagnostics.KindGitError, err, "committing version bump")
	}

	if opts.PostHook != "" && opts.RunHook != nil {
		if err := opts.RunHook(opts.PostHook); err != nil {
			return nil, diagnostics.Wrap(diagnostics.KindVersionError, err, "post-commit hook")
		}
	}

	var tagNames []string
	if opts.Tag {
		for _, entry := range plan {
			tagName := fmt.Sprintf("%s-v%s", entry.Package.Name, entry.Next)
			if err := git.Tag(tagName, message); err != nil {
				return nil, diagnostics.Wrap(diagnostics.KindGitError, err, "tagging %s", tagName)
			}
			tagNames = append(tagNames, tagName)
		}
	}

	if opts.Push {
		if err := git.Push(opts.Tag); err != nil {
			return nil, diagnostics.Wrap(diagnostics.KindGitError, err, "pushing")
		}
	}

	if opts.ReleaseBranch != "" && len(plan) > 0 {
		branchName := strings.ReplaceAll(opts.ReleaseBranch, "{version}", plan[0].Next)
		original, err := git.CurrentBranch()
		if err != nil {
			return nil, diagnostics.Wrap(diagnostics.KindGitError, err, "reading current branch for release branch creation")
		}
		if err := git.Checkout(branchName, true); err != nil {
			return nil, diagnostics.Wrap(diagnostics.KindGitError, err, "creating release branch %s", branchName)
		}
		if err := git.PushUpstream(branchName); err != nil {
			return nil, diagnostics.Wrap(diagnostics.KindGitError, err, "pushing release branch %s", branchName)
		}
		if err := git.Checkout(original, false); err != nil {
			return nil, diagnostics.Wrap(diagnostics.KindGitError, err, "returning to %s", original)
		}
	}

	return releaseURLs(repository, tagNames), nil
}

// releaseURLs derives one release URL per tag from a repository URL,
// following the same {repo}/releases/tag/{tag} shape GitHub and GitLab
// both use. Empty when repository is unconfigured.
func releaseURLs(repository string, tagNames []string) []string {
	if repository == "" || len(tagNames) == 0 {
		return nil
	}
	repository = strings.TrimSuffix(repository, "/")
	urls := make([]string, 0, len(tagNames))
	for _, tag := range tagNames {
		urls = append(urls, fmt.Sprintf("%s/releases/tag/%s", repository, tag))
	}
	return urls
}

func renderCommitTemplate(template string, plan []PlanEntry) string {
	if template == "" {
		template = defaultCommitTemplate
	}
	lines := make([]string, 0, len(plan))
	for _, e := range plan {
		lines = append(lines, fmt.Sprintf(" - %s @ %s", e.Package.Name, e.Next))
	}
	return strings.ReplaceAll(template, "{new_package_versions}", strings.Join(lines, "\n"))
}
