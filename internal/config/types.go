// Package config locates and parses the workspace configuration,
// accepting either a dedicated melos.yaml or a pubspec.yaml carrying a
// top-level melos: mapping.
package config

import "gopkg.in/yaml.v3"

// CommandHooks are the pre/post shell strings for a single verb.
type CommandHooks struct {
	Pre  string `yaml:"pre"`
	Post string `yaml:"post"`
	Run  string `yaml:"run"`
}

// CommandConfig groups the per-verb hook blocks.
type CommandConfig struct {
	Version   CommandHooks `yaml:"version"`
	Bootstrap CommandHooks `yaml:"bootstrap"`
	Build     CommandHooks `yaml:"build"`
	Clean     CommandHooks `yaml:"clean"`
	Publish   CommandHooks `yaml:"publish"`
	Test      CommandHooks `yaml:"test"`
}

// ChangelogConfig holds the changelog-generation knobs read from config.
type ChangelogConfig struct {
	IncludeCommitID   *bool    `yaml:"include_commit_id"`
	IncludeCommitBody *bool    `yaml:"changelog_commit_bodies"`
	OnlyBreakingBody  *bool    `yaml:"only_breaking_bodies"`
	IncludeScopes     *bool    `yaml:"include_scopes"`
	IncludeDate       *bool    `yaml:"include_date"`
	IncludeTypes      []string `yaml:"include_types"`
	ExcludeTypes      []string `yaml:"exclude_types"`
	WorkspaceChangelog *bool   `yaml:"workspace_changelog"`
	Aggregate         []AggregateChangelog `yaml:"aggregate"`

	// Legacy alias block; its fields take precedence only when the
	// new-style field above is unset. See DESIGN.md Open Question.
	Legacy *LegacyChangelogConfig `yaml:"changelog_config"`
	LinkToCommits *bool `yaml:"link_to_commits"`
}

// LegacyChangelogConfig mirrors the older `changelog_config:` block.
type LegacyChangelogConfig struct {
	IncludeCommitBody *bool `yaml:"include_commit_body"`
}

// AggregateChangelog describes one configured aggregate changelog output.
type AggregateChangelog struct {
	Path        string     `yaml:"path"`
	Description string     `yaml:"description"`
	Filters     FilterSpec `yaml:"packageFilters"`
}

// FilterSpec mirrors the filter engine's declarative input shape so it
// can be embedded directly in scripts and aggregate changelog configs.
type FilterSpec struct {
	Scope              []string `yaml:"scope"`
	Ignore             []string `yaml:"ignore"`
	FlutterLike        *bool    `yaml:"flutter"`
	DirExists          string   `yaml:"dirExists"`
	FileExists         string   `yaml:"fileExists"`
	DependsOn          []string `yaml:"dependsOn"`
	NoDependsOn        []string `yaml:"noDependsOn"`
	NoPrivate          bool     `yaml:"noPrivate"`
	Diff               string   `yaml:"diff"`
	Category           []string `yaml:"category"`
	IncludeDependencies bool    `yaml:"includeDependencies"`
	IncludeDependents  bool     `yaml:"includeDependents"`
	Published          *bool    `yaml:"published"`
}

// Merge composes two FilterSpecs: scalars from other win when set,
// lists concatenate, booleans OR-combine. Receiver is the left operand.
func (f FilterSpec) Merge(other FilterSpec) FilterSpec {
	out := f
	out.Scope = append(append([]string{}, f.Scope...), other.Scope...)
	out.Ignore = append(append([]string{}, f.Ignore...), other.Ignore...)
	out.DependsOn = append(append([]string{}, f.DependsOn...), other.DependsOn...)
	out.NoDependsOn = append(append([]string{}, f.NoDependsOn...), other.NoDependsOn...)
	out.Category = append(append([]string{}, f.Category...), other.Category...)
	if other.FlutterLike != nil {
		out.FlutterLike = other.FlutterLike
	}
	if other.DirExists != "" {
		out.DirExists = other.DirExists
	}
	if other.FileExists != "" {
		out.FileExists = other.FileExists
	}
	out.NoPrivate = f.NoPrivate || other.NoPrivate
	if other.Diff != "" {
		out.Diff = other.Diff
	}
	if other.Published != nil {
		out.Published = other.Published
	}
	out.IncludeDependencies = f.IncludeDependencies || other.IncludeDependencies
	out.IncludeDependents = f.IncludeDependents || other.IncludeDependents
	return out
}

// ExecOptions are the parsed `exec:` map-form options for a script.
type ExecOptions struct {
	Concurrency    int  `yaml:"concurrency"`
	FailFast       bool `yaml:"failFast"`
	OrderDependents bool `yaml:"orderDependents"`
}

// Script is the discriminated config.scripts[name] shape: either a bare
// shell string, or a full record with run/exec/steps/filters/env/groups.
type Script struct {
	// Simple form.
	SimpleRun string

	// Full form.
	Run             string
	ExecShorthand   string // non-empty when `exec:` was a bare string
	ExecOptions     *ExecOptions
	HasExecOptions  bool
	Steps           []string
	Description     string
	Private         bool
	PackageFilters  FilterSpec
	Env             map[string]string
	Groups          []string
}

// IsSimple reports whether the script was declared as a bare string.
func (s Script) IsSimple() bool {
	return s.SimpleRun != "" && s.Run == "" && s.ExecShorthand == "" && !s.HasExecOptions && len(s.Steps) == 0
}

// RunString returns the shell string to execute for Simple-or-run-only scripts.
func (s Script) RunString() string {
	if s.IsSimple() {
		return s.SimpleRun
	}
	return s.Run
}

func (s *Script) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var str string
		if err := value.Decode(&str); err != nil {
			return err
		}
		s.SimpleRun = str
		return nil
	}

	var full struct {
		Run            string      `yaml:"run"`
		Exec           yaml.Node   `yaml:"exec"`
		Steps          []string    `yaml:"steps"`
		Description    string      `yaml:"description"`
		Private        bool        `yaml:"private"`
		PackageFilters FilterSpec  `yaml:"packageFilters"`
		Env            map[string]string `yaml:"env"`
		Groups         []string    `yaml:"groups"`
	}
	if err := value.Decode(&full); err != nil {
		return err
	}

	s.Run = full.Run
	s.Steps = full.Steps
	s.Description = full.Description
	s.Private = full.Private
	s.PackageFilters = full.PackageFilters
	s.Env = full.Env
	s.Groups = full.Groups

	switch full.Exec.Kind {
	case yaml.ScalarNode:
		var str string
		if err := full.Exec.Decode(&str); err == nil && str != "" {
			s.ExecShorthand = str
		}
	case yaml.MappingNode:
		var opts ExecOptions
		if err := full.Exec.Decode(&opts); err != nil {
			return err
		}
		s.ExecOptions = &opts
		s.HasExecOptions = true
	}
	return nil
}

// WorkspaceConfig is the parsed melos.yaml / pubspec.yaml `melos:` body.
type WorkspaceConfig struct {
	Name                     string              `yaml:"name"`
	Packages                 []string            `yaml:"packages"`
	Repository               string              `yaml:"repository"`
	SDKPath                  string              `yaml:"sdkPath"`
	Command                  CommandConfig       `yaml:"command"`
	Scripts                  map[string]Script   `yaml:"scripts"`
	Ignore                   []string            `yaml:"ignore"`
	Categories               map[string][]string `yaml:"categories"`
	UseRootAsPackage         bool                `yaml:"useRootAsPackage"`
	DiscoverNestedWorkspaces bool                `yaml:"discoverNestedWorkspaces"`
	Changelog                ChangelogConfig     `yaml:"changelog"`
}
