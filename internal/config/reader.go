package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/xcawolfe-amzn/monorel/internal/diagnostics"
)

const (
	// DedicatedFileName is the preferred standalone config file name.
	DedicatedFileName = "melos.yaml"
	// HostManifestName is the manifest file that may carry an embedded melos: block.
	HostManifestName = "pubspec.yaml"
)

// Result is a parsed workspace config plus its root directory and any
// non-fatal warnings collected during parse/validate.
type Result struct {
	Root     string
	Config   WorkspaceConfig
	Warnings []string
}

// Locate walks upward from startDir until it finds a directory
// containing melos.yaml, or a pubspec.yaml with a top-level melos: key.
// melos.yaml wins when both exist in the same directory.
func Locate(startDir string) (dir string, usesDedicated bool, err error) {
	dir, err = filepath.Abs(startDir)
	if err != nil {
		return "", false, err
	}
	for {
		dedicated := filepath.Join(dir, DedicatedFileName)
		if fileExists(dedicated) {
			return dir, true, nil
		}

		host := filepath.Join(dir, HostManifestName)
		if fileExists(host) {
			if hasMelosKey(host) {
				return dir, false, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, diagnostics.New(diagnostics.KindConfigNotFound,
				"no melos.yaml or pubspec.yaml with a melos: key found above %s", startDir)
		}
		dir = parent
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func hasMelosKey(pubspecPath string) bool {
	data, err := os.ReadFile(pubspecPath)
	if err != nil {
		return false
	}
	var probe struct {
		Melos map[string]any `yaml:"melos"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.Melos != nil
}

// Load locates and parses the workspace config starting from startDir.
func Load(startDir string) (*Result, error) {
	root, dedicated, err := Locate(startDir)
	if err != nil {
		return nil, err
	}

	var cfg WorkspaceConfig
	var warnings []string

	if dedicated {
		data, err := os.ReadFile(filepath.Join(root, DedicatedFileName))
		if err != nil {
			return nil, diagnostics.Wrap(diagnostics.KindConfigParseError, err, "reading %s", DedicatedFileName)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, diagnostics.Wrap(diagnostics.KindConfigParseError, err, "parsing %s", DedicatedFileName)
		}
	} else {
		data, err := os.ReadFile(filepath.Join(root, HostManifestName))
		if err != nil {
			return nil, diagnostics.Wrap(diagnostics.KindConfigParseError, err, "reading %s", HostManifestName)
		}
		var host struct {
			Name  string          `yaml:"name"`
			Melos WorkspaceConfig `yaml:"melos"`
		}
		if err := yaml.Unmarshal(data, &host); err != nil {
			return nil, diagnostics.Wrap(diagnostics.KindConfigParseError, err, "parsing %s", HostManifestName)
		}
		cfg = host.Melos
		if cfg.Name == "" {
			cfg.Name = host.Name
		}
	}

	resolveLegacyAliases(&cfg, &warnings)

	if err := validate(&cfg, &warnings); err != nil {
		return nil, err
	}

	return &Result{Root: root, Config: cfg, Warnings: warnings}, nil
}

// resolveLegacyAliases applies the "newer field wins when both present"
// precedence rule for known legacy aliases.
func resolveLegacyAliases(cfg *WorkspaceConfig, warnings *[]string) {
	cl := &cfg.Changelog

	if cl.IncludeCommitID == nil && cl.LinkToCommits != nil {
		cl.IncludeCommitID = cl.LinkToCommits
		*warnings = append(*warnings, "changelog.link_to_commits is a legacy alias for changelog.include_commit_id")
	}

	if cl.Legacy != nil {
		if cl.IncludeCommitBody == nil {
			v := false
			if cl.Legacy.IncludeCommitBody != nil {
				v = *cl.Legacy.IncludeCommitBody
			}
			cl.IncludeCommitBody = &v
			*warnings = append(*warnings, "changelog_config.include_commit_body is a legacy alias for changelog.changelog_commit_bodies")
		}
		if cl.OnlyBreakingBody == nil {
			v := false
			cl.OnlyBreakingBody = &v
		}
	}
}

func validate(cfg *WorkspaceConfig, warnings *[]string) error {
	for name, script := range cfg.Scripts {
		if script.HasExecOptions && len(script.Steps) > 0 {
			*warnings = append(*warnings, "script "+name+" has both exec and steps; steps wins")
		}
		if script.ExecShorthand != "" && len(script.Steps) > 0 {
			*warnings = append(*warnings, "script "+name+" has both exec and steps; steps wins")
		}
	}
	for category, globs := range cfg.Categories {
		if len(globs) == 0 {
			*warnings = append(*warnings, "category "+category+" has no globs")
		}
	}
	return nil
}
