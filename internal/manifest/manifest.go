// Package manifest parses a single package manifest file (pubspec.yaml
// shaped: name, version, dependencies, dev_dependencies, publish_to,
// resolution, flutter).
package manifest

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/xcawolfe-amzn/monorel/internal/pkgmodel"
)

// FileName is the manifest file every discovered package directory must contain.
const FileName = "pubspec.yaml"

// depEntry is either a bare version string ("^1.2.3") or a map with a
// "version" key, a path/git/sdk reference, or an empty mapping.
type depEntry struct {
	raw any
}

func (d *depEntry) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		d.raw = s
	case yaml.MappingNode:
		var m map[string]any
		if err := value.Decode(&m); err != nil {
			return err
		}
		d.raw = m
	default:
		d.raw = nil
	}
	return nil
}

// versionConstraint extracts the declared version constraint string, if any.
// Path-only, git-only, and SDK-only entries return ("", false).
func (d *depEntry) versionConstraint() (string, bool) {
	switch v := d.raw.(type) {
	case string:
		return v, true
	case map[string]any:
		if raw, ok := v["version"]; ok {
			if s, ok := raw.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

type rawManifest struct {
	Name            string              `yaml:"name"`
	Version         string              `yaml:"version"`
	PublishTo       string              `yaml:"publish_to"`
	Resolution      string              `yaml:"resolution"`
	Dependencies    map[string]depEntry `yaml:"dependencies"`
	DevDependencies map[string]depEntry `yaml:"dev_dependencies"`
	Flutter         any                 `yaml:"flutter"`
}

// Read parses the manifest file at dir/pubspec.yaml into a Package.
// dir becomes the Package's Path.
func Read(dir string) (*pkgmodel.Package, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest in %s", dir)
	}
	return parse(dir, data)
}

func parse(dir string, data []byte) (*pkgmodel.Package, error) {
	var raw rawManifest
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "parsing manifest in %s", dir)
	}
	if raw.Name == "" {
		return nil, errors.Errorf("manifest in %s has no name", dir)
	}

	pkg := &pkgmodel.Package{
		Name:               raw.Name,
		Path:               dir,
		Version:            raw.Version,
		PublishTo:          raw.PublishTo,
		Resolution:         raw.Resolution,
		IsFlutterLike:      raw.Flutter != nil || hasFlutterSDKDep(raw.Dependencies),
		Dependencies:       make(map[string]struct{}, len(raw.Dependencies)),
		DevDependencies:    make(map[string]struct{}, len(raw.DevDependencies)),
		DependencyVersions: make(map[string]string),
	}

	for name, entry := range raw.Dependencies {
		e := entry
		pkg.Dependencies[name] = struct{}{}
		if v, ok := e.versionConstraint(); ok {
			pkg.DependencyVersions[name] = v
		}
	}
	for name, entry := range raw.DevDependencies {
		e := entry
		pkg.DevDependencies[name] = struct{}{}
		if v, ok := e.versionConstraint(); ok {
			pkg.DependencyVersions[name] = v
		}
	}

	return pkg, nil
}

// hasFlutterSDKDep reports whether any dependency is an SDK-style
// reference to the reserved name "flutter" (e.g. `flutter: {sdk: flutter}`).
func hasFlutterSDKDep(deps map[string]depEntry) bool {
	for name, entry := range deps {
		if name != "flutter" && name != "flutter_test" {
			continue
		}
		if m, ok := entry.raw.(map[string]any); ok {
			if sdk, ok := m["sdk"].(string); ok && sdk == "flutter" {
				return true
			}
		}
		if name == "flutter" {
			return true
		}
	}
	return false
}
