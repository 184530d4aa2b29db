package discovery

import "gopkg.in/yaml.v3"

// extractWorkspaceSequence returns the `workspace:` list of relative
// subdirectory paths declared in a manifest, used by nested-workspace
// discovery. Absence of the key yields an empty slice.
func extractWorkspaceSequence(manifestData []byte) []string {
	var probe struct {
		Workspace []string `yaml:"workspace"`
	}
	if err := yaml.Unmarshal(manifestData, &probe); err != nil {
		return nil
	}
	return probe.Workspace
}
