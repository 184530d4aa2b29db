package cmd

import (
	"errors"

	"github.com/xcawolfe-amzn/monorel/internal/diagnostics"
)

// errorLine formats err for top-level display: classified diagnostics
// get their label+kind, anything else is reported as a bare ERROR.
func errorLine(err error) string {
	var de *diagnostics.Error
	if errors.As(err, &de) {
		return diagnostics.Line(diagnostics.LabelError, "[%s] %v", de.Kind, de)
	}
	return diagnostics.Line(diagnostics.LabelError, "%v", err)
}

// filterFlags carries the CLI-level flag surface shared by every verb
// that evaluates the filter engine.
type filterFlags struct {
	scope       []string
	ignore      []string
	noPrivate   bool
	dependsOn   []string
	noDependsOn []string
	diff        string
	category    []string
	flutterOnly bool
	fileExists  string
	dirExists   string
	includeDeps bool
	includeDnts bool
}
