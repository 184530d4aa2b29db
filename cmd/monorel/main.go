// monorel is a CLI for managing Dart/Flutter-style monorepo workspaces:
// discovery, filtering, scripts, parallel exec, versioning, and publish.
package main

import (
	"os"

	"github.com/xcawolfe-amzn/monorel/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
