package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/monorel/internal/render"
	"github.com/xcawolfe-amzn/monorel/internal/runner"
)

var cleanFlags filterFlags

var cleanCmd = &cobra.Command{
	Use:     "clean",
	Short:   "Remove build artifacts and cached state across matched packages",
	GroupID: GroupWork,
	RunE:    runClean,
}

var cleanArtifactDirs = []string{".dart_tool", "build", ".symlinks", ".packages"}

func init() {
	registerFilterFlags(cleanCmd, &cleanFlags)
}

func runClean(c *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	if hooked, err := runVerbOverride(c, ws, "clean", cleanFlags); hooked {
		return err
	}

	if err := runHook(c, ws, ws.Config.Command.Clean.Pre); err != nil {
		return err
	}

	matched, err := ws.Filter.Evaluate(cleanFlags.toSpec())
	if err != nil {
		return err
	}

	plain := render.NewPlain(c.OutOrStdout())
	for _, p := range matched {
		plain.Render(runner.InfoEvent("cleaning " + p.Name))
		for _, dir := range cleanArtifactDirs {
			_ = os.RemoveAll(filepath.Join(p.Path, dir))
		}
	}

	return runHook(c, ws, ws.Config.Command.Clean.Post)
}
