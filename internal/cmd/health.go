package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/monorel/internal/health"
	"github.com/xcawolfe-amzn/monorel/internal/style"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Run non-interactive workspace validation checks",
	GroupID: GroupWork,
	RunE:    runHealth,
}

func runHealth(c *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	results := health.Run(ws.Root, ws.Packages, health.DefaultChecks())
	for _, r := range results {
		fmt.Fprintln(c.OutOrStdout(), formatHealthLine(r))
	}

	if health.Overall(results) == health.StatusError {
		return errExecFailed
	}
	return nil
}

func formatHealthLine(r health.Result) string {
	switch r.Status {
	case health.StatusOK:
		return style.Green.Render("PASS") + "  " + r.Name + ": " + r.Message
	case health.StatusWarning:
		return style.Dim.Render("WARN") + "  " + r.Name + ": " + r.Message
	default:
		return style.Red.Render("FAIL") + "  " + r.Name + ": " + r.Message
	}
}
