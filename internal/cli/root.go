package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/codalotl/benchrelay/internal/output"
)

// Execute runs the CLI.
func Execute() error {
	printer := output.NewPrinter(os.Stdout, os.Stderr)
	root := &cobra.Command{
		Use:          "benchrelay",
		Short:        "Normalize and republish agent-benchmark harness results.",
		SilenceUsage: true,
	}
	root.AddCommand(newRowsCmd(printer))
	root.AddCommand(newPrepareCmd(printer))
	root.AddCommand(newInspectCmd(printer))
	return root.Execute()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
