package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/codalotl/benchrelay/internal/ghactions"
	"github.com/codalotl/benchrelay/internal/output"
	"github.com/codalotl/benchrelay/internal/warehouse"
)

func newRowsCmd(printer *output.Printer) *cobra.Command {
	var dryRun bool
	var projectID, dataset, jobsDir string
	cmd := &cobra.Command{
		Use:   "rows",
		Short: "Build warehouse rows from harness job output and upload them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			jobDirs, err := warehouse.FindJobDirs(jobsDir)
			if err != nil {
				return err
			}
			if len(jobDirs) == 0 {
				return fmt.Errorf("no job folders found in %s", jobsDir)
			}

			opts := warehouse.BuildOptions{
				Context:     ghactions.FromEnv(),
				Experiments: os.Getenv("BENCHRELAY_EXPERIMENTS"),
				Now:         time.Now().UTC(),
				Printer:     printer,
			}
			var all []*warehouse.Row
			for _, jobDir := range jobDirs {
				rows := warehouse.BuildJobRows(jobDir, opts)
				printer.Appf("Found %d trial(s) in %s", len(rows), filepath.Base(jobDir))
				for i := range rows {
					all = append(all, &rows[i])
				}
			}
			if len(all) == 0 {
				return errors.New("no trial results found")
			}

			if dryRun {
				return printRows(printer, all)
			}

			uploader, err := warehouse.NewUploader(ctx, projectID, dataset)
			if err != nil {
				return err
			}
			defer uploader.Close()
			if err := uploader.Insert(ctx, all); err != nil {
				return err
			}
			printer.Appf("Uploaded %d row(s) to %s", len(all), uploader.TableID())
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print rows without uploading")
	cmd.Flags().StringVar(&projectID, "project-id", envOr("GCP_PROJECT_ID", "mux-benchmarks"), "GCP project ID")
	cmd.Flags().StringVar(&dataset, "dataset", envOr("BQ_DATASET", "benchmarks"), "BigQuery dataset")
	cmd.Flags().StringVar(&jobsDir, "jobs-dir", "jobs", "directory containing harness job folders")
	return cmd
}

func printRows(printer *output.Printer, rows []*warehouse.Row) error {
	printer.Appf("=== Dry run: %d row(s) ===", len(rows))
	limit := 3
	if len(rows) < limit {
		limit = len(rows)
	}
	for _, row := range rows[:limit] {
		data, err := json.MarshalIndent(row, "", "  ")
		if err != nil {
			return err
		}
		printer.App(string(data))
	}
	if len(rows) > limit {
		printer.Appf("... and %d more row(s)", len(rows)-limit)
	}
	return nil
}
