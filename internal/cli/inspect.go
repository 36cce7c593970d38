package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codalotl/benchrelay/internal/ghactions"
	"github.com/codalotl/benchrelay/internal/harness"
	"github.com/codalotl/benchrelay/internal/output"
	"github.com/codalotl/benchrelay/internal/report"
)

func newInspectCmd(printer *output.Printer) *cobra.Command {
	var runID int64
	var listRuns, failuresOnly, verbose bool
	var task, model, cacheDir, csvPath, workflow string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Download run artifacts and summarize trial outcomes per model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := ghactions.NewClient(printer)
			if err != nil {
				return err
			}

			if listRuns {
				runs, err := client.ListRuns(ctx, workflow, 10)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					return errors.New("no runs found")
				}
				printer.App("Recent nightly runs:")
				for _, run := range runs {
					mark := "✗"
					if run.Conclusion == "success" {
						mark = "✓"
					}
					printer.Appf("  %s %d  %s  %s", mark, run.DatabaseID, run.Date(), run.DisplayTitle)
				}
				return nil
			}

			if runID == 0 {
				runs, err := client.ListRuns(ctx, workflow, 1)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					return errors.New("no runs found")
				}
				runID = runs[0].DatabaseID
				printer.Appf("Using latest run: %d", runID)
			}

			runDir := filepath.Join(cacheDir, strconv.FormatInt(runID, 10))
			if _, err := os.Stat(runDir); err != nil {
				if err := client.DownloadRun(ctx, runID, runDir, harness.ArtifactPrefix); err != nil {
					return err
				}
			} else {
				printer.Appf("Using cached run data from %s", runDir)
			}

			records, err := harness.Locate(runDir, printer)
			if err != nil {
				return err
			}
			records = filterRecords(records, task, model, failuresOnly)
			if len(records) == 0 {
				printer.App("No matching results found")
				return nil
			}

			rows := report.Summarize(records)
			if csvPath != "" {
				if err := writeSummaryCSV(csvPath, rows); err != nil {
					return err
				}
				printer.Appf("Wrote %s", csvPath)
			}

			groups := report.GroupByModel(records)
			for _, row := range rows {
				printer.Appf("%s: %d/%d passed", row.Model, row.Passed, row.Total)
				for _, rec := range groups[row.Model] {
					printTrial(printer, rec, verbose)
				}
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&runID, "run-id", 0, "run ID to inspect (default: latest)")
	cmd.Flags().BoolVar(&listRuns, "list-runs", false, "list recent runs without downloading")
	cmd.Flags().StringVar(&task, "task", "", "filter to tasks containing this substring")
	cmd.Flags().StringVar(&model, "model", "", "filter to artifacts for this model")
	cmd.Flags().BoolVar(&failuresOnly, "failures-only", false, "show only failed trials")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detail for passing trials too")
	cmd.Flags().StringVar(&cacheDir, "output-dir", ".run_logs", "cache directory for downloaded runs")
	cmd.Flags().StringVar(&csvPath, "csv", "", "also write the per-model summary as CSV")
	cmd.Flags().StringVar(&workflow, "workflow", ghactions.DefaultWorkflow, "workflow whose runs carry the artifacts")
	return cmd
}

func filterRecords(records []harness.TrialRecord, task, model string, failuresOnly bool) []harness.TrialRecord {
	taskNeedle := strings.ToLower(task)
	modelNeedle := strings.ToLower(strings.ReplaceAll(model, "/", "-"))
	var out []harness.TrialRecord
	for _, rec := range records {
		if taskNeedle != "" && !strings.Contains(strings.ToLower(rec.TaskID), taskNeedle) {
			continue
		}
		if modelNeedle != "" && !strings.Contains(strings.ToLower(rec.Path), modelNeedle) {
			continue
		}
		if failuresOnly && rec.Verdict != harness.VerdictFailed {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func printTrial(printer *output.Printer, rec harness.TrialRecord, verbose bool) {
	var status string
	switch rec.Verdict {
	case harness.VerdictPassed:
		status = "✓ PASS"
	case harness.VerdictFailed:
		status = "✗ FAIL"
	default:
		status = "? UNKNOWN"
	}
	printer.Appf("  %s  %s", status, rec.TaskID)

	if !verbose && rec.Verdict == harness.VerdictPassed {
		return
	}

	printAgentStderr(printer, filepath.Dir(rec.Path))

	var payload struct {
		ExceptionInfo  any `json:"exception_info"`
		VerifierResult struct {
			Rewards map[string]any `json:"rewards"`
		} `json:"verifier_result"`
	}
	if err := json.Unmarshal(rec.Raw, &payload); err != nil {
		return
	}
	if payload.ExceptionInfo != nil {
		printer.Appf("         exception: %v", payload.ExceptionInfo)
	}
	if rec.Verdict == harness.VerdictFailed && len(payload.VerifierResult.Rewards) > 0 {
		data, err := json.Marshal(payload.VerifierResult.Rewards)
		if err == nil {
			printer.Appf("         verifier: %s", data)
		}
	}
}

// printAgentStderr shows the tail of each agent command's stderr, the
// quickest signal for why a trial failed.
func printAgentStderr(printer *output.Printer, trialDir string) {
	agentDir := filepath.Join(trialDir, "agent")
	entries, err := os.ReadDir(agentDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "command-") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(agentDir, entry.Name(), "stderr.txt"))
		if err != nil {
			continue
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			continue
		}
		lines := strings.Split(text, "\n")
		if len(lines) > 10 {
			lines = lines[len(lines)-10:]
		}
		printer.Appf("         stderr (last %d lines):", len(lines))
		for _, line := range lines {
			if len(line) > 100 {
				line = line[:100]
			}
			printer.App("           " + line)
		}
	}
}

func writeSummaryCSV(path string, rows []report.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
