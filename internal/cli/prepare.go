package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/codalotl/benchrelay/internal/ghactions"
	"github.com/codalotl/benchrelay/internal/harness"
	"github.com/codalotl/benchrelay/internal/output"
	"github.com/codalotl/benchrelay/internal/submission"
)

const defaultLeaderboardRepo = "alexgshaw/terminal-bench-2-leaderboard"

func newPrepareCmd(printer *output.Printer) *cobra.Command {
	var runID int64
	var artifactsDir, outputDir string
	var models []string
	var benchmark, version, workflow, leaderboardRepo string
	agent := submission.DefaultAgent

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Assemble a leaderboard submission bundle from run artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runDate := civil.DateOf(time.Now())
			dir := artifactsDir
			downloadedTo := ""
			if dir == "" {
				client, err := ghactions.NewClient(printer)
				if err != nil {
					return err
				}
				var run *ghactions.RunInfo
				if runID != 0 {
					run = &ghactions.RunInfo{DatabaseID: runID, CreatedAt: time.Now()}
				} else {
					printer.App("Fetching latest successful nightly run...")
					run, err = client.LatestSuccessfulRun(ctx, workflow)
					if err != nil {
						return err
					}
				}
				runDate = run.Date()
				printer.Appf("Using run %d from %s", run.DatabaseID, runDate)

				artifacts, err := client.ListArtifacts(ctx, run.DatabaseID, harness.ArtifactPrefix)
				if err != nil {
					return err
				}
				if len(artifacts) == 0 {
					return fmt.Errorf("no %s* artifacts found for run %d", harness.ArtifactPrefix, run.DatabaseID)
				}
				printer.Appf("Found %d artifact(s)", len(artifacts))
				if len(models) > 0 {
					artifacts = filterArtifactsByModel(artifacts, models)
					printer.Appf("Filtered to %d artifact(s) for specified models", len(artifacts))
				}

				tmp, err := os.MkdirTemp("", "benchrelay-")
				if err != nil {
					return err
				}
				printer.Appf("Downloading to %s", tmp)
				for _, artifact := range artifacts {
					if err := client.DownloadArtifact(ctx, artifact.ID, filepath.Join(tmp, artifact.Name)); err != nil {
						return err
					}
				}
				dir = tmp
				downloadedTo = tmp
			} else if _, err := os.Stat(dir); err != nil {
				return fmt.Errorf("artifacts directory %s does not exist", dir)
			}

			printer.Appf("Preparing submission in %s...", outputDir)
			subs, err := submission.Assemble(submission.Options{
				ArtifactsDir: dir,
				OutputDir:    outputDir,
				Benchmark:    benchmark,
				Version:      version,
				Agent:        agent,
				Models:       models,
				Printer:      printer,
			})
			if err != nil {
				return err
			}
			if len(subs) == 0 {
				return errors.New("no valid submissions created")
			}

			printer.Appf("Created %d submission(s):", len(subs))
			for _, model := range sortedKeys(subs) {
				printer.Appf("  - %s: %s", model, subs[model])
			}

			printer.App("Next steps - submit with hf CLI:")
			printer.Appf("  hf upload %s \\", leaderboardRepo)
			printer.Appf("    %s/submissions submissions \\", outputDir)
			printer.App("    --repo-type dataset --create-pr \\")
			printer.Appf("    --commit-message %q", fmt.Sprintf("%s submission (%s)", agent.DisplayName, runDate))

			if downloadedTo != "" {
				printer.Appf("Note: Downloaded artifacts are in %s", downloadedTo)
				printer.App("      Delete with: rm -rf " + downloadedTo)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&runID, "run-id", 0, "GitHub Actions run ID to download (default: latest successful nightly)")
	cmd.Flags().StringVar(&artifactsDir, "artifacts-dir", "", "use existing downloaded artifacts instead of downloading")
	cmd.Flags().StringVar(&outputDir, "output-dir", "leaderboard_submission", "output directory for the submission bundle")
	cmd.Flags().StringSliceVar(&models, "models", nil, "only process specific models (e.g. anthropic/claude-opus-4-5)")
	cmd.Flags().StringVar(&benchmark, "benchmark", "terminal-bench", "leaderboard benchmark name")
	cmd.Flags().StringVar(&version, "benchmark-version", "2.0", "leaderboard benchmark version")
	cmd.Flags().StringVar(&workflow, "workflow", ghactions.DefaultWorkflow, "workflow whose runs carry the artifacts")
	cmd.Flags().StringVar(&leaderboardRepo, "leaderboard-repo", defaultLeaderboardRepo, "HuggingFace leaderboard dataset repo")
	cmd.Flags().StringVar(&agent.URL, "agent-url", agent.URL, "submitting agent homepage")
	cmd.Flags().StringVar(&agent.DisplayName, "agent-name", agent.DisplayName, "submitting agent display name")
	cmd.Flags().StringVar(&agent.OrgDisplayName, "agent-org", agent.OrgDisplayName, "submitting agent organization")
	return cmd
}

func filterArtifactsByModel(artifacts []ghactions.Artifact, models []string) []ghactions.Artifact {
	var out []ghactions.Artifact
	for _, artifact := range artifacts {
		for _, model := range models {
			if strings.Contains(artifact.Name, submission.Slug(model)) {
				out = append(out, artifact)
				break
			}
		}
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
