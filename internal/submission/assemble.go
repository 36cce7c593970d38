package submission

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codalotl/benchrelay/internal/fsutil"
	"github.com/codalotl/benchrelay/internal/harness"
	"github.com/codalotl/benchrelay/internal/output"
)

type Options struct {
	ArtifactsDir string
	OutputDir    string
	Benchmark    string
	Version      string
	Agent        AgentMetadata
	Models       []string // optional provider/model filter
	Printer      *output.Printer
}

// Assemble builds the leaderboard submission bundle from downloaded
// artifacts and returns a mapping from model identifier to its submission
// directory.
//
// Layout: <output>/submissions/<benchmark>/<version>/<agent>__<model-slug>/
// with one metadata.yaml per model and one subdirectory per contributing
// job. Jobs whose model cannot be determined are skipped with a warning,
// never silently and never with a guessed model.
func Assemble(opts Options) (map[string]string, error) {
	if strings.TrimSpace(opts.ArtifactsDir) == "" {
		return nil, errors.New("ArtifactsDir is required")
	}
	if strings.TrimSpace(opts.OutputDir) == "" {
		return nil, errors.New("OutputDir is required")
	}

	entries, err := os.ReadDir(opts.ArtifactsDir)
	if err != nil {
		return nil, fmt.Errorf("read artifacts dir: %w", err)
	}

	modelFilter := sliceToSet(opts.Models)
	submissions := map[string]string{}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		artifactDir := filepath.Join(opts.ArtifactsDir, entry.Name())

		// Harbor artifacts nest job folders under jobs/; older ones do not.
		jobsDir := artifactDir
		if info, err := os.Stat(filepath.Join(artifactDir, "jobs")); err == nil && info.IsDir() {
			jobsDir = filepath.Join(artifactDir, "jobs")
		}

		jobEntries, err := os.ReadDir(jobsDir)
		if err != nil {
			continue
		}
		for _, jobEntry := range jobEntries {
			if !jobEntry.IsDir() {
				continue
			}
			jobDir := filepath.Join(jobsDir, jobEntry.Name())
			if !isJobDir(jobDir) {
				continue
			}

			model := modelForJob(jobDir, entry.Name())
			if model == "" {
				if opts.Printer != nil {
					opts.Printer.Warnf("could not determine model for %s, skipping", jobDir)
				}
				continue
			}
			if modelFilter != nil && !modelFilter[model] {
				continue
			}

			submissionDir := filepath.Join(
				opts.OutputDir,
				"submissions",
				opts.Benchmark,
				opts.Version,
				opts.Agent.DisplayName+"__"+Slug(model),
			)
			if err := os.MkdirAll(submissionDir, 0o755); err != nil {
				return nil, err
			}
			meta := metadataForModel(model, opts.Printer)
			if err := writeMetadataIfAbsent(filepath.Join(submissionDir, "metadata.yaml"), opts.Agent, meta); err != nil {
				return nil, err
			}

			dest := filepath.Join(submissionDir, jobEntry.Name())
			if err := fsutil.ReplaceDir(jobDir, dest); err != nil {
				return nil, fmt.Errorf("copy job %s: %w", jobEntry.Name(), err)
			}
			if opts.Printer != nil {
				opts.Printer.Appf("  Copied %s -> %s", jobEntry.Name(), dest)
			}

			submissions[model] = submissionDir
		}
	}

	return submissions, nil
}

func isJobDir(dir string) bool {
	for _, name := range []string{"config.json", "result.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// modelForJob resolves which model produced a job. Priority: explicit
// model_name in the job config, then the nested agent_kwargs field, then a
// pattern match against the artifact directory name.
func modelForJob(jobDir, artifactName string) string {
	var cfg struct {
		ModelName   string `json:"model_name"`
		AgentKwargs struct {
			ModelName string `json:"model_name"`
		} `json:"agent_kwargs"`
	}
	if err := harness.LoadJSON(filepath.Join(jobDir, "config.json"), &cfg); err == nil {
		if cfg.ModelName != "" {
			return cfg.ModelName
		}
		if cfg.AgentKwargs.ModelName != "" {
			return cfg.AgentKwargs.ModelName
		}
	}
	return ModelFromArtifactName(artifactName)
}

func sliceToSet(items []string) map[string]bool {
	var out map[string]bool
	for _, s := range items {
		val := strings.TrimSpace(s)
		if val == "" {
			continue
		}
		if out == nil {
			out = map[string]bool{}
		}
		out[val] = true
	}
	return out
}
