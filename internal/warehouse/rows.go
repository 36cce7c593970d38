package warehouse

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/codalotl/benchrelay/internal/ghactions"
	"github.com/codalotl/benchrelay/internal/harness"
	"github.com/codalotl/benchrelay/internal/output"
)

// Row is one warehouse record per trial. The structured columns are a
// derived projection; the raw job and trial payloads ride along as opaque
// blobs so the original data is never lost to normalization.
type Row struct {
	RunID           string  `json:"run_id"`
	GithubRunID     *int64  `json:"github_run_id"`
	GithubWorkflow  *string `json:"github_workflow"`
	GithubSHA       *string `json:"github_sha"`
	GithubRef       *string `json:"github_ref"`
	GithubActor     *string `json:"github_actor"`
	GithubEventName *string `json:"github_event_name"`

	Dataset     *string `json:"dataset"`
	Experiments *string `json:"experiments"`

	// Run timing is not present in Harbor output; the columns are kept for
	// table compatibility.
	RunStartedAt   *time.Time `json:"run_started_at"`
	RunCompletedAt *time.Time `json:"run_completed_at"`

	Accuracy      *float64  `json:"accuracy"`
	RunResultJSON *string   `json:"run_result_json"`
	IngestedAt    time.Time `json:"ingested_at"`

	TaskID        string   `json:"task_id"`
	TrialID       string   `json:"trial_id"`
	ModelName     *string  `json:"model_name"`
	ThinkingLevel *string  `json:"thinking_level"`
	Mode          *string  `json:"mode"`
	NResolved     int      `json:"n_resolved"`
	NUnresolved   int      `json:"n_unresolved"`
	Passed        *bool    `json:"passed"`
	Score         *float64 `json:"score"`
	NInputTokens  *int     `json:"n_input_tokens"`
	NOutputTokens *int     `json:"n_output_tokens"`
	TaskResultJSON string   `json:"task_result_json"`
}

type BuildOptions struct {
	Context     ghactions.Context
	Experiments string
	Now         time.Time
	Printer     *output.Printer
}

// FindJobDirs returns the job folders directly under jobsDir, sorted by
// name. A missing jobs directory yields no folders, not an error; the
// caller decides whether an empty batch is fatal.
func FindJobDirs(jobsDir string) ([]string, error) {
	entries, err := os.ReadDir(jobsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(jobsDir, entry.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// BuildJobRows flattens one job directory into warehouse rows, one per
// resolvable trial. Rows are accumulated first and the job-wide resolved
// counts back-filled afterwards; nothing is emitted until every trial in the
// job has been resolved.
func BuildJobRows(jobDir string, opts BuildOptions) []Row {
	var jobConfig harness.JobConfig
	// Job-level files are best effort: a job with a corrupt config still
	// contributes its trials.
	_ = harness.LoadJSON(filepath.Join(jobDir, "config.json"), &jobConfig)

	var jobResult harness.JobResult
	var runResultJSON *string
	if raw, err := os.ReadFile(filepath.Join(jobDir, "result.json")); err == nil {
		if json.Valid(raw) {
			s := string(raw)
			runResultJSON = &s
			_ = json.Unmarshal(raw, &jobResult)
		}
	}

	var jobAgent harness.AgentSpec
	if len(jobConfig.Agents) > 0 {
		jobAgent = jobConfig.Agents[0]
	}

	var dataset *string
	if len(jobConfig.Datasets) > 0 {
		ds := jobConfig.Datasets[0]
		if ds.Name != "" && ds.Version != "" {
			s := ds.Name + "@" + ds.Version
			dataset = &s
		}
	}

	base := Row{
		RunID:           filepath.Base(jobDir),
		GithubRunID:     opts.Context.RunID,
		GithubWorkflow:  optString(opts.Context.Workflow),
		GithubSHA:       optString(opts.Context.SHA),
		GithubRef:       optString(opts.Context.Ref),
		GithubActor:     optString(opts.Context.Actor),
		GithubEventName: optString(opts.Context.EventName),
		Dataset:         dataset,
		Experiments:     optString(opts.Experiments),
		Accuracy:        jobResult.Accuracy(),
		RunResultJSON:   runResultJSON,
		IngestedAt:      opts.Now,
	}

	var rows []Row
	for _, trialDir := range trialDirs(jobDir) {
		rec, ok := harness.LoadTrialDir(trialDir, opts.Printer)
		if !ok {
			continue
		}

		var trialConfig harness.TrialConfig
		_ = harness.LoadJSON(filepath.Join(trialDir, "config.json"), &trialConfig)
		agent := trialConfig.Agent

		row := base
		row.TaskID = rec.TaskID
		row.TrialID = rec.TrialID
		row.ModelName = fallback(agent.ModelName, jobAgent.ModelName)
		row.ThinkingLevel = fallback(agent.Kwargs.ThinkingLevel, jobAgent.Kwargs.ThinkingLevel)
		row.Mode = fallback(agent.Kwargs.Mode, jobAgent.Kwargs.Mode)
		row.Passed = rec.Verdict.Bool()
		row.Score = rec.Score
		row.NInputTokens = rec.InputTokens
		row.NOutputTokens = rec.OutputTokens
		row.TaskResultJSON = string(rec.Raw)
		rows = append(rows, row)
	}

	nResolved, nUnresolved := 0, 0
	for _, row := range rows {
		switch {
		case row.Passed != nil && *row.Passed:
			nResolved++
		case row.Passed != nil:
			nUnresolved++
		}
	}
	for i := range rows {
		rows[i].NResolved = nResolved
		rows[i].NUnresolved = nUnresolved
	}
	return rows
}

// trialDirs returns the candidate trial directories of a job, sorted. Trials
// sit either directly under the job folder or under a trials/ subdirectory
// depending on harness version; both shapes are handled.
func trialDirs(jobDir string) []string {
	var dirs []string
	roots := []string{jobDir}
	if info, err := os.Stat(filepath.Join(jobDir, "trials")); err == nil && info.IsDir() {
		roots = append(roots, filepath.Join(jobDir, "trials"))
	}
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() || entry.Name() == "trials" {
				continue
			}
			dir := filepath.Join(root, entry.Name())
			if _, err := os.Stat(filepath.Join(dir, "result.json")); err != nil {
				continue
			}
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func fallback(value, jobValue string) *string {
	if value != "" {
		return &value
	}
	return optString(jobValue)
}
