package warehouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
)

const tableName = "tbench_results"

// Save implements bigquery.ValueSaver. Nil fields are omitted so BigQuery
// stores NULL rather than a zero value; the insert ID makes streaming
// retries deduplicable.
func (r *Row) Save() (map[string]bigquery.Value, string, error) {
	m := map[string]bigquery.Value{
		"run_id":           r.RunID,
		"task_id":          r.TaskID,
		"trial_id":         r.TrialID,
		"n_resolved":       r.NResolved,
		"n_unresolved":     r.NUnresolved,
		"task_result_json": r.TaskResultJSON,
		"ingested_at":      r.IngestedAt,
	}
	putInt64(m, "github_run_id", r.GithubRunID)
	putString(m, "github_workflow", r.GithubWorkflow)
	putString(m, "github_sha", r.GithubSHA)
	putString(m, "github_ref", r.GithubRef)
	putString(m, "github_actor", r.GithubActor)
	putString(m, "github_event_name", r.GithubEventName)
	putString(m, "dataset", r.Dataset)
	putString(m, "experiments", r.Experiments)
	putTime(m, "run_started_at", r.RunStartedAt)
	putTime(m, "run_completed_at", r.RunCompletedAt)
	putFloat64(m, "accuracy", r.Accuracy)
	putString(m, "run_result_json", r.RunResultJSON)
	putString(m, "model_name", r.ModelName)
	putString(m, "thinking_level", r.ThinkingLevel)
	putString(m, "mode", r.Mode)
	putBool(m, "passed", r.Passed)
	putFloat64(m, "score", r.Score)
	putInt(m, "n_input_tokens", r.NInputTokens)
	putInt(m, "n_output_tokens", r.NOutputTokens)
	return m, uuid.NewString(), nil
}

// Uploader streams rows into the benchmark results table.
type Uploader struct {
	client  *bigquery.Client
	dataset string
}

func NewUploader(ctx context.Context, projectID, dataset string) (*Uploader, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create bigquery client: %w", err)
	}
	return &Uploader{client: client, dataset: dataset}, nil
}

func (u *Uploader) Close() error {
	return u.client.Close()
}

// TableID is the fully qualified table identifier, for caller reporting.
func (u *Uploader) TableID() string {
	return fmt.Sprintf("%s.%s.%s", u.client.Project(), u.dataset, tableName)
}

func (u *Uploader) Insert(ctx context.Context, rows []*Row) error {
	inserter := u.client.Dataset(u.dataset).Table(tableName).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		var multi bigquery.PutMultiError
		if errors.As(err, &multi) {
			return fmt.Errorf("bigquery rejected %d of %d row(s): %w", len(multi), len(rows), err)
		}
		return fmt.Errorf("insert rows: %w", err)
	}
	return nil
}

func putString(m map[string]bigquery.Value, key string, v *string) {
	if v != nil {
		m[key] = *v
	}
}

func putInt64(m map[string]bigquery.Value, key string, v *int64) {
	if v != nil {
		m[key] = *v
	}
}

func putInt(m map[string]bigquery.Value, key string, v *int) {
	if v != nil {
		m[key] = *v
	}
}

func putFloat64(m map[string]bigquery.Value, key string, v *float64) {
	if v != nil {
		m[key] = *v
	}
}

func putBool(m map[string]bigquery.Value, key string, v *bool) {
	if v != nil {
		m[key] = *v
	}
}

func putTime(m map[string]bigquery.Value, key string, v *time.Time) {
	if v != nil {
		m[key] = *v
	}
}
