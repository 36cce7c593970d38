package harness

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codalotl/benchrelay/internal/output"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLocateFindsTrialResultsAndSortsByTask(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	jobs := filepath.Join(root, "terminal-bench-results-openai-gpt-5.2-1", "jobs", "2026-01-07T02-13-09")
	writeFile(t, filepath.Join(jobs, "zeta-task__aa", "result.json"), `{"passed": true}`)
	writeFile(t, filepath.Join(jobs, "alpha-task__bb", "result.json"), `{"score": 0}`)

	records, err := Locate(root, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "alpha-task", records[0].TaskID)
	require.Equal(t, "zeta-task", records[1].TaskID)
	require.Equal(t, VerdictFailed, records[0].Verdict)
	require.Equal(t, VerdictPassed, records[1].Verdict)
	require.Equal(t, "openai-gpt-5.2-1", records[0].OriginModel)
}

func TestLocateExcludesJobLevelAndAuxiliaryResults(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	job := filepath.Join(root, "jobs", "2026-01-07T02-13-09")
	// Job-level result sits directly in a timestamp-named directory.
	writeFile(t, filepath.Join(job, "result.json"), `{"stats": {}}`)
	// Tool output directories are not trials either.
	writeFile(t, filepath.Join(job, "some-task__cc", "verifier", "result.json"), `{"passed": true}`)
	writeFile(t, filepath.Join(job, "some-task__cc", "agent", "result.json"), `{"passed": true}`)
	writeFile(t, filepath.Join(job, "some-task__cc", "result.json"), `{"passed": false}`)

	records, err := Locate(root, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "some-task", records[0].TaskID)
	require.Equal(t, VerdictFailed, records[0].Verdict)
}

func TestLocateSkipsUnparseableFilesSilently(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "good-task__aa", "result.json"), `{"passed": true}`)
	writeFile(t, filepath.Join(root, "bad-task__bb", "result.json"), `{not json`)

	records, err := Locate(root, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "good-task", records[0].TaskID)
}

func TestLocatePayloadIdentifiersTakePrecedence(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dir-task__aa", "result.json"),
		`{"passed": true, "task_name": "payload-task", "trial_name": "payload-trial"}`)

	records, err := Locate(root, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "payload-task", records[0].TaskID)
	require.Equal(t, "payload-trial", records[0].TrialID)
}

func TestLocateEmptyPayloadIdentifiersFallBackToDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dir-task__aa", "result.json"),
		`{"passed": true, "task_name": "", "trial_name": ""}`)

	records, err := Locate(root, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "dir-task", records[0].TaskID)
	require.Equal(t, "dir-task__aa", records[0].TrialID)
}

func TestLocateWarnsAndSkipsWhenNoIdentifierRecoverable(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "noseparator", "result.json"), `{"passed": true}`)

	var errBuf bytes.Buffer
	printer := output.NewPrinter(nil, &errBuf)
	records, err := Locate(root, printer)
	require.NoError(t, err)
	require.Empty(t, records)
	require.Contains(t, errBuf.String(), "Warning:")
	require.Contains(t, errBuf.String(), "noseparator")
}

func TestLoadTrialDirExtractsTokensAndScore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, "tok-task__aa")
	writeFile(t, filepath.Join(dir, "result.json"),
		`{"score": 0.75, "n_input_tokens": 1200, "n_output_tokens": 300}`)

	rec, ok := LoadTrialDir(dir, nil)
	require.True(t, ok)
	require.Equal(t, VerdictPassed, rec.Verdict)
	require.NotNil(t, rec.Score)
	require.Equal(t, 0.75, *rec.Score)
	require.NotNil(t, rec.InputTokens)
	require.Equal(t, 1200, *rec.InputTokens)
	require.NotNil(t, rec.OutputTokens)
	require.Equal(t, 300, *rec.OutputTokens)
	require.JSONEq(t, `{"score": 0.75, "n_input_tokens": 1200, "n_output_tokens": 300}`, string(rec.Raw))
}
