package ghactions

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/require"
)

func TestNewClientDefaults(t *testing.T) {
	t.Setenv("BENCHRELAY_GH", "")
	t.Setenv("BENCHRELAY_REPO", "")

	client, err := NewClient(nil)
	require.NoError(t, err)
	require.Equal(t, "coder/mux", client.Repo())
	require.Equal(t, []string{"gh"}, client.argv)
}

func TestNewClientEnvOverrides(t *testing.T) {
	t.Setenv("BENCHRELAY_GH", `gh --profile "ci bot"`)
	t.Setenv("BENCHRELAY_REPO", "someorg/somerepo")

	client, err := NewClient(nil)
	require.NoError(t, err)
	require.Equal(t, "someorg/somerepo", client.Repo())
	require.Equal(t, []string{"gh", "--profile", "ci bot"}, client.argv)
}

func TestNewClientRejectsUnparseableOverride(t *testing.T) {
	t.Setenv("BENCHRELAY_GH", `gh --flag "unterminated`)

	_, err := NewClient(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "BENCHRELAY_GH")
}

func TestRunInfoDate(t *testing.T) {
	t.Parallel()

	run := RunInfo{CreatedAt: time.Date(2026, 8, 24, 23, 59, 0, 0, time.UTC)}
	require.Equal(t, civil.Date{Year: 2026, Month: time.August, Day: 24}, run.Date())
}

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

func TestExtractZip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	zipPath := filepath.Join(dir, "artifact.zip")
	writeZip(t, zipPath, map[string]string{
		"jobs/2026-01-07T02-13-09/result.json":              `{"stats": {}}`,
		"jobs/2026-01-07T02-13-09/task-a__aa/result.json":   `{"passed": true}`,
		"jobs/2026-01-07T02-13-09/task-a__aa/agent/log.txt": "hello",
	})

	dest := filepath.Join(dir, "out")
	require.NoError(t, extractZip(zipPath, dest))

	data, err := os.ReadFile(filepath.Join(dest, "jobs", "2026-01-07T02-13-09", "task-a__aa", "result.json"))
	require.NoError(t, err)
	require.Equal(t, `{"passed": true}`, string(data))
	require.FileExists(t, filepath.Join(dest, "jobs", "2026-01-07T02-13-09", "task-a__aa", "agent", "log.txt"))
}

func TestExtractZipRejectsPathTraversal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	zipPath := filepath.Join(dir, "evil.zip")
	writeZip(t, zipPath, map[string]string{
		"../escape.txt": "nope",
	})

	dest := filepath.Join(dir, "out")
	err := extractZip(zipPath, dest)
	require.Error(t, err)
	require.Contains(t, err.Error(), "escapes destination")
	require.NoFileExists(t, filepath.Join(dir, "escape.txt"))
}
