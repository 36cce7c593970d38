package ghactions

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/mattn/go-shellwords"

	"github.com/codalotl/benchrelay/internal/output"
)

const (
	// ghEnvVar overrides the gh invocation, e.g. "gh --profile ci" or a
	// wrapper script. Parsed with shell word splitting.
	ghEnvVar = "BENCHRELAY_GH"

	repoEnvVar  = "BENCHRELAY_REPO"
	defaultRepo = "coder/mux"

	// DefaultWorkflow is the nightly benchmark workflow whose artifacts the
	// pipeline ingests.
	DefaultWorkflow = "nightly-terminal-bench.yml"
)

// Client lists and downloads workflow run artifacts through the gh CLI. It
// is transport plumbing only: retry and auth policy belong to gh itself.
type Client struct {
	repo    string
	argv    []string
	printer *output.Printer
}

func NewClient(printer *output.Printer) (*Client, error) {
	argv := []string{"gh"}
	if env := strings.TrimSpace(os.Getenv(ghEnvVar)); env != "" {
		parsed, err := shellwords.Parse(env)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", ghEnvVar, err)
		}
		if len(parsed) > 0 {
			argv = parsed
		}
	}
	repo := strings.TrimSpace(os.Getenv(repoEnvVar))
	if repo == "" {
		repo = defaultRepo
	}
	return &Client{repo: repo, argv: argv, printer: printer}, nil
}

func (c *Client) Repo() string { return c.repo }

// RunInfo is one workflow run as reported by gh run list.
type RunInfo struct {
	DatabaseID   int64     `json:"databaseId"`
	Status       string    `json:"status"`
	Conclusion   string    `json:"conclusion"`
	CreatedAt    time.Time `json:"createdAt"`
	DisplayTitle string    `json:"displayTitle"`
}

// Date is the run's calendar date, used to label submissions.
func (r RunInfo) Date() civil.Date {
	return civil.DateOf(r.CreatedAt)
}

// ListRuns returns the most recent runs of the given workflow.
func (c *Client) ListRuns(ctx context.Context, workflow string, limit int) ([]RunInfo, error) {
	out, err := c.run(ctx,
		"run", "list",
		"--repo="+c.repo,
		"--workflow="+workflow,
		fmt.Sprintf("--limit=%d", limit),
		"--json=databaseId,status,conclusion,createdAt,displayTitle",
	)
	if err != nil {
		return nil, err
	}
	var runs []RunInfo
	if err := json.Unmarshal(out, &runs); err != nil {
		return nil, fmt.Errorf("parse run list: %w", err)
	}
	return runs, nil
}

// LatestSuccessfulRun returns the newest successful run of the workflow.
func (c *Client) LatestSuccessfulRun(ctx context.Context, workflow string) (*RunInfo, error) {
	out, err := c.run(ctx,
		"run", "list",
		"--repo="+c.repo,
		"--workflow="+workflow,
		"--status=success",
		"--limit=1",
		"--json=databaseId,status,conclusion,createdAt,displayTitle",
	)
	if err != nil {
		return nil, err
	}
	var runs []RunInfo
	if err := json.Unmarshal(out, &runs); err != nil {
		return nil, fmt.Errorf("parse run list: %w", err)
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no successful %s runs found", workflow)
	}
	return &runs[0], nil
}

// Artifact is one uploaded workflow artifact.
type Artifact struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	SizeInBytes int64  `json:"size_in_bytes"`
}

// ListArtifacts returns the run's artifacts whose names carry prefix.
func (c *Client) ListArtifacts(ctx context.Context, runID int64, prefix string) ([]Artifact, error) {
	out, err := c.run(ctx, "api", fmt.Sprintf("repos/%s/actions/runs/%d/artifacts", c.repo, runID))
	if err != nil {
		return nil, err
	}
	var payload struct {
		Artifacts []Artifact `json:"artifacts"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		return nil, fmt.Errorf("parse artifact list: %w", err)
	}
	var filtered []Artifact
	for _, a := range payload.Artifacts {
		if strings.HasPrefix(a.Name, prefix) {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// DownloadArtifact downloads one artifact zip and extracts it into destDir.
func (c *Client) DownloadArtifact(ctx context.Context, artifactID int64, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	zipPath := filepath.Join(destDir, "artifact.zip")
	_, err := c.run(ctx,
		"api",
		fmt.Sprintf("repos/%s/actions/artifacts/%d/zip", c.repo, artifactID),
		"--output", zipPath,
	)
	if err != nil {
		return err
	}
	defer os.Remove(zipPath)
	if err := extractZip(zipPath, destDir); err != nil {
		return fmt.Errorf("extract artifact %d: %w", artifactID, err)
	}
	return nil
}

// DownloadRun downloads every matching artifact of a run into
// destDir/<artifact-name>/.
func (c *Client) DownloadRun(ctx context.Context, runID int64, destDir, prefix string) error {
	artifacts, err := c.ListArtifacts(ctx, runID, prefix)
	if err != nil {
		return err
	}
	if len(artifacts) == 0 {
		return fmt.Errorf("no artifacts found for run %d", runID)
	}
	if c.printer != nil {
		c.printer.Appf("Downloading %d artifact(s) to %s...", len(artifacts), destDir)
	}
	for _, artifact := range artifacts {
		if err := c.DownloadArtifact(ctx, artifact.ID, filepath.Join(destDir, artifact.Name)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	full := append(append([]string{}, c.argv[1:]...), args...)
	return c.printer.RunCommand(ctx, c.argv[0], full...)
}

func extractZip(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()
	for _, f := range r.File {
		target := filepath.Join(destDir, filepath.FromSlash(f.Name))
		// Reject entries that escape the destination.
		if rel, err := filepath.Rel(destDir, target); err != nil || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("artifact entry %q escapes destination", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := extractZipFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractZipFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	in, err := f.Open()
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return nil
}
