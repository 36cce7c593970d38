package harness

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/codalotl/benchrelay/internal/output"
)

// Directories whose result.json files are tool output, not trial outcomes.
var nonTrialDirs = map[string]bool{
	"logs":     true,
	"output":   true,
	"verifier": true,
	"agent":    true,
}

// timestampDir matches job-level directories named by start time
// (e.g. 2026-01-07T02-13-09); their result.json is the job summary.
var timestampDir = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// Locate walks root and returns a TrialRecord for every readable trial
// result, sorted by task ID so reports are reproducible across runs. Files
// that are not valid JSON are skipped: partial artifact corruption must not
// abort the batch.
func Locate(root string, printer *output.Printer) ([]TrialRecord, error) {
	var records []TrialRecord
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || d.Name() != "result.json" {
			return nil
		}
		parent := filepath.Base(filepath.Dir(path))
		if timestampDir.MatchString(parent) || nonTrialDirs[parent] {
			return nil
		}
		if rec, ok := LoadTrialDir(filepath.Dir(path), printer); ok {
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].TaskID < records[j].TaskID
	})
	return records, nil
}

// LoadTrialDir loads dir/result.json into a canonical record, filling
// identifiers from the directory name when the payload omits them. ok is
// false when the file is unreadable or no task identifier can be recovered.
func LoadTrialDir(dir string, printer *output.Printer) (TrialRecord, bool) {
	path := filepath.Join(dir, "result.json")
	rec, ok := loadTrialResult(path)
	if !ok {
		return TrialRecord{}, false
	}
	base := filepath.Base(dir)
	if rec.TaskID == "" || rec.TrialID == "" {
		task, trial, derived := DeriveIdentifier(base)
		switch {
		case derived:
			if rec.TaskID == "" {
				rec.TaskID = task
			}
			if rec.TrialID == "" {
				rec.TrialID = trial
			}
		case rec.TaskID == "":
			if printer != nil {
				printer.Warnf("skipping %s: directory %q does not encode a task identifier", path, base)
			}
			return TrialRecord{}, false
		default:
			rec.TrialID = base
		}
	}
	rec.OriginModel = OriginModel(path)
	return rec, true
}

func loadTrialResult(path string) (TrialRecord, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return TrialRecord{}, false
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		return TrialRecord{}, false
	}

	rec := TrialRecord{
		Path:    path,
		Verdict: ResolveVerdict(payload),
		Raw:     json.RawMessage(raw),
	}
	if s, ok := payload["task_name"].(string); ok {
		rec.TaskID = s
	}
	if s, ok := payload["trial_name"].(string); ok {
		rec.TrialID = s
	}
	if f, ok := payload["score"].(float64); ok {
		rec.Score = &f
	}
	rec.InputTokens = intField(payload, "n_input_tokens")
	rec.OutputTokens = intField(payload, "n_output_tokens")
	return rec, true
}

func intField(payload map[string]any, key string) *int {
	f, ok := payload[key].(float64)
	if !ok {
		return nil
	}
	n := int(f)
	return &n
}

// LoadJSON decodes the JSON file at path into v.
func LoadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
