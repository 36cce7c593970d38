package harness

import "encoding/json"

// Verdict is the resolved tri-state outcome of a trial.
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictPassed
	VerdictFailed
)

func (v Verdict) String() string {
	switch v {
	case VerdictPassed:
		return "passed"
	case VerdictFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Bool maps the verdict onto the nullable boolean used by downstream sinks.
// Unknown is nil, never false.
func (v Verdict) Bool() *bool {
	switch v {
	case VerdictPassed:
		b := true
		return &b
	case VerdictFailed:
		b := false
		return &b
	default:
		return nil
	}
}

// TrialRecord is the canonical, schema-version-free form of one trial
// outcome. Raw preserves the original payload verbatim for downstream audit;
// the other fields are a derived projection of it.
type TrialRecord struct {
	TaskID       string
	TrialID      string
	OriginModel  string
	Verdict      Verdict
	Score        *float64
	InputTokens  *int
	OutputTokens *int
	Path         string
	Raw          json.RawMessage
}

// JobConfig is the job-level config.json contract.
type JobConfig struct {
	Agents   []AgentSpec   `json:"agents"`
	Datasets []DatasetSpec `json:"datasets"`
}

type AgentSpec struct {
	ModelName string      `json:"model_name"`
	Kwargs    AgentKwargs `json:"kwargs"`
}

type AgentKwargs struct {
	ThinkingLevel string `json:"thinking_level"`
	Mode          string `json:"mode"`
}

type DatasetSpec struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// TrialConfig is the trial-level config.json contract.
type TrialConfig struct {
	Agent AgentSpec `json:"agent"`
}

// JobResult models the slice of the job-level result.json the pipeline
// consumes. The full payload is carried separately as a raw blob.
type JobResult struct {
	Stats JobStats `json:"stats"`
}

type JobStats struct {
	Evals map[string]EvalEntry `json:"evals"`
}

type EvalEntry struct {
	Metrics []MetricEntry `json:"metrics"`
}

type MetricEntry struct {
	Mean *float64 `json:"mean"`
}

// Accuracy is the arithmetic mean of each evaluation group's first reported
// mean score. It is nil when no group reports one: no data is distinct from
// a confirmed zero score.
func (r *JobResult) Accuracy() *float64 {
	var means []float64
	for _, eval := range r.Stats.Evals {
		if len(eval.Metrics) == 0 || eval.Metrics[0].Mean == nil {
			continue
		}
		means = append(means, *eval.Metrics[0].Mean)
	}
	if len(means) == 0 {
		return nil
	}
	sum := 0.0
	for _, m := range means {
		sum += m
	}
	avg := sum / float64(len(means))
	return &avg
}
