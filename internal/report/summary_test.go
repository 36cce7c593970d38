package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codalotl/benchrelay/internal/harness"
)

func rec(model string, verdict harness.Verdict) harness.TrialRecord {
	return harness.TrialRecord{TaskID: "task", TrialID: "task__x", OriginModel: model, Verdict: verdict}
}

func TestSummarizeCountsPerModel(t *testing.T) {
	t.Parallel()

	rows := Summarize([]harness.TrialRecord{
		rec("claude", harness.VerdictPassed),
		rec("claude", harness.VerdictFailed),
		rec("claude", harness.VerdictPassed),
		rec("gpt", harness.VerdictFailed),
	})
	require.Len(t, rows, 2)
	require.Equal(t, Row{Model: "claude", Passed: 2, Total: 3}, rows[0])
	require.Equal(t, Row{Model: "gpt", Passed: 0, Total: 1}, rows[1])
	require.InDelta(t, 2.0/3.0, rows[0].PassRate(), 1e-9)
}

func TestSummarizeUnknownCountsTowardTotalOnly(t *testing.T) {
	t.Parallel()

	rows := Summarize([]harness.TrialRecord{
		rec("claude", harness.VerdictPassed),
		rec("claude", harness.VerdictUnknown),
	})
	require.Len(t, rows, 1)
	require.Equal(t, 1, rows[0].Passed)
	require.Equal(t, 2, rows[0].Total)
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	require.Empty(t, Summarize(nil))
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := WriteCSV(&buf, []Row{{Model: "claude", Passed: 1, Total: 2}})
	require.NoError(t, err)
	require.Equal(t, "model,passed,total,pass_rate\nclaude,1,2,0.5000\n", buf.String())
}

func TestGroupByModel(t *testing.T) {
	t.Parallel()

	groups := GroupByModel([]harness.TrialRecord{
		rec("claude", harness.VerdictPassed),
		rec("gpt", harness.VerdictFailed),
		rec("claude", harness.VerdictFailed),
	})
	require.Len(t, groups, 2)
	require.Len(t, groups["claude"], 2)
	require.Len(t, groups["gpt"], 1)
}
