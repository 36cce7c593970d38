package harness

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccuracyMeansFirstMetricAcrossEvals(t *testing.T) {
	t.Parallel()

	var result JobResult
	require.NoError(t, json.Unmarshal([]byte(`{
		"stats": {
			"evals": {
				"main": {"metrics": [{"mean": 0.5}, {"mean": 0.9}]},
				"extra": {"metrics": [{"mean": 0.7}]}
			}
		}
	}`), &result))

	acc := result.Accuracy()
	require.NotNil(t, acc)
	// Only the first metrics entry per eval group counts: (0.5 + 0.7) / 2.
	require.InDelta(t, 0.6, *acc, 1e-9)
}

func TestAccuracyAbsentWhenNoMetrics(t *testing.T) {
	t.Parallel()

	var result JobResult
	require.NoError(t, json.Unmarshal([]byte(`{"stats": {"evals": {}}}`), &result))
	require.Nil(t, result.Accuracy())

	// A metrics entry without a mean does not contribute.
	require.NoError(t, json.Unmarshal([]byte(`{
		"stats": {"evals": {"main": {"metrics": [{"count": 3}]}}}
	}`), &result))
	require.Nil(t, result.Accuracy())
}

func TestAccuracyZeroIsNotAbsent(t *testing.T) {
	t.Parallel()

	var result JobResult
	require.NoError(t, json.Unmarshal([]byte(`{
		"stats": {"evals": {"main": {"metrics": [{"mean": 0}]}}}
	}`), &result))

	acc := result.Accuracy()
	require.NotNil(t, acc)
	require.Zero(t, *acc)
}
