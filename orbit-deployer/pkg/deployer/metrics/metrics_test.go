package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	opmetrics "github.com/orbit-stack/orbit-stack/orbit-service/metrics"
)

func TestDeployerMetrics(t *testing.T) {
	m := NewMetrics("")
	require.NotEmpty(t, m.Document(), "sanity check there are generated metrics docs")

	m.RecordInfo("v1.2.3")
	m.RecordRunStart()

	m.RecordStepSkipped("fund-batch-poster")
	onDone := m.RecordStep("fund-staker")
	onDone(nil)
	onDone = m.RecordStep("deposit-native-currency")
	onDone(errors.New("test err"))
	m.RecordRunOutcome(errors.New("test err"))

	c := opmetrics.NewMetricChecker(t, m.Registry())
	prefix := Namespace + "_default_"

	record := c.FindByName(prefix + "steps_total").FindByLabels(map[string]string{"step": "fund-batch-poster", "outcome": "skipped"})
	require.Equal(t, 1.0, record.Counter.GetValue())
	record = c.FindByName(prefix + "steps_total").FindByLabels(map[string]string{"step": "fund-staker", "outcome": "succeeded"})
	require.Equal(t, 1.0, record.Counter.GetValue())
	record = c.FindByName(prefix + "steps_total").FindByLabels(map[string]string{"step": "deposit-native-currency", "outcome": "failed"})
	require.Equal(t, 1.0, record.Counter.GetValue())

	record = c.FindByName(prefix + "step_duration_seconds").FindByLabels(map[string]string{"step": "fund-staker"})
	require.Equal(t, uint64(1), record.Histogram.GetSampleCount())

	record = c.FindByName(prefix + "run_success").FindByLabels(nil)
	require.Equal(t, 0.0, record.Gauge.GetValue())
	record = c.FindByName(prefix + "run_start_timestamp_seconds").FindByLabels(nil)
	require.NotZero(t, record.Gauge.GetValue())
	record = c.FindByName(prefix + "info").FindByLabels(map[string]string{"version": "v1.2.3"})
	require.Equal(t, 1.0, record.Gauge.GetValue())
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics("test")
	m.RecordRunOutcome(nil)
	path := filepath.Join(t.TempDir(), "orbit.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "orbit_deployer_test_run_success 1")
}

func TestNoopMetrics(t *testing.T) {
	var m Metricer = NoopMetrics{}
	m.RecordInfo("")
	m.RecordRunStart()
	m.RecordStep("x")(nil)
	m.RecordStepSkipped("x")
	m.RecordRunOutcome(nil)
}
