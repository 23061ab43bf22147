package metrics

import (
	"encoding/json"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

// Checker gathers a registry once and looks up metrics in the snapshot, failing the test
// when a lookup does not match exactly one entry.
type Checker struct {
	t        require.TestingT
	families []*dto.MetricFamily
}

func NewMetricChecker(t require.TestingT, reg *prometheus.Registry) *Checker {
	families, err := reg.Gather()
	require.NoError(t, err, "must gather metrics")
	return &Checker{t: t, families: families}
}

type FamilyChecker struct {
	t      require.TestingT
	family *dto.MetricFamily
}

func (c *Checker) FindByName(name string) *FamilyChecker {
	var match []*dto.MetricFamily
	for _, f := range c.families {
		if f.GetName() == name {
			match = append(match, f)
		}
	}
	require.Len(c.t, match, 1, "expected exactly one metric family named %s", name)
	return &FamilyChecker{t: c.t, family: match[0]}
}

// Dump renders the gathered families as indented JSON.
func (c *Checker) Dump() string {
	out, _ := json.MarshalIndent(c.families, "", "  ")
	return string(out)
}

// FindByLabels returns the metric carrying all of the given label values.
func (f *FamilyChecker) FindByLabels(labels map[string]string) *dto.Metric {
	var match []*dto.Metric
	for _, m := range f.family.GetMetric() {
		if labelsMatch(m, labels) {
			match = append(match, m)
		}
	}
	require.Len(f.t, match, 1, "expected exactly one %s metric with labels %v", f.family.GetName(), labels)
	return match[0]
}

func labelsMatch(m *dto.Metric, want map[string]string) bool {
	have := make(map[string]string, len(m.GetLabel()))
	for _, l := range m.GetLabel() {
		have[l.GetName()] = l.GetValue()
	}
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}
