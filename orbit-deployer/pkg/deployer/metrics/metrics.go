package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	opmetrics "github.com/orbit-stack/orbit-stack/orbit-service/metrics"
)

const Namespace = "orbit_deployer"

type Metrics struct {
	ns       string
	registry *prometheus.Registry
	factory  opmetrics.Factory

	info prometheus.GaugeVec

	runStarted prometheus.Gauge
	runSuccess prometheus.Gauge

	stepsTotal   *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
}

var _ Metricer = (*Metrics)(nil)

func NewMetrics(procName string) *Metrics {
	return newMetrics(procName, opmetrics.NewRegistry())
}

func newMetrics(procName string, registry *prometheus.Registry) *Metrics {
	if procName == "" {
		procName = "default"
	}
	ns := Namespace + "_" + procName

	factory := opmetrics.With(registry)
	return &Metrics{
		ns:       ns,
		registry: registry,
		factory:  factory,

		info: *factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "info",
			Help:      "Pseudo-metric tracking version info",
		}, []string{
			"version",
		}),
		runStarted: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "run_start_timestamp_seconds",
			Help:      "Unix time the last deployment run started",
		}),
		runSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "run_success",
			Help:      "1 if the last deployment run completed every step, 0 if it halted",
		}),
		stepsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "steps_total",
			Help:      "Count of deployment steps by outcome",
		}, []string{"step", "outcome"}),
		stepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "step_duration_seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 3600},
			Help:      "Duration of executed deployment steps",
		}, []string{"step"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Document() []opmetrics.DocumentedMetric {
	return m.factory.Document()
}

// RecordInfo sets a pseudo-metric that contains versioning info.
func (m *Metrics) RecordInfo(version string) {
	m.info.WithLabelValues(version).Set(1)
}

func (m *Metrics) RecordRunStart() {
	m.runStarted.Set(float64(time.Now().Unix()))
}

func (m *Metrics) RecordRunOutcome(err error) {
	if err != nil {
		m.runSuccess.Set(0)
		return
	}
	m.runSuccess.Set(1)
}

func (m *Metrics) RecordStep(name string) (onDone func(err error)) {
	timer := prometheus.NewTimer(m.stepDuration.WithLabelValues(name))
	return func(err error) {
		timer.ObserveDuration()
		outcome := "succeeded"
		if err != nil {
			outcome = "failed"
		}
		m.stepsTotal.WithLabelValues(name, outcome).Inc()
	}
}

func (m *Metrics) RecordStepSkipped(name string) {
	m.stepsTotal.WithLabelValues(name, "skipped").Inc()
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	return opmetrics.WriteTextfile(path, m.registry)
}
