package metrics

type NoopMetrics struct{}

func (n NoopMetrics) RecordInfo(version string) {}

func (n NoopMetrics) RecordRunStart() {}

func (n NoopMetrics) RecordRunOutcome(err error) {}

func (n NoopMetrics) RecordStep(name string) (onDone func(err error)) {
	return func(err error) {}
}

func (n NoopMetrics) RecordStepSkipped(name string) {}

var _ Metricer = NoopMetrics{}
