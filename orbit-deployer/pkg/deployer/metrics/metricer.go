package metrics

type Metricer interface {
	RecordInfo(version string)
	RecordRunStart()
	RecordRunOutcome(err error)

	RecordStep(name string) (onDone func(err error))
	RecordStepSkipped(name string)
}
