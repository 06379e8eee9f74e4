package metrics

// NopMetrics discards every measurement. Used in tests and when metrics are disabled.
type NopMetrics struct{}

var _ Recorder = (*NopMetrics)(nil)

func NewNop() *NopMetrics {
	return &NopMetrics{}
}

func (n *NopMetrics) RecordDecision(_ string) {}

func (n *NopMetrics) RecordSuggestions(_ string, _ int) {}

func (n *NopMetrics) RecordDayLock(_ string, _ bool) {}

func (n *NopMetrics) RecordCrewShifts(_ int) {}

func (n *NopMetrics) ObserveOperation(_ string, _ float64) {}
