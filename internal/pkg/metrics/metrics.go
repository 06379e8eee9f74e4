// Package metrics records roster engine activity.
package metrics

// Recorder is the set of engine measurements. Implementations must be safe
// for concurrent use.
type Recorder interface {
	// RecordDecision counts an assignment write outcome: "accepted" or a conflict reason.
	RecordDecision(outcome string)
	// RecordSuggestions counts suggestions produced for an environment.
	RecordSuggestions(environment string, count int)
	// RecordDayLock counts lock calls; created is false for idempotent re-locks.
	RecordDayLock(environment string, created bool)
	// RecordCrewShifts counts crew shifts written by schedule generation.
	RecordCrewShifts(count int)
	// ObserveOperation records the latency of a service operation in seconds.
	ObserveOperation(op string, seconds float64)
}

// Outcome labels for RecordDecision.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)
