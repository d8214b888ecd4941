package domain

// EpistemicState classifies how far a truth vector is from being trusted.
type EpistemicState string

const (
	StateRawObservation EpistemicState = "raw_observation"
	StateCorroborated   EpistemicState = "corroborated"
	StateDisputed       EpistemicState = "disputed"
	StateAnomalous      EpistemicState = "anomalous"
	StateArchetypal     EpistemicState = "archetypal"
)

func ValidEpistemicState(s string) bool {
	switch EpistemicState(s) {
	case StateRawObservation, StateCorroborated, StateDisputed, StateAnomalous, StateArchetypal:
		return true
	}
	return false
}

func AllEpistemicStates() []EpistemicState {
	return []EpistemicState{StateRawObservation, StateCorroborated, StateDisputed, StateAnomalous, StateArchetypal}
}

// Thresholds is the tunable classification policy. The boundaries are
// configuration, not law; see config.Thresholds for env overrides.
type Thresholds struct {
	// CorroborationMaxContradiction is the contradiction score below which
	// agreeing sources corroborate each other.
	CorroborationMaxContradiction float64
	// DisputeMinContradiction is the contradiction score at or above which a
	// vector is disputed. Scores between the two bounds are anomalous.
	DisputeMinContradiction float64
	// ArchetypalMinIndependence is the independence score a three-source
	// agreement must exceed to be trusted.
	ArchetypalMinIndependence float64
	// ArchetypalMinSources is the source count required for trust.
	ArchetypalMinSources int
	// LowIndependence is the score at or below which the shared-upstream
	// confidence penalty applies.
	LowIndependence float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		CorroborationMaxContradiction: 0.3,
		DisputeMinContradiction:       0.7,
		ArchetypalMinIndependence:     0.5,
		ArchetypalMinSources:          3,
		LowIndependence:               0.2,
	}
}

// ComputeState recomputes the epistemic state from current aggregate scores.
// States are never sticky: a trusted vector that receives contradicting
// evidence is reclassified on the next merge.
func ComputeState(th Thresholds, sourceCount int, contradiction, independence float64) EpistemicState {
	if sourceCount <= 1 {
		return StateRawObservation
	}
	switch {
	case contradiction < th.CorroborationMaxContradiction:
		if sourceCount >= th.ArchetypalMinSources && independence > th.ArchetypalMinIndependence {
			return StateArchetypal
		}
		return StateCorroborated
	case contradiction >= th.DisputeMinContradiction:
		return StateDisputed
	default:
		return StateAnomalous
	}
}

// Confidence deltas applied on top of the 0.5 baseline.
const (
	BaselineConfidence    = 0.5
	CorroborationBoost    = 0.2
	SharedUpstreamPenalty = 0.2
	ArchetypalBoost       = 0.2
	DisputePenalty        = 0.2
	AnomalyPenalty        = 0.1
)

// The deltas in integer tenths. Summing them as float64 drifts (0.5 + 0.2
// - 0.2 is not 0.5 in binary), and the confidence escapes through summaries
// where callers compare it exactly.
const (
	baselineTenths       = 5
	corroborationTenths  = 2
	sharedUpstreamTenths = 2
	archetypalTenths     = 2
	disputeTenths        = 2
	anomalyTenths        = 1
)

// ComputeConfidence derives confidence from the current state and scores.
// Like the state it is a pure function of present evidence, recomputed on
// every merge rather than accumulated. The deltas are summed in tenths and
// divided once so cancelling adjustments land exactly on the baseline.
func ComputeConfidence(th Thresholds, state EpistemicState, sourceCount int, independence float64) float64 {
	tenths := baselineTenths
	switch state {
	case StateCorroborated:
		tenths += corroborationTenths
	case StateArchetypal:
		tenths += corroborationTenths + archetypalTenths
	case StateDisputed:
		tenths -= disputeTenths
	case StateAnomalous:
		tenths -= anomalyTenths
	}
	if sourceCount >= 2 && independence <= th.LowIndependence {
		tenths -= sharedUpstreamTenths
	}
	return ClampUnit(float64(tenths) / 10)
}

// ClampUnit clamps v into [0,1].
func ClampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// InUnitRange reports whether v is a legal score.
func InUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}

func StateReason(th Thresholds, state EpistemicState) string {
	switch state {
	case StateRawObservation:
		return "single source, nothing to corroborate"
	case StateCorroborated:
		return "multiple sources agree"
	case StateDisputed:
		return "sources strongly disagree"
	case StateAnomalous:
		return "disagreement in the ambiguous band, needs review"
	case StateArchetypal:
		return "independent sources agree"
	default:
		return "unknown state"
	}
}
