package domain

import (
	"time"

	"github.com/google/uuid"
)

// TruthVector is the aggregate record for one claim identity.
// Sources is kept in first-report order; Observations in insertion order
// for audit and lineage reconstruction.
type TruthVector struct {
	ID                 uuid.UUID      `json:"id"`
	ClaimHash          string         `json:"claim_hash"`
	Claim              ClaimKey       `json:"claim"`
	ValueKind          ValueKind      `json:"value_kind"`
	Sources            []string       `json:"sources"`
	Observations       []Observation  `json:"observations"`
	Confidence         float64        `json:"confidence"`
	ContradictionScore float64        `json:"contradiction_score"`
	IndependenceScore  float64        `json:"independence_score"`
	State              EpistemicState `json:"epistemic_state"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// HasSource reports whether the source has contributed to this vector.
func (v *TruthVector) HasSource(sourceID string) bool {
	for _, s := range v.Sources {
		if s == sourceID {
			return true
		}
	}
	return false
}

// LatestValues returns each source's most recent reported value, in source
// order. A source that re-reports replaces its contribution; it never counts
// twice.
func (v *TruthVector) LatestValues() []Value {
	latest := make(map[string]Value, len(v.Sources))
	for _, obs := range v.Observations {
		latest[obs.SourceID] = obs.Value
	}
	values := make([]Value, 0, len(v.Sources))
	for _, s := range v.Sources {
		if val, ok := latest[s]; ok {
			values = append(values, val)
		}
	}
	return values
}

// RequiresInvestigation flags vectors that need human attention: strongly
// contradicted despite non-trivial confidence, or in the ambiguous band.
func (v *TruthVector) RequiresInvestigation(th Thresholds) bool {
	if v.State == StateAnomalous {
		return true
	}
	return v.ContradictionScore > th.DisputeMinContradiction && v.Confidence > 0.5
}

// VectorSummary is the ingest result returned to collaborators.
type VectorSummary struct {
	VectorID              uuid.UUID      `json:"vector_id"`
	ClaimHash             string         `json:"claim_hash"`
	State                 EpistemicState `json:"epistemic_state"`
	Confidence            float64        `json:"confidence"`
	SourceCount           int            `json:"source_count"`
	ContradictionScore    float64        `json:"contradiction_score"`
	IndependenceScore     float64        `json:"independence_score"`
	Duplicate             bool           `json:"duplicate,omitempty"`
	RequiresInvestigation bool           `json:"requires_investigation"`
}

// Summary builds the boundary view of the vector.
func (v *TruthVector) Summary(th Thresholds, duplicate bool) VectorSummary {
	return VectorSummary{
		VectorID:              v.ID,
		ClaimHash:             v.ClaimHash,
		State:                 v.State,
		Confidence:            v.Confidence,
		SourceCount:           len(v.Sources),
		ContradictionScore:    v.ContradictionScore,
		IndependenceScore:     v.IndependenceScore,
		Duplicate:             duplicate,
		RequiresInvestigation: v.RequiresInvestigation(th),
	}
}

// Clone returns a deep copy safe to hand to readers while the original keeps
// mutating under its own lock.
func (v *TruthVector) Clone() *TruthVector {
	cp := *v
	cp.Sources = append([]string(nil), v.Sources...)
	cp.Observations = make([]Observation, len(v.Observations))
	for i, obs := range v.Observations {
		cp.Observations[i] = obs
		cp.Observations[i].Lineage = append([]string(nil), obs.Lineage...)
	}
	return &cp
}
