package service

import (
	"errors"
	"time"

	"github.com/veritaslab/veritas/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrSourceIDMissing    = errors.New("source_id is required")
	ErrClaimMissing       = errors.New("claim subject, metric and time_bucket are required")
	ErrInvalidValueKind   = errors.New("invalid value kind")
	ErrValueKindMismatch  = errors.New("value does not match the claim's declared kind")
	ErrTimestampMissing   = errors.New("timestamp is required")
	ErrInvariantViolation = errors.New("score outside [0,1] after merge")
)

// LineageScorer is the slice of the lineage layer ingestion needs.
type LineageScorer interface {
	RecordLineage(sourceID string, upstreams []string)
	IndependenceScore(sourceIDs []string) float64
}

// SnapshotInvalidator is notified whenever a merge changes a vector, so
// cached consensus views can be dropped.
type SnapshotInvalidator interface {
	Invalidate()
}

// IngestService runs the merge pipeline: validate, dedupe, append, rescore,
// retransition, reconfidence. Serialization per claim is provided by the
// vector store; the pipeline itself holds no locks.
type IngestService struct {
	vectors    domain.VectorStore
	lineage    LineageScorer
	detector   *ContradictionDetector
	thresholds domain.Thresholds
	logger     *zap.Logger

	invalidator SnapshotInvalidator
}

func NewIngestService(vectors domain.VectorStore, lineage LineageScorer, detector *ContradictionDetector, th domain.Thresholds, logger *zap.Logger) *IngestService {
	return &IngestService{
		vectors:    vectors,
		lineage:    lineage,
		detector:   detector,
		thresholds: th,
		logger:     logger,
	}
}

func (s *IngestService) SetSnapshotInvalidator(inv SnapshotInvalidator) {
	s.invalidator = inv
}

// Ingest records one observation and returns the updated vector summary.
// An exact re-delivery of a source's current value is an idempotent no-op,
// not an error.
func (s *IngestService) Ingest(obs domain.Observation) (domain.VectorSummary, error) {
	if obs.SourceID == "" {
		return domain.VectorSummary{}, ErrSourceIDMissing
	}
	if obs.Claim.IsZero() {
		return domain.VectorSummary{}, ErrClaimMissing
	}
	if !domain.ValidValueKind(string(obs.Value.Kind)) {
		return domain.VectorSummary{}, ErrInvalidValueKind
	}
	if obs.Timestamp.IsZero() {
		return domain.VectorSummary{}, ErrTimestampMissing
	}

	// Declared lineage is registered before scoring so the merge sees it.
	if len(obs.Lineage) > 0 {
		s.lineage.RecordLineage(obs.SourceID, obs.Lineage)
	}

	obs.RecordedAt = time.Now().UTC()

	summary, created, err := s.vectors.Merge(obs.Claim, obs.Value.Kind, func(v *domain.TruthVector) (domain.VectorSummary, error) {
		return s.merge(v, obs)
	})
	if err != nil {
		return domain.VectorSummary{}, err
	}

	if created {
		s.logger.Info("truth vector created",
			zap.String("claim", obs.Claim.String()),
			zap.String("vector_id", summary.VectorID.String()),
			zap.String("source_id", obs.SourceID))
	}
	if !summary.Duplicate && s.invalidator != nil {
		s.invalidator.Invalidate()
	}

	return summary, nil
}

func (s *IngestService) merge(v *domain.TruthVector, obs domain.Observation) (domain.VectorSummary, error) {
	if obs.Value.Kind != v.ValueKind {
		return domain.VectorSummary{}, ErrValueKindMismatch
	}

	// Duplicate delivery must not inflate source counts or confidence.
	if v.HasSource(obs.SourceID) && s.latestValue(v, obs.SourceID).Matches(obs.Value) {
		return v.Summary(s.thresholds, true), nil
	}

	// Score the candidate view first; a rejected merge must leave the
	// vector exactly as it was.
	sources := v.Sources
	if !v.HasSource(obs.SourceID) {
		sources = append(append([]string(nil), v.Sources...), obs.SourceID)
	}
	latest := make(map[string]domain.Value, len(sources))
	for _, o := range v.Observations {
		latest[o.SourceID] = o.Value
	}
	latest[obs.SourceID] = obs.Value
	values := make([]domain.Value, 0, len(sources))
	for _, src := range sources {
		values = append(values, latest[src])
	}

	contradiction := s.detector.Score(values)
	independence := s.lineage.IndependenceScore(sources)
	state := domain.ComputeState(s.thresholds, len(sources), contradiction, independence)
	confidence := domain.ComputeConfidence(s.thresholds, state, len(sources), independence)

	if !domain.InUnitRange(contradiction) || !domain.InUnitRange(independence) || !domain.InUnitRange(confidence) {
		s.logger.Error("merge produced score outside [0,1]",
			zap.String("claim_hash", v.ClaimHash),
			zap.Float64("contradiction", contradiction),
			zap.Float64("independence", independence),
			zap.Float64("confidence", confidence))
		return domain.VectorSummary{}, ErrInvariantViolation
	}

	prevState := v.State
	v.Sources = sources
	v.Observations = append(v.Observations, obs)
	v.ContradictionScore = contradiction
	v.IndependenceScore = independence
	v.State = state
	v.Confidence = confidence
	v.UpdatedAt = obs.RecordedAt

	if state != prevState {
		s.logger.Debug("epistemic state changed",
			zap.String("claim_hash", v.ClaimHash),
			zap.String("from", string(prevState)),
			zap.String("to", string(state)),
			zap.Int("sources", len(v.Sources)),
			zap.Float64("contradiction", contradiction),
			zap.Float64("independence", independence))
	}

	return v.Summary(s.thresholds, false), nil
}

func (s *IngestService) latestValue(v *domain.TruthVector, sourceID string) domain.Value {
	for i := len(v.Observations) - 1; i >= 0; i-- {
		if v.Observations[i].SourceID == sourceID {
			return v.Observations[i].Value
		}
	}
	return domain.Value{}
}
