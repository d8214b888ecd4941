package service

import (
	"errors"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/veritaslab/veritas/internal/domain"
	"github.com/veritaslab/veritas/internal/store"
	"go.uber.org/zap"
)

var ErrVectorNotFound = errors.New("truth vector not found")

const (
	// DefaultConsensusCacheTTL bounds how stale a cached consensus view may
	// be between ingestion writes.
	DefaultConsensusCacheTTL = 500 * time.Millisecond

	consensusCacheKey     = "consensus"
	consensusCacheCleanup = time.Minute
)

// ConsensusService is the read side of the engine: point-in-time snapshots
// of trusted vectors and single-vector lookups. Snapshots are cached for a
// short TTL and dropped whenever ingestion changes any vector.
type ConsensusService struct {
	vectors    domain.VectorStore
	thresholds domain.Thresholds
	cache      *gocache.Cache
	logger     *zap.Logger
}

func NewConsensusService(vectors domain.VectorStore, th domain.Thresholds, cacheTTL time.Duration, logger *zap.Logger) *ConsensusService {
	if cacheTTL <= 0 {
		cacheTTL = DefaultConsensusCacheTTL
	}
	return &ConsensusService{
		vectors:    vectors,
		thresholds: th,
		cache:      gocache.New(cacheTTL, consensusCacheCleanup),
		logger:     logger,
	}
}

// Invalidate drops the cached consensus view. Called by ingestion after
// every effective merge.
func (s *ConsensusService) Invalidate() {
	s.cache.Delete(consensusCacheKey)
}

// ConsensusVectors returns snapshots of every vector currently in the
// trusted terminal state, ordered by descending confidence, then most
// recently updated. limit <= 0 means no limit.
func (s *ConsensusService) ConsensusVectors(limit int) []*domain.TruthVector {
	var snapshots []*domain.TruthVector
	if cached, ok := s.cache.Get(consensusCacheKey); ok {
		snapshots = cached.([]*domain.TruthVector)
	} else {
		snapshots = s.vectors.SnapshotWhere(func(v *domain.TruthVector) bool {
			return v.State == domain.StateArchetypal
		})
		sort.SliceStable(snapshots, func(i, j int) bool {
			if snapshots[i].Confidence != snapshots[j].Confidence {
				return snapshots[i].Confidence > snapshots[j].Confidence
			}
			return snapshots[i].UpdatedAt.After(snapshots[j].UpdatedAt)
		})
		s.cache.SetDefault(consensusCacheKey, snapshots)

		s.logger.Debug("consensus snapshot rebuilt", zap.Int("vectors", len(snapshots)))
	}

	if limit > 0 && limit < len(snapshots) {
		snapshots = snapshots[:limit]
	}

	// Callers get their own copies; handing out the cached pointers would
	// let one reader's mutation poison the view for everyone behind it.
	out := make([]*domain.TruthVector, len(snapshots))
	for i, v := range snapshots {
		out[i] = v.Clone()
	}
	return out
}

// GetVector returns a consistent snapshot of the vector for a claim hash.
func (s *ConsensusService) GetVector(claimHash string) (*domain.TruthVector, error) {
	v, err := s.vectors.GetByClaimHash(claimHash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrVectorNotFound
		}
		return nil, err
	}
	return v, nil
}

// GetVectorByClaim resolves the claim key first, then looks up its vector.
func (s *ConsensusService) GetVectorByClaim(claim domain.ClaimKey) (*domain.TruthVector, error) {
	return s.GetVector(claim.Hash())
}
