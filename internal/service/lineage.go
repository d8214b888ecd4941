package service

import (
	"errors"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/veritaslab/veritas/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrLineageSourceMissing = errors.New("source_id is required for lineage")
	ErrLineageUpstreamEmpty = errors.New("upstream id must not be empty")
)

const (
	// DefaultConvergenceThreshold is the Jaccard similarity above which two
	// sources are reported as covertly convergent.
	DefaultConvergenceThreshold = 0.8

	independenceCacheTTL     = 5 * time.Minute
	independenceCacheCleanup = 10 * time.Minute
)

// LineageService fronts the dependency graph. Independence scores are
// memoized per sorted source set; any lineage write flushes the memo since
// a new edge can change every pair.
type LineageService struct {
	graph  domain.LineageGraph
	memo   *gocache.Cache
	logger *zap.Logger
}

func NewLineageService(graph domain.LineageGraph, logger *zap.Logger) *LineageService {
	return &LineageService{
		graph:  graph,
		memo:   gocache.New(independenceCacheTTL, independenceCacheCleanup),
		logger: logger,
	}
}

// RecordLineage registers the upstream providers a source declares. It is
// idempotent; re-registering a known edge changes nothing.
func (s *LineageService) RecordLineage(sourceID string, upstreams []string) {
	if sourceID == "" {
		return
	}
	s.graph.RecordLineage(sourceID, upstreams)
	s.memo.Flush()

	s.logger.Debug("lineage recorded",
		zap.String("source_id", sourceID),
		zap.Strings("upstreams", upstreams))
}

// Record is the validating boundary form of RecordLineage.
func (s *LineageService) Record(sourceID string, upstreams []string) error {
	if sourceID == "" {
		return ErrLineageSourceMissing
	}
	for _, up := range upstreams {
		if up == "" {
			return ErrLineageUpstreamEmpty
		}
	}
	s.RecordLineage(sourceID, upstreams)
	return nil
}

// IndependenceScore is symmetric under reordering of the set, so the memo
// key is the sorted, deduplicated source list.
func (s *LineageService) IndependenceScore(sourceIDs []string) float64 {
	ids := dedupeSorted(sourceIDs)
	key := strings.Join(ids, "\x1f")
	if cached, ok := s.memo.Get(key); ok {
		return cached.(float64)
	}

	score := s.graph.IndependenceScore(ids)
	s.memo.SetDefault(key, score)
	return score
}

// UpstreamClosure lists every provider the source transitively depends on.
func (s *LineageService) UpstreamClosure(sourceID string) []string {
	return s.graph.UpstreamClosure(sourceID)
}

// Convergences reports source pairs whose declared lineage covertly
// overlaps beyond the threshold.
func (s *LineageService) Convergences(threshold float64) []domain.Convergence {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultConvergenceThreshold
	}
	return s.graph.Convergences(threshold)
}

func dedupeSorted(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	n := 0
	for i, id := range out {
		if i == 0 || id != out[i-1] {
			out[n] = id
			n++
		}
	}
	return out[:n]
}
