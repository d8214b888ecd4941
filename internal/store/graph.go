package store

import (
	"sort"
	"sync"

	"github.com/veritaslab/veritas/internal/domain"
)

// LineageStore is the dependency graph of sources and their upstream
// providers, an adjacency map behind the domain.LineageGraph interface.
// Writes are rare and idempotent relative to ingestion volume, so a single
// RWMutex over the whole map is enough.
type LineageStore struct {
	mu       sync.RWMutex
	upstream map[string]map[string]struct{}
}

func NewLineageStore() *LineageStore {
	return &LineageStore{upstream: make(map[string]map[string]struct{})}
}

// RecordLineage merges the upstream set for a source. Unknown upstreams get
// a node of their own so closures can traverse through them.
func (s *LineageStore) RecordLineage(sourceID string, upstreams []string) {
	if sourceID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.upstream[sourceID] == nil {
		s.upstream[sourceID] = make(map[string]struct{})
	}
	for _, up := range upstreams {
		if up == "" || up == sourceID {
			continue
		}
		if s.upstream[up] == nil {
			s.upstream[up] = make(map[string]struct{})
		}
		s.upstream[sourceID][up] = struct{}{}
	}
}

// closure walks the upstream edges depth-first. The visited set makes cycles
// terminate; a cycle cannot reduce independence beyond full overlap.
func (s *LineageStore) closure(sourceID string) map[string]struct{} {
	visited := make(map[string]struct{})
	stack := []string{sourceID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}
		for dep := range s.upstream[current] {
			if _, seen := visited[dep]; !seen {
				stack = append(stack, dep)
			}
		}
	}
	delete(visited, sourceID)
	return visited
}

// UpstreamClosure returns every provider the source transitively depends on,
// sorted for stable output.
func (s *LineageStore) UpstreamClosure(sourceID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	closure := s.closure(sourceID)
	out := make([]string, 0, len(closure))
	for dep := range closure {
		out = append(out, dep)
	}
	sort.Strings(out)
	return out
}

// IndependenceScore computes 1 - shared_pairs/total_pairs over all unordered
// pairs of distinct sources. A pair is shared when the upstream closures
// intersect, one source feeds the other, or the ids collide. Fewer than two
// sources can never corroborate, so the score is 0.
func (s *LineageStore) IndependenceScore(sourceIDs []string) float64 {
	if len(sourceIDs) < 2 {
		return 0.0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	closures := make([]map[string]struct{}, len(sourceIDs))
	for i, id := range sourceIDs {
		closures[i] = s.closure(id)
	}

	totalPairs := 0
	sharedPairs := 0
	for i := range sourceIDs {
		for j := i + 1; j < len(sourceIDs); j++ {
			totalPairs++
			if pairShared(sourceIDs[i], sourceIDs[j], closures[i], closures[j]) {
				sharedPairs++
			}
		}
	}

	return 1.0 - float64(sharedPairs)/float64(totalPairs)
}

func pairShared(a, b string, closureA, closureB map[string]struct{}) bool {
	if a == b {
		return true
	}
	if _, ok := closureA[b]; ok {
		return true
	}
	if _, ok := closureB[a]; ok {
		return true
	}
	small, large := closureA, closureB
	if len(large) < len(small) {
		small, large = large, small
	}
	for dep := range small {
		if _, ok := large[dep]; ok {
			return true
		}
	}
	return false
}

// Convergences scans every pair of registered sources for covertly shared
// lineage: Jaccard similarity of the upstream closures above the threshold.
func (s *LineageStore) Convergences(threshold float64) []domain.Convergence {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sources := make([]string, 0, len(s.upstream))
	for src := range s.upstream {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	var out []domain.Convergence
	for i := range sources {
		closureA := s.closure(sources[i])
		if len(closureA) == 0 {
			continue
		}
		for j := i + 1; j < len(sources); j++ {
			closureB := s.closure(sources[j])
			if len(closureB) == 0 {
				continue
			}

			overlap := 0
			for dep := range closureA {
				if _, ok := closureB[dep]; ok {
					overlap++
				}
			}
			union := len(closureA) + len(closureB) - overlap
			if union == 0 {
				continue
			}
			jaccard := float64(overlap) / float64(union)
			if jaccard > threshold {
				out = append(out, domain.Convergence{SourceA: sources[i], SourceB: sources[j], Jaccard: jaccard})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Jaccard > out[j].Jaccard })
	return out
}
