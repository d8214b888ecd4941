package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/veritaslab/veritas/internal/domain"
)

// entry pairs a vector with the mutex serializing its merges. The map lock
// is only held to resolve entries; merge work happens under the entry lock,
// so unrelated claims never contend. No code path takes two entry locks.
type entry struct {
	mu     sync.Mutex
	vector *domain.TruthVector
}

// VectorStore is the in-memory home of truth vectors. Vectors are created on
// first observation and live for the lifetime of the process; archival is a
// collaborator concern.
type VectorStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func NewVectorStore() *VectorStore {
	return &VectorStore{entries: make(map[string]*entry)}
}

func (s *VectorStore) resolve(claim domain.ClaimKey, kind domain.ValueKind) (*entry, bool) {
	hash := claim.Hash()

	s.mu.RLock()
	e, ok := s.entries[hash]
	s.mu.RUnlock()
	if ok {
		return e, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if e, ok = s.entries[hash]; ok {
		return e, false
	}

	now := time.Now().UTC()
	e = &entry{vector: &domain.TruthVector{
		ID:         uuid.New(),
		ClaimHash:  hash,
		Claim:      claim,
		ValueKind:  kind,
		Confidence: domain.BaselineConfidence,
		State:      domain.StateRawObservation,
		CreatedAt:  now,
		UpdatedAt:  now,
	}}
	s.entries[hash] = e
	return e, true
}

// Merge resolves or creates the vector for the claim and applies fn under
// the vector's lock.
func (s *VectorStore) Merge(claim domain.ClaimKey, kind domain.ValueKind, fn domain.MergeFunc) (domain.VectorSummary, bool, error) {
	e, created := s.resolve(claim, kind)

	e.mu.Lock()
	defer e.mu.Unlock()

	summary, err := fn(e.vector)
	return summary, created, err
}

// GetByClaimHash returns a consistent snapshot of the vector.
func (s *VectorStore) GetByClaimHash(hash string) (*domain.TruthVector, error) {
	s.mu.RLock()
	e, ok := s.entries[hash]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vector.Clone(), nil
}

// SnapshotWhere copies every matching vector, holding one entry lock at a
// time so readers never stall ingestion for longer than a single copy.
func (s *VectorStore) SnapshotWhere(match func(*domain.TruthVector) bool) []*domain.TruthVector {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	var out []*domain.TruthVector
	for _, e := range entries {
		e.mu.Lock()
		if match(e.vector) {
			out = append(out, e.vector.Clone())
		}
		e.mu.Unlock()
	}
	return out
}

func (s *VectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
