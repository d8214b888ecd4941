package domain

// MergeFunc mutates a vector while the store holds its per-claim lock.
// It returns the summary produced by the merge.
type MergeFunc func(v *TruthVector) (VectorSummary, error)

// VectorStore holds one TruthVector per claim identity. Mutation for one
// claim is serialized; different claims never contend.
type VectorStore interface {
	// Merge resolves or creates the vector for the claim and applies fn
	// under the vector's lock. created reports whether this call made the
	// vector.
	Merge(claim ClaimKey, kind ValueKind, fn MergeFunc) (summary VectorSummary, created bool, err error)
	// GetByClaimHash returns a point-in-time snapshot, or store.ErrNotFound.
	GetByClaimHash(hash string) (*TruthVector, error)
	// SnapshotWhere returns snapshots of all vectors matching the predicate.
	SnapshotWhere(match func(*TruthVector) bool) []*TruthVector
	// Len returns the number of vectors held.
	Len() int
}

// Convergence is a covert overlap between two sources' upstream closures.
type Convergence struct {
	SourceA string  `json:"source_a"`
	SourceB string  `json:"source_b"`
	Jaccard float64 `json:"jaccard"`
}

// LineageGraph tracks which source derives from which upstream provider.
type LineageGraph interface {
	// RecordLineage registers the upstream set of a source, idempotent union.
	RecordLineage(sourceID string, upstreams []string)
	// IndependenceScore computes the pairwise independence of a source set.
	IndependenceScore(sourceIDs []string) float64
	// UpstreamClosure returns every provider the source transitively
	// depends on.
	UpstreamClosure(sourceID string) []string
	// Convergences lists source pairs whose upstream closures overlap with
	// Jaccard similarity above the threshold, most similar first.
	Convergences(threshold float64) []Convergence
}
