package service

import (
	"errors"
	"testing"

	"github.com/veritaslab/veritas/internal/store"
	"go.uber.org/zap"
)

func newTestLineage() *LineageService {
	return NewLineageService(store.NewLineageStore(), zap.NewNop())
}

func TestLineageService_Record_Validation(t *testing.T) {
	svc := newTestLineage()

	if err := svc.Record("", []string{"u1"}); !errors.Is(err, ErrLineageSourceMissing) {
		t.Errorf("expected ErrLineageSourceMissing, got %v", err)
	}
	if err := svc.Record("a", []string{"u1", ""}); !errors.Is(err, ErrLineageUpstreamEmpty) {
		t.Errorf("expected ErrLineageUpstreamEmpty, got %v", err)
	}
	if err := svc.Record("a", []string{"u1"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := svc.Record("b", nil); err != nil {
		t.Errorf("empty upstream list is legal: %v", err)
	}
}

func TestLineageService_IndependenceScore_Memoized(t *testing.T) {
	graph := store.NewLineageStore()
	svc := NewLineageService(graph, zap.NewNop())

	sources := []string{"a", "b"}
	if got := svc.IndependenceScore(sources); got != 1.0 {
		t.Fatalf("unlinked sources = %v, want 1.0", got)
	}

	// Writing around the service would leave the memo stale; writes must go
	// through RecordLineage, which flushes it.
	svc.RecordLineage("a", []string{"shared"})
	svc.RecordLineage("b", []string{"shared"})

	if got := svc.IndependenceScore(sources); got != 0.0 {
		t.Errorf("after shared lineage = %v, want 0.0 (memo must be flushed on write)", got)
	}
}

func TestLineageService_IndependenceScore_OrderInsensitiveMemoKey(t *testing.T) {
	svc := newTestLineage()
	svc.RecordLineage("a", []string{"u"})
	svc.RecordLineage("b", []string{"u"})
	svc.RecordLineage("c", []string{"w"})

	forward := svc.IndependenceScore([]string{"a", "b", "c"})
	reversed := svc.IndependenceScore([]string{"c", "b", "a"})
	if forward != reversed {
		t.Errorf("memoized score differs by order: %v vs %v", forward, reversed)
	}
}

func TestLineageService_IndependenceScore_DuplicateIDsCollapse(t *testing.T) {
	svc := newTestLineage()

	// {a, a} is the single-element set: never corroborating.
	if got := svc.IndependenceScore([]string{"a", "a"}); got != 0.0 {
		t.Errorf("duplicate ids = %v, want 0.0", got)
	}
}

func TestLineageService_Convergences_DefaultThreshold(t *testing.T) {
	svc := newTestLineage()
	svc.RecordLineage("a", []string{"p", "q"})
	svc.RecordLineage("b", []string{"p", "q"})
	svc.RecordLineage("c", []string{"p", "r", "s", "t"})

	// Bad thresholds fall back to the default 0.8: only the fully
	// overlapping pair qualifies.
	convergences := svc.Convergences(-1)
	if len(convergences) != 1 {
		t.Fatalf("expected 1 convergence, got %d", len(convergences))
	}
	if convergences[0].SourceA != "a" || convergences[0].SourceB != "b" {
		t.Errorf("pair = (%s, %s), want (a, b)", convergences[0].SourceA, convergences[0].SourceB)
	}
}
