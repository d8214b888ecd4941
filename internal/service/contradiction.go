package service

import (
	"math"

	"github.com/veritaslab/veritas/internal/domain"
)

const (
	// DefaultNumericDivergenceLimit is the relative spread at which numeric
	// disagreement saturates to 1.0.
	DefaultNumericDivergenceLimit = 0.5
	// spreadEpsilon guards the relative-spread division when the mean is
	// near zero.
	spreadEpsilon = 1e-9
)

// ContradictionDetector scores disagreement among the values reported for
// one claim. The mapping curve is policy: monotonic in spread, 0.0 on full
// agreement, saturating at the configured divergence limit.
type ContradictionDetector struct {
	// NumericDivergenceLimit is the relative spread treated as maximal
	// contradiction for numeric claims.
	NumericDivergenceLimit float64
}

func NewContradictionDetector(divergenceLimit float64) *ContradictionDetector {
	if divergenceLimit <= 0 {
		divergenceLimit = DefaultNumericDivergenceLimit
	}
	return &ContradictionDetector{NumericDivergenceLimit: divergenceLimit}
}

// Score returns disagreement in [0,1] over the latest value per source.
// A single value has nothing to contradict.
func (d *ContradictionDetector) Score(values []domain.Value) float64 {
	if len(values) < 2 {
		return 0.0
	}
	if values[0].Kind == domain.ValueKindNumeric {
		return d.scoreNumeric(values)
	}
	return scoreCategorical(values)
}

func (d *ContradictionDetector) scoreNumeric(values []domain.Value) float64 {
	min := values[0].Number
	max := values[0].Number
	sum := 0.0
	for _, v := range values {
		if v.Number < min {
			min = v.Number
		}
		if v.Number > max {
			max = v.Number
		}
		sum += v.Number
	}
	if min == max {
		return 0.0
	}

	mean := sum / float64(len(values))
	denom := math.Abs(mean)
	if denom < spreadEpsilon {
		denom = spreadEpsilon
	}
	spread := (max - min) / denom

	return domain.ClampUnit(spread / d.NumericDivergenceLimit)
}

// scoreCategorical is the fraction of values disagreeing with the majority.
func scoreCategorical(values []domain.Value) float64 {
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v.Category]++
	}
	majority := 0
	for _, n := range counts {
		if n > majority {
			majority = n
		}
	}
	return float64(len(values)-majority) / float64(len(values))
}
