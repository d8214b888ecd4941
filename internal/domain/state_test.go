package domain

import "testing"

func TestComputeState(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name          string
		sources       int
		contradiction float64
		independence  float64
		want          EpistemicState
	}{
		{"single source", 1, 0.0, 0.0, StateRawObservation},
		{"single source ignores scores", 1, 0.9, 0.9, StateRawObservation},
		{"two agreeing sources", 2, 0.0, 0.0, StateCorroborated},
		{"two agreeing independent sources stay corroborated", 2, 0.1, 0.9, StateCorroborated},
		{"agreement boundary - 0.29", 2, 0.29, 0.0, StateCorroborated},
		{"ambiguous band lower boundary - 0.30", 2, 0.30, 0.9, StateAnomalous},
		{"ambiguous band - 0.5", 3, 0.5, 0.9, StateAnomalous},
		{"ambiguous band upper boundary - 0.69", 2, 0.69, 0.0, StateAnomalous},
		{"dispute boundary - 0.70", 2, 0.70, 0.0, StateDisputed},
		{"strong disagreement", 3, 0.95, 0.9, StateDisputed},
		{"three independent agreeing sources", 3, 0.1, 0.8, StateArchetypal},
		{"three dependent agreeing sources", 3, 0.1, 0.5, StateCorroborated},
		{"independence boundary - exactly 0.5", 3, 0.0, 0.5, StateCorroborated},
		{"independence just above boundary", 3, 0.0, 0.51, StateArchetypal},
		{"four independent agreeing sources", 4, 0.0, 1.0, StateArchetypal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeState(th, tt.sources, tt.contradiction, tt.independence)
			if got != tt.want {
				t.Errorf("ComputeState(%d, %v, %v) = %v, want %v",
					tt.sources, tt.contradiction, tt.independence, got, tt.want)
			}
		})
	}
}

func TestComputeState_NotSticky(t *testing.T) {
	th := DefaultThresholds()

	// A vector that qualified as archetypal must be reclassified when a
	// contradicting observation pushes the score into the dispute range.
	if got := ComputeState(th, 3, 0.1, 0.8); got != StateArchetypal {
		t.Fatalf("precondition failed: got %v", got)
	}
	if got := ComputeState(th, 4, 0.9, 0.8); got != StateDisputed {
		t.Errorf("after contradiction spike: got %v, want %v", got, StateDisputed)
	}
}

func TestComputeConfidence(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name         string
		state        EpistemicState
		sources      int
		independence float64
		want         float64
	}{
		{"raw baseline", StateRawObservation, 1, 0.0, 0.5},
		{"corroborated independent", StateCorroborated, 2, 0.9, 0.7},
		{"corroborated with shared upstream", StateCorroborated, 2, 0.0, 0.5},
		{"archetypal", StateArchetypal, 3, 0.8, 0.9},
		{"disputed", StateDisputed, 2, 0.9, 0.3},
		{"disputed with shared upstream", StateDisputed, 2, 0.0, 0.1},
		{"anomalous", StateAnomalous, 2, 0.9, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeConfidence(th, tt.state, tt.sources, tt.independence)
			if diff := got - tt.want; diff < -1e-9 || diff > 1e-9 {
				t.Errorf("ComputeConfidence(%v, %d, %v) = %v, want %v",
					tt.state, tt.sources, tt.independence, got, tt.want)
			}
		})
	}
}

// Cancelling deltas must land exactly on the grid value, not within an
// epsilon of it: the confidence is surfaced to collaborators who may
// compare it with ==.
func TestComputeConfidence_ExactOnTenths(t *testing.T) {
	th := DefaultThresholds()

	// +0.2 corroboration and -0.2 shared-upstream cancel to the baseline.
	if got := ComputeConfidence(th, StateCorroborated, 2, 0.0); got != 0.5 {
		t.Errorf("cancelled deltas = %v, want exactly 0.5", got)
	}
	if got := ComputeConfidence(th, StateArchetypal, 3, 0.8); got != 0.9 {
		t.Errorf("archetypal = %v, want exactly 0.9", got)
	}
	if got := ComputeConfidence(th, StateCorroborated, 2, 0.9); got != 0.7 {
		t.Errorf("corroborated = %v, want exactly 0.7", got)
	}
	if got := ComputeConfidence(th, StateDisputed, 2, 0.9); got != 0.3 {
		t.Errorf("disputed = %v, want exactly 0.3", got)
	}
}

func TestComputeConfidence_AlwaysInRange(t *testing.T) {
	th := DefaultThresholds()
	for _, state := range AllEpistemicStates() {
		for sources := 1; sources <= 5; sources++ {
			for _, i := range []float64{0.0, 0.2, 0.5, 1.0} {
				got := ComputeConfidence(th, state, sources, i)
				if !InUnitRange(got) {
					t.Errorf("ComputeConfidence(%v, %d, %v) = %v, outside [0,1]", state, sources, i, got)
				}
			}
		}
	}
}

func TestClampUnit(t *testing.T) {
	if got := ClampUnit(-0.2); got != 0 {
		t.Errorf("ClampUnit(-0.2) = %v, want 0", got)
	}
	if got := ClampUnit(1.3); got != 1 {
		t.Errorf("ClampUnit(1.3) = %v, want 1", got)
	}
	if got := ClampUnit(0.42); got != 0.42 {
		t.Errorf("ClampUnit(0.42) = %v, want 0.42", got)
	}
}

func TestValidEpistemicState(t *testing.T) {
	for _, s := range AllEpistemicStates() {
		if !ValidEpistemicState(string(s)) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []string{"", "trusted", "RAW_OBSERVATION"} {
		if ValidEpistemicState(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}
