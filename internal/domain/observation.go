package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// ValueKind declares how a claim's reported values are compared.
type ValueKind string

const (
	ValueKindNumeric     ValueKind = "numeric"
	ValueKindCategorical ValueKind = "categorical"
)

func ValidValueKind(k string) bool {
	switch ValueKind(k) {
	case ValueKindNumeric, ValueKindCategorical:
		return true
	}
	return false
}

// ClaimKey identifies "the same real-world fact" across sources.
// Callers normalize subject, metric and time bucket consistently;
// the engine only derives a stable hash from them.
type ClaimKey struct {
	Subject    string `json:"subject"`
	Metric     string `json:"metric"`
	TimeBucket string `json:"time_bucket"`
}

func (k ClaimKey) IsZero() bool {
	return k.Subject == "" && k.Metric == "" && k.TimeBucket == ""
}

// Hash returns the deterministic identity of the claim.
func (k ClaimKey) Hash() string {
	h := sha256.Sum256([]byte(k.Subject + "\x1f" + k.Metric + "\x1f" + k.TimeBucket))
	return hex.EncodeToString(h[:])
}

func (k ClaimKey) String() string {
	return strings.Join([]string{k.Subject, k.Metric, k.TimeBucket}, "/")
}

// Value is a reported value, numeric or categorical depending on Kind.
type Value struct {
	Kind     ValueKind `json:"kind"`
	Number   float64   `json:"number,omitempty"`
	Category string    `json:"category,omitempty"`
}

func NumericValue(n float64) Value {
	return Value{Kind: ValueKindNumeric, Number: n}
}

func CategoricalValue(c string) Value {
	return Value{Kind: ValueKindCategorical, Category: c}
}

// Matches reports whether two values are the same reported fact.
func (v Value) Matches(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	if v.Kind == ValueKindNumeric {
		return v.Number == other.Number
	}
	return v.Category == other.Category
}

func (v Value) String() string {
	if v.Kind == ValueKindNumeric {
		return fmt.Sprintf("%g", v.Number)
	}
	return v.Category
}

// Observation is one source's reported value for a claim at a point in time.
// Immutable once recorded.
type Observation struct {
	SourceID   string    `json:"source_id"`
	Claim      ClaimKey  `json:"claim"`
	Value      Value     `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
	Lineage    []string  `json:"lineage,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}
