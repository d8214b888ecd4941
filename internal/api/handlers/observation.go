package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/veritaslab/veritas/internal/domain"
	"github.com/veritaslab/veritas/internal/service"
)

type ObservationHandler struct {
	svc *service.IngestService
}

func NewObservationHandler(svc *service.IngestService) *ObservationHandler {
	return &ObservationHandler{svc: svc}
}

type ingestRequest struct {
	SourceID   string    `json:"source_id"`
	Subject    string    `json:"subject"`
	Metric     string    `json:"metric"`
	TimeBucket string    `json:"time_bucket"`
	ValueKind  string    `json:"value_kind"`
	Number     *float64  `json:"number,omitempty"`
	Category   string    `json:"category,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Lineage    []string  `json:"lineage,omitempty"`
}

func (r ingestRequest) value() (domain.Value, bool) {
	switch domain.ValueKind(r.ValueKind) {
	case domain.ValueKindNumeric:
		if r.Number == nil {
			return domain.Value{}, false
		}
		return domain.NumericValue(*r.Number), true
	case domain.ValueKindCategorical:
		if r.Category == "" {
			return domain.Value{}, false
		}
		return domain.CategoricalValue(r.Category), true
	}
	return domain.Value{}, false
}

// Ingest accepts one observation. Exact duplicates are acknowledged with
// 200 instead of 201; the vector is unchanged.
func (h *ObservationHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	value, ok := req.value()
	if !ok {
		writeError(w, http.StatusBadRequest, "value does not match value_kind")
		return
	}

	summary, err := h.svc.Ingest(domain.Observation{
		SourceID: req.SourceID,
		Claim: domain.ClaimKey{
			Subject:    req.Subject,
			Metric:     req.Metric,
			TimeBucket: req.TimeBucket,
		},
		Value:     value,
		Timestamp: req.Timestamp,
		Lineage:   req.Lineage,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSourceIDMissing),
			errors.Is(err, service.ErrClaimMissing),
			errors.Is(err, service.ErrInvalidValueKind),
			errors.Is(err, service.ErrValueKindMismatch),
			errors.Is(err, service.ErrTimestampMissing):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to ingest observation")
		}
		return
	}

	status := http.StatusCreated
	if summary.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, summary)
}
