package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/veritaslab/veritas/internal/domain"
	"github.com/veritaslab/veritas/internal/service"
)

type VectorHandler struct {
	svc *service.ConsensusService
}

func NewVectorHandler(svc *service.ConsensusService) *VectorHandler {
	return &VectorHandler{svc: svc}
}

// GetByClaimHash returns the full truth vector for a claim hash.
func (h *VectorHandler) GetByClaimHash(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "claimHash")
	if hash == "" {
		writeError(w, http.StatusBadRequest, "claim hash is required")
		return
	}

	vector, err := h.svc.GetVector(hash)
	if err != nil {
		if errors.Is(err, service.ErrVectorNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get vector")
		return
	}

	writeJSON(w, http.StatusOK, vector)
}

// GetByClaim resolves a claim key from query parameters, for callers that
// have not computed the hash themselves.
func (h *VectorHandler) GetByClaim(w http.ResponseWriter, r *http.Request) {
	claim := domain.ClaimKey{
		Subject:    r.URL.Query().Get("subject"),
		Metric:     r.URL.Query().Get("metric"),
		TimeBucket: r.URL.Query().Get("time_bucket"),
	}
	if claim.IsZero() {
		writeError(w, http.StatusBadRequest, "subject, metric and time_bucket parameters are required")
		return
	}

	vector, err := h.svc.GetVectorByClaim(claim)
	if err != nil {
		if errors.Is(err, service.ErrVectorNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get vector")
		return
	}

	writeJSON(w, http.StatusOK, vector)
}
