package handlers

import (
	"net/http"
	"strconv"

	"github.com/veritaslab/veritas/internal/domain"
	"github.com/veritaslab/veritas/internal/service"
)

type ConsensusHandler struct {
	svc *service.ConsensusService
}

func NewConsensusHandler(svc *service.ConsensusService) *ConsensusHandler {
	return &ConsensusHandler{svc: svc}
}

type consensusResponse struct {
	Vectors []*domain.TruthVector `json:"vectors"`
	Count   int                   `json:"count"`
}

// List returns the vectors currently in the trusted terminal state, most
// confident first.
func (h *ConsensusHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = n
	}

	vectors := h.svc.ConsensusVectors(limit)
	if vectors == nil {
		vectors = []*domain.TruthVector{}
	}

	writeJSON(w, http.StatusOK, consensusResponse{
		Vectors: vectors,
		Count:   len(vectors),
	})
}
