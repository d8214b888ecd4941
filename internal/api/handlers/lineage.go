package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/veritaslab/veritas/internal/service"
)

type LineageHandler struct {
	svc *service.LineageService
}

func NewLineageHandler(svc *service.LineageService) *LineageHandler {
	return &LineageHandler{svc: svc}
}

type recordLineageRequest struct {
	SourceID  string   `json:"source_id"`
	Upstreams []string `json:"upstreams"`
}

func (h *LineageHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordLineageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.Record(req.SourceID, req.Upstreams); err != nil {
		switch {
		case errors.Is(err, service.ErrLineageSourceMissing),
			errors.Is(err, service.ErrLineageUpstreamEmpty):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to record lineage")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type independenceResponse struct {
	Sources      []string `json:"sources"`
	Independence float64  `json:"independence"`
}

func (h *LineageHandler) Independence(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("sources")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "sources parameter is required")
		return
	}

	var sources []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			sources = append(sources, s)
		}
	}

	writeJSON(w, http.StatusOK, independenceResponse{
		Sources:      sources,
		Independence: h.svc.IndependenceScore(sources),
	})
}

type upstreamResponse struct {
	SourceID  string   `json:"source_id"`
	Upstreams []string `json:"upstreams"`
}

func (h *LineageHandler) Upstreams(w http.ResponseWriter, r *http.Request) {
	sourceID := r.URL.Query().Get("source_id")
	if sourceID == "" {
		writeError(w, http.StatusBadRequest, "source_id parameter is required")
		return
	}

	writeJSON(w, http.StatusOK, upstreamResponse{
		SourceID:  sourceID,
		Upstreams: h.svc.UpstreamClosure(sourceID),
	})
}

func (h *LineageHandler) Convergences(w http.ResponseWriter, r *http.Request) {
	threshold := service.DefaultConvergenceThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil || t <= 0 || t > 1 {
			writeError(w, http.StatusBadRequest, "invalid threshold parameter")
			return
		}
		threshold = t
	}

	convergences := h.svc.Convergences(threshold)
	writeJSON(w, http.StatusOK, map[string]any{
		"threshold":    threshold,
		"convergences": convergences,
		"count":        len(convergences),
	})
}
