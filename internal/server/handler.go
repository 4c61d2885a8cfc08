// Package server is the thin HTTP glue over the search service. It does
// parameter parsing and status mapping only; all behavior lives in the
// service and the core packages beneath it.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/docfind/docfind/internal/service"
	apperrors "github.com/docfind/docfind/pkg/errors"
	"github.com/docfind/docfind/pkg/logger"
)

type Handler struct {
	svc          *service.Service
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger
}

func NewHandler(svc *service.Service, defaultLimit, maxLimit int) *Handler {
	return &Handler{
		svc:          svc,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       slog.Default().With("component", "http-handler"),
	}
}

// Search handles GET /api/v1/search?q=...&page=1&limit=10&fuzzy=true.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")

	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = parsed
	}

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > h.maxLimit {
			parsed = h.maxLimit
		}
		limit = parsed
	}

	fuzzy := true
	if fuzzyStr := r.URL.Query().Get("fuzzy"); fuzzyStr != "" {
		parsed, err := strconv.ParseBool(fuzzyStr)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "fuzzy must be a boolean")
			return
		}
		fuzzy = parsed
	}

	result, err := h.svc.Search(ctx, query, page, limit, fuzzy)
	if err != nil {
		log.Error("search failed", "query", query, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "search failed")
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// Rebuild handles POST /api/v1/index/rebuild.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	count, err := h.svc.RebuildIndex(r.Context())
	if err != nil {
		log.Error("index rebuild failed", "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "index rebuild failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"documents_indexed": count})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
