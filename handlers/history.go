// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/secretballot/middleware"
	"github.com/danielhkuo/secretballot/models"
	"github.com/danielhkuo/secretballot/scope"
)

// MaxHistoryLimit caps GET /history page size.
const MaxHistoryLimit = 200

// OutcomeLister reads archived outcomes, newest first.
type OutcomeLister interface {
	ListOutcomes(ctx context.Context, scopeKey string, limit int) ([]models.Record, error)
}

type HistoryHandler struct {
	archive OutcomeLister
}

func NewHistoryHandler(archive OutcomeLister) *HistoryHandler {
	return &HistoryHandler{archive: archive}
}

// List handles GET /history?scope=&limit=
// community and room may be given instead of scope.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	scopeKey := q.Get("scope")
	if community, room := q.Get("community"), q.Get("room"); scopeKey == "" && community != "" && room != "" {
		scopeKey = scope.Key(community, room)
	}

	limit := 0
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > MaxHistoryLimit {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	records, err := h.archive.ListOutcomes(r.Context(), scopeKey, limit)
	if err != nil {
		slog.Error("failed to list outcomes", "scope", scopeKey, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.HistoryResponse{Records: records})
}
