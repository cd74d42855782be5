package handler

import (
	"net/http"
	"strconv"

	"go-git-cms/internal/service"
)

type StatsHandler struct {
	service *service.StatsService
}

func NewStatsHandler(service *service.StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

func (h *StatsHandler) System(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.System(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, stats)
}

func (h *StatsHandler) Collections(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Collections(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, stats)
}

func (h *StatsHandler) Localization(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Localization(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, stats)
}

func (h *StatsHandler) Media(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Media(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, stats)
}

func (h *StatsHandler) Activity(w http.ResponseWriter, r *http.Request) {
	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 20)
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	commits, err := h.service.RecentActivity(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, commits)
}

func parseIntOrDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
