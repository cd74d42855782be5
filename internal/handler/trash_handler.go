package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"go-git-cms/internal/service"
	"go-git-cms/pkg/apierror"
)

type TrashHandler struct {
	service *service.TrashService
}

func NewTrashHandler(service *service.TrashService) *TrashHandler {
	return &TrashHandler{service: service}
}

func (h *TrashHandler) List(w http.ResponseWriter, r *http.Request) {
	if strings.EqualFold(r.URL.Query().Get("cleanup"), "true") {
		purged, err := h.service.Cleanup(r.Context(), 0)
		if err != nil {
			slog.Warn("trash retention cleanup failed", "error", err)
		} else if purged > 0 {
			slog.Info("trash retention cleanup", "purged", purged)
		}
	}

	entries, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, entries)
}

type trashItemRequest struct {
	Path string `json:"path"`
}

func (h *TrashHandler) Restore(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload trashItemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(payload.Path) == "" {
		writeError(w, apierror.New("BAD_REQUEST", "field 'path' is required", "path", http.StatusBadRequest))
		return
	}

	if err := h.service.Restore(r.Context(), payload.Path); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"restored": true})
}

func (h *TrashHandler) Delete(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload trashItemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(payload.Path) == "" {
		writeError(w, apierror.New("BAD_REQUEST", "field 'path' is required", "path", http.StatusBadRequest))
		return
	}

	if err := h.service.Purge(r.Context(), payload.Path); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"purged": true})
}

func (h *TrashHandler) Empty(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.Empty(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"purged": count})
}
