package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-git-cms/internal/middleware"
	"go-git-cms/internal/model"
	"go-git-cms/internal/service"
	"go-git-cms/pkg/apierror"
)

type ContentHandler struct {
	service *service.ContentService
}

func NewContentHandler(service *service.ContentService) *ContentHandler {
	return &ContentHandler{service: service}
}

func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, records)
}

func (h *ContentHandler) Read(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Read(r.Context(), chi.URLParam(r, "slug"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if record == nil {
		writeError(w, model.ErrNotFound)
		return
	}

	writeSuccess(w, http.StatusOK, record)
}

func (h *ContentHandler) Write(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var record map[string]any
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	actor := "admin"
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		actor = claims.Email
	}

	result, err := h.service.Write(r.Context(), chi.URLParam(r, "slug"), chi.URLParam(r, "id"), record, actor)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeSuccess(w, status, result)
}

func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.SoftDelete(r.Context(), chi.URLParam(r, "slug"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, entry)
}
