package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-git-cms/internal/service"
	"go-git-cms/pkg/apierror"
)

type MediaHandler struct {
	service       *service.MediaService
	maxUploadSize int64
}

func NewMediaHandler(service *service.MediaService, maxUploadSize int64) *MediaHandler {
	return &MediaHandler{service: service, maxUploadSize: maxUploadSize}
}

func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		if isPayloadTooLarge(err) {
			writeError(w, apierror.New("PAYLOAD_TOO_LARGE", "request body exceeds MAX_UPLOAD_SIZE", "MAX_UPLOAD_SIZE", http.StatusRequestEntityTooLarge))
			return
		}
		writeError(w, apierror.New("BAD_REQUEST", "invalid multipart body", "", http.StatusBadRequest))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "form field 'file' is required", "file", http.StatusBadRequest))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		if isPayloadTooLarge(err) {
			writeError(w, apierror.New("PAYLOAD_TOO_LARGE", "request body exceeds MAX_UPLOAD_SIZE", "MAX_UPLOAD_SIZE", http.StatusRequestEntityTooLarge))
			return
		}
		writeError(w, err)
		return
	}

	folder := strings.TrimSpace(r.FormValue("folder"))
	customName := strings.TrimSpace(r.FormValue("name"))

	item, err := h.service.Upload(r.Context(), header.Filename, folder, customName, data)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, item)
}

func isPayloadTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "request body too large")
}

func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, files)
}

func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	relPath := chi.URLParam(r, "*")
	if relPath == "" {
		writeError(w, apierror.New("BAD_REQUEST", "asset path is required", "", http.StatusBadRequest))
		return
	}

	data, mimeType, err := h.service.Serve(r.Context(), relPath)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(data)
}

func (h *MediaHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		writeError(w, apierror.New("BAD_REQUEST", "file name is required", "", http.StatusBadRequest))
		return
	}

	data, mimeType, err := h.service.ServeFile(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	_, _ = w.Write(data)
}

type moveRequest struct {
	Path   string `json:"path"`
	Folder string `json:"folder"`
}

func (h *MediaHandler) Move(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload moveRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(payload.Path) == "" {
		writeError(w, apierror.New("BAD_REQUEST", "field 'path' is required", "path", http.StatusBadRequest))
		return
	}

	result, err := h.service.Move(r.Context(), payload.Path, payload.Folder)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}

type deleteRequest struct {
	Path string `json:"path"`
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(payload.Path) == "" {
		writeError(w, apierror.New("BAD_REQUEST", "field 'path' is required", "path", http.StatusBadRequest))
		return
	}

	entry, err := h.service.Delete(r.Context(), payload.Path)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, entry)
}

func (h *MediaHandler) References(w http.ResponseWriter, r *http.Request) {
	filename := strings.TrimSpace(r.URL.Query().Get("filename"))
	if filename == "" {
		writeError(w, apierror.New("BAD_REQUEST", "query parameter 'filename' is required", "filename", http.StatusBadRequest))
		return
	}

	refs, err := h.service.References(r.Context(), filename)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, refs)
}
