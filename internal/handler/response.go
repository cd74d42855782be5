package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-git-cms/internal/model"
	"go-git-cms/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.Is(err, model.ErrCollectionNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Collection not found"
	} else if errors.Is(err, model.ErrTrashItemNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Trash item not found"
	} else if errors.Is(err, model.ErrNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Resource not found"
	} else if errors.Is(err, model.ErrVersionConflict) {
		status = http.StatusConflict
		body.Code = "VERSION_CONFLICT"
		body.Message = "Content was modified by someone else, reload and retry"
	} else if errors.Is(err, model.ErrSamePath) {
		status = http.StatusConflict
		body.Code = "CONFLICT"
		body.Message = "Source and destination are the same"
	} else if errors.Is(err, model.ErrUnauthorized) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Authentication required"
	} else if errors.Is(err, model.ErrForbidden) {
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Access denied"
	} else if errors.Is(err, model.ErrRateLimited) {
		status = http.StatusTooManyRequests
		body.Code = "RATE_LIMITED"
		body.Message = "Upstream rate limit exceeded, retry later"
	} else if errors.Is(err, model.ErrBackendUnavailable) {
		status = http.StatusBadGateway
		body.Code = "BACKEND_UNAVAILABLE"
		body.Message = "Repository backend is unreachable"
		body.Details = err.Error()
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
	} else {
		// Log unclassified errors so they are visible in container logs.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}
