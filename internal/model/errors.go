package model

import "errors"

var (
	// Content related errors
	ErrNotFound           = errors.New("not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrVersionConflict    = errors.New("version conflict")

	// Backend related errors
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrRateLimited        = errors.New("rate limited")

	// Media related errors
	ErrSamePath = errors.New("source and destination are the same")

	// Trash related errors
	ErrTrashItemNotFound = errors.New("trash item not found")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
