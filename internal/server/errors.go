package server

import (
	"errors"
	"net/http"

	"diet-agent/internal/coach"
	"diet-agent/internal/models"
	"diet-agent/internal/nutrition"
	"diet-agent/internal/storage"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Message: message, Code: code}})
}

// classify maps domain errors to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, coach.ErrNotRegistered), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrInvalidProfile), errors.Is(err, coach.ErrInvalidSettings),
		errors.Is(err, coach.ErrUnknownPreset), errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, nutrition.ErrIncompleteProfile):
		return http.StatusUnprocessableEntity, "incomplete_profile"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

var errBadRequest = errors.New("bad request")
