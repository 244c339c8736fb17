package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mpetrov/screencast/internal/apperror"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps the failure taxonomy onto HTTP statuses. Anything that
// reaches this point untyped is a bug in a normalization boundary and is
// surfaced as a 500.
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := http.StatusInternalServerError
	label := "internal"

	switch {
	case errors.Is(err, apperror.ErrValidation):
		status, label = http.StatusBadRequest, "validation"
	case errors.Is(err, apperror.ErrUnauthenticated):
		status, label = http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, apperror.ErrForbidden):
		status, label = http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		status, label = http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrRateLimited):
		status, label = http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, apperror.ErrUpstream):
		status, label = http.StatusBadGateway, "upstream"
	case errors.Is(err, apperror.ErrTransfer):
		status, label = http.StatusBadGateway, "transfer"
	case errors.Is(err, apperror.ErrStore):
		status, label = http.StatusInternalServerError, "store"
	}

	message := "internal error"
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}

	writeJSON(w, status, errorBody{Error: label, Message: message})
}
