package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/rolodex/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err to the client. Service messages are passed through
// for rejected input; anything else is logged and summarized.
func writeError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	status := statusFor(err)
	msg := http.StatusText(status)

	var se *apperr.ServiceError
	switch {
	case status == http.StatusUnprocessableEntity && errors.As(err, &se) && se.Message != "":
		msg = se.Message
	case status == http.StatusNotFound:
		msg = "contact not found"
	case status >= http.StatusInternalServerError:
		logger.Error(op+" failed", slog.String("error", err.Error()))
		if status == http.StatusBadGateway {
			msg = "contacts service unavailable"
		}
	}
	writeJSON(w, status, errorBody(msg))
}
