package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/relay"
)

// StatusCode maps err to the response status. Unknown errors are 500.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, relay.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, relay.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, relay.ErrInsufficientStorage):
		return http.StatusInsufficientStorage
	case errors.Is(err, relay.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, relay.ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes the status code for err with an empty body.
func HandleError(w http.ResponseWriter, err error) {
	code := StatusCode(err)

	switch {
	case code == http.StatusInternalServerError:
		slog.Error("request error", "error", err)
	case code == http.StatusInsufficientStorage:
		slog.Warn("upload incomplete", "error", err)
	default:
		slog.Debug("request rejected", "status", code, "error", err)
	}

	w.WriteHeader(code)
}
