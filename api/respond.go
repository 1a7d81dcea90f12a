package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/predial/vistoria/pkg/apperr"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

// writeSuccess wraps payload fields in the `{success, message, ...}`
// envelope every endpoint responds with.
func writeSuccess(w http.ResponseWriter, status int, message string, fields map[string]any) {
	body := map[string]any{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, body, status)
}

// writeError maps the taxonomy kind to an HTTP status. Internal errors are
// logged with their cause and surfaced as a generic message.
func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	if kind == apperr.Internal {
		logger.Error("internal error", slog.Any("err", err))
	}
	writeJSON(w, map[string]any{"success": false, "message": apperr.MessageOf(err)}, status)
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.PreconditionFailed:
		return http.StatusPreconditionFailed
	}
	return http.StatusInternalServerError
}
