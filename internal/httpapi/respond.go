package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"lodgia.org/internal/auth"
	"lodgia.org/internal/rental"
	"lodgia.org/internal/schema"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeMessage is the single encoder for rejection responses:
// {"message": ..., "request_id": ...}.
func writeMessage(w http.ResponseWriter, r *http.Request, code int, msg string) {
	body := map[string]any{
		"message": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		body["request_id"] = rid
	}
	writeJSON(w, code, body)
}

// writeValidation reports schema violations, one message per field.
func writeValidation(w http.ResponseWriter, r *http.Request, result schema.Result) {
	body := map[string]any{
		"message": "Validation failed",
		"errors":  result,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		body["request_id"] = rid
	}
	writeJSON(w, http.StatusBadRequest, body)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeMessage(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

// serviceError maps domain failures onto the response taxonomy. Unexpected
// errors become a 500 whose detail is suppressed in production.
func (a *API) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, rental.ErrInvalidInput):
		writeMessage(w, r, http.StatusBadRequest, trimSentinel(err, rental.ErrInvalidInput))
	case errors.Is(err, rental.ErrNotFound):
		writeMessage(w, r, http.StatusNotFound, "resource not found")
	case errors.Is(err, rental.ErrConflict):
		writeMessage(w, r, http.StatusConflict, trimSentinel(err, rental.ErrConflict))
	case errors.Is(err, auth.ErrPasswordMismatch):
		writeMessage(w, r, http.StatusUnauthorized, "invalid credentials")
	default:
		msg := "internal error"
		if !a.cfg.Production() {
			msg = "internal error: " + err.Error()
		}
		writeMessage(w, r, http.StatusInternalServerError, msg)
	}
}

// trimSentinel drops the wrapped sentinel prefix so clients see only the
// human-readable part ("title is required", not "rental: invalid input: ...").
func trimSentinel(err, sentinel error) string {
	msg := err.Error()
	if trimmed := strings.TrimPrefix(msg, sentinel.Error()+": "); trimmed != msg {
		return trimmed
	}
	return msg
}
