package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/recyclehub/internal/service"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// serviceError maps a service error to its HTTP status. Unclassified errors
// are logged and reported with a generic message.
func serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *service.ValidationError
		nerr *service.NotFoundError
		ferr *service.ForbiddenError
		cerr *service.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		jsonError(w, http.StatusBadRequest, verr.Error())
	case errors.As(err, &nerr):
		jsonError(w, http.StatusNotFound, "item not found")
	case errors.As(err, &ferr):
		jsonError(w, http.StatusForbidden, ferr.Error())
	case errors.As(err, &cerr):
		jsonError(w, http.StatusConflict, cerr.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
