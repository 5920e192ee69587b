package routes

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JwahoonKim/Waffle-Market/internal/core/neighbor"
	"github.com/JwahoonKim/Waffle-Market/internal/core/trade"
	"github.com/JwahoonKim/Waffle-Market/internal/core/users"
)

// writeJSON writes a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", slog.String("error", err.Error()))
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError maps core errors to HTTP statuses. Anything unrecognized is a
// 500 and gets logged; recognized errors are the caller's problem and aren't.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, users.ErrUserNotFound),
		errors.Is(err, trade.ErrPostNotFound),
		errors.Is(err, neighbor.ErrPostNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "NotFound", Message: err.Error()})

	case errors.Is(err, trade.ErrNotPostOwner),
		errors.Is(err, neighbor.ErrNotPublisher),
		errors.Is(err, users.ErrWrongPassword):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "Forbidden", Message: err.Error()})

	case users.IsConflict(err):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "Conflict", Message: err.Error()})

	case errors.Is(err, users.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "InvalidCredentials", Message: err.Error()})

	case users.IsValidationError(err),
		trade.IsValidationError(err),
		neighbor.IsValidationError(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "InvalidRequest", Message: err.Error()})

	default:
		slog.Error("internal error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "InternalError", Message: "internal server error"})
	}
}

// decodeJSON parses the request body into v
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return trade.NewValidationError("body", "invalid JSON body")
	}
	return nil
}

// pathID parses a numeric path parameter
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, trade.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

// queryInt parses an optional integer query parameter, falling back to def
// when absent or malformed
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
