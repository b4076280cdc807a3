package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/splitledger/splitledger/internal/auth"
	"github.com/splitledger/splitledger/internal/ledger"
)

// errorResponse is the JSON error body: a human-readable message plus a
// machine-checkable reason code.
type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeError maps the ledger error taxonomy onto HTTP statuses:
// validation 400 (permission 403), not found 404, conflict 409,
// consistency 500. Errors propagate unmodified; nothing is retried here.
func writeError(w http.ResponseWriter, err error) {
	var verr *ledger.ValidationError
	var nerr *ledger.NotFoundError
	var cerr *ledger.ConflictError
	var serr *ledger.ConsistencyError

	switch {
	case errors.As(err, &verr):
		status := http.StatusBadRequest
		if verr.Code == ledger.CodePermissionDenied {
			status = http.StatusForbidden
		}
		writeJSON(w, status, errorResponse{Message: verr.Message, Code: string(verr.Code)})
	case errors.As(err, &nerr):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: nerr.Error(), Code: "NOT_FOUND"})
	case errors.As(err, &cerr):
		writeJSON(w, http.StatusConflict, errorResponse{Message: cerr.Message, Code: "CONFLICT"})
	case errors.As(err, &serr):
		// Ledger corruption. Loud, never swallowed.
		slog.Error("ledger consistency violation", "error", serr.Message)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: serr.Message, Code: "CONSISTENCY_ERROR"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: err.Error(), Code: "UNAUTHORIZED"})
	case errors.Is(err, auth.ErrEmailExists):
		writeJSON(w, http.StatusConflict, errorResponse{Message: err.Error(), Code: "EMAIL_EXISTS"})
	case errors.Is(err, auth.ErrWeakPassword):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error(), Code: "WEAK_PASSWORD"})
	default:
		slog.Error("internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal error", Code: "INTERNAL_ERROR"})
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return ledger.Validationf(ledger.CodeMissingField, "invalid request body: %v", err)
	}
	return nil
}
