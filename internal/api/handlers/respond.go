package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/insightpilot/insightpilot-api/internal/core/apperrors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// serviceError maps service sentinels onto HTTP statuses.
func serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrConflict):
		http.Error(w, "conflict", http.StatusConflict)
	case errors.Is(err, apperrors.ErrIncomplete):
		http.Error(w, "questionnaire is not complete", http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, apperrors.ErrBadSignature):
		http.Error(w, "invalid signature", http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func userIDFrom(r *http.Request) (string, bool) {
	id, ok := r.Context().Value("user_id").(string)
	return id, ok && id != ""
}
