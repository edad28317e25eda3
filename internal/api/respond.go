package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariel-research/budget-survey-sub001/internal/strategy"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps generation errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, strategy.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, strategy.ErrUnknownStrategy):
		return http.StatusNotFound
	case errors.Is(err, strategy.ErrUnsuitable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}
