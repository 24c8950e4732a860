package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/suhailma1ik/KinCashBackend/internal/domain/valueobject"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps domain error categories to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, valueobject.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, valueobject.ErrInvalidParameters),
		errors.Is(err, valueobject.ErrInsufficientAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, valueobject.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
