// Package handlers provides HTTP handlers for the context engine API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/brightline-ai/context-engine/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	resp := map[string]string{"error": message}
	if detail != "" {
		resp["detail"] = detail
	}
	writeJSON(w, status, resp)
}

// writeStorageError maps repository errors onto HTTP statuses.
func writeStorageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", "")
	case errors.Is(err, storage.ErrConflict):
		writeError(w, http.StatusConflict, "already exists", "")
	default:
		writeError(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}

func parseUUIDParam(w http.ResponseWriter, value, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name, value)
		return uuid.Nil, false
	}
	return id, true
}
