// Package api serves an in-memory copy of the user record service, used for
// local runs and tests.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/newsetl/internal/record"
)

const maxRecordBodySize = 1 << 20 // 1MB

// NewRecordHandler returns the record service routes backed by store.
func NewRecordHandler(store *MemoryStore) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Get("/usuario/{id}", handleGetUser(store))
	r.Put("/usuario/{id}", handlePutUser(store))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleGetUser(store *MemoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		u, found := store.Get(id)
		if !found {
			httpError(w, http.StatusNotFound, "not_found_error", "user %d not found", id)
			return
		}
		writeJSON(w, u)
	}
}

func handlePutUser(store *MemoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRecordBodySize)
		defer r.Body.Close()

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var u record.Record
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if u.ID != id {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "body id %d does not match path id %d", u.ID, id)
			return
		}
		if !store.Replace(u) {
			httpError(w, http.StatusNotFound, "not_found_error", "user %d not found", id)
			return
		}

		slog.Debug("user replaced", "user_id", id, "news", len(u.News))
		writeJSON(w, u)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid user id %q", raw)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response failed", "error", err)
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
