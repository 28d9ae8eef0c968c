package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"workstream/pkg/engine"
	"workstream/pkg/logger"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		v = struct{}{}
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("response_encode_failed", zap.Error(err))
	}
}

// writeError maps the engine's error kinds onto wire statuses: bad token
// 401, access denied 403, invalid input 400, anything else 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrBadToken):
		status = http.StatusUnauthorized
	case errors.Is(err, engine.ErrAccessDenied):
		status = http.StatusForbidden
	case errors.Is(err, engine.ErrInvalidInput):
		status = http.StatusBadRequest
	default:
		logger.Log.Error("internal_error", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return false
	}
	return true
}

// actorFromQuery resolves the token query parameter used by GET endpoints.
func actorFromQuery(e *engine.Engine, w http.ResponseWriter, r *http.Request) (int, bool) {
	uid, err := e.ResolveToken(r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, err)
		return 0, false
	}
	return uid, true
}

func actorFromToken(e *engine.Engine, w http.ResponseWriter, token string) (int, bool) {
	uid, err := e.ResolveToken(token)
	if err != nil {
		writeError(w, err)
		return 0, false
	}
	return uid, true
}

func queryInt(r *http.Request, name string) (int, error) {
	return strconv.Atoi(r.URL.Query().Get(name))
}
