package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"lifequest/internal/auth"
	"lifequest/internal/engine"
)

type errorBody struct {
	Error string           `json:"error"`
	Code  string           `json:"code"`
	State *engine.Snapshot `json:"state,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// classify maps domain errors to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	var ve *engine.ValidationError
	var se *auth.SignupError
	switch {
	case errors.Is(err, engine.ErrLoginRequired):
		return http.StatusUnauthorized, "login_required"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, auth.ErrUsernameTaken):
		return http.StatusConflict, "username_taken"
	case errors.As(err, &se):
		return http.StatusBadRequest, "invalid_signup"
	case errors.As(err, &ve):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, engine.ErrInsufficientPoints):
		return http.StatusConflict, "insufficient_points"
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, engine.ErrAlreadyCompleted):
		return http.StatusConflict, "already_completed"
	case errors.Is(err, engine.ErrNotCompleted):
		return http.StatusConflict, "not_completed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
