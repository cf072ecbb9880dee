package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ashkam58/pythongrade3/internal/game"
	"github.com/ashkam58/pythongrade3/internal/progress"
	"github.com/ashkam58/pythongrade3/internal/session"
	"github.com/ashkam58/pythongrade3/internal/store"
)

// errBadJSON is returned for request bodies that do not decode.
var errBadJSON = errors.New("invalid JSON body")

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// writeError maps domain errors to a status and a short machine-readable code.
func writeError(w http.ResponseWriter, err error) {
	var verr *progress.ValidationError
	status, code := http.StatusInternalServerError, "server_error"
	switch {
	case errors.Is(err, store.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, errBadJSON):
		status, code = http.StatusBadRequest, "bad_json"
	case errors.Is(err, session.ErrInvalidMode),
		errors.Is(err, game.ErrInvalidInput),
		errors.Is(err, game.ErrOutOfRange):
		status, code = http.StatusBadRequest, "invalid_input"
	case errors.As(err, &verr):
		status, code = http.StatusBadRequest, "invalid_signup"
	case errors.Is(err, session.ErrWrongMode), errors.Is(err, session.ErrNoTutor):
		status, code = http.StatusConflict, "wrong_mode"
	case errors.Is(err, game.ErrNotSolved),
		errors.Is(err, game.ErrFinished),
		errors.Is(err, game.ErrNoChallenge):
		status, code = http.StatusConflict, "not_allowed"
	case errors.Is(err, progress.ErrUsernameTaken):
		status, code = http.StatusConflict, "username_taken"
	case errors.Is(err, progress.ErrBadCredentials):
		status, code = http.StatusUnauthorized, "bad_credentials"
	case errors.Is(err, store.ErrLockTimeout):
		status, code = http.StatusServiceUnavailable, "session_busy"
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, status, errorBody{Error: code})
		return
	}
	writeJSON(w, status, errorBody{Error: code, Message: err.Error()})
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return errBadJSON
}
