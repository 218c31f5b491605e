package server

import (
	"encoding/json"
	"errors"
	"net/http"

	tgerrors "github.com/matzehuels/thermogrid/pkg/errors"
	"github.com/matzehuels/thermogrid/pkg/session"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    tgerrors.Code `json:"code"`
	Message string        `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	// Session sentinels carry no code of their own.
	switch {
	case errors.Is(err, session.ErrNotFound):
		err = tgerrors.Wrap(tgerrors.ErrCodeSessionNotFound, err, "session not found")
	case errors.Is(err, session.ErrExpired):
		err = tgerrors.Wrap(tgerrors.ErrCodeSessionExpired, err, "session expired")
	}

	code := tgerrors.GetCode(err)
	if code == "" {
		code = tgerrors.ErrCodeInternal
	}
	status := code.Status()
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorBody{Code: code, Message: tgerrors.UserMessage(err)})
}
