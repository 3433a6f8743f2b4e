package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"task-tracker/backend/app/dto"
	"task-tracker/backend/app/middleware"
	"task-tracker/backend/app/services"
	"task-tracker/backend/global"

	"github.com/gorilla/mux"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.MessageResponse{Message: msg})
}

// writeServiceError maps a service error to its status code. Only messages
// of services.Error reach the client; anything else is logged and hidden.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	default:
		global.Logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeMessage(w, http.StatusInternalServerError, "database error")
		return
	}
	var se *services.Error
	if errors.As(err, &se) {
		writeMessage(w, status, se.Msg)
		return
	}
	writeMessage(w, status, err.Error())
}

// decodeJSON reads the body into dst and answers 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func actorFrom(w http.ResponseWriter, r *http.Request) (services.Actor, bool) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing token")
	}
	return actor, ok
}
