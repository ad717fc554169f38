package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"team-tracker/internal/calendar"
	"team-tracker/internal/model"
	"team-tracker/internal/repository"
	"team-tracker/internal/service"
)

// errBadRequest marks input the handler itself rejected.
var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Printf("error: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, service.ErrInvalidTask), errors.Is(err, service.ErrInvalidGoal):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, calendar.ErrUnknownTask):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidTransition), errors.Is(err, calendar.ErrNotCompletable):
		return http.StatusConflict
	case errors.Is(err, calendar.ErrMutationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
