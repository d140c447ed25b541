package httputil

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/robo-arena/internal/bracket"
	"github.com/AdamBeresnev/robo-arena/internal/competition"
	"github.com/AdamBeresnev/robo-arena/internal/entrant"
	"github.com/AdamBeresnev/robo-arena/internal/service"
)

type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	JSON(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	JSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	JSON(w, http.StatusNotFound, errorBody{Error: msg})
}

// StatusOf maps domain errors to HTTP statuses. Unknown errors are 500.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, sql.ErrNoRows),
		errors.Is(err, bracket.ErrMatchNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrValidationFailed),
		errors.Is(err, bracket.ErrInvalidInput),
		errors.Is(err, competition.ErrInvalidKind),
		errors.Is(err, competition.ErrInvalidEventDates),
		errors.Is(err, entrant.ErrInvalidStatus),
		errors.Is(err, entrant.ErrInvalidAttempt):
		return http.StatusBadRequest

	case errors.Is(err, bracket.ErrInvalidWinner),
		errors.Is(err, bracket.ErrIncompleteMatch),
		errors.Is(err, competition.ErrWrongKind),
		errors.Is(err, competition.ErrOverweight):
		return http.StatusUnprocessableEntity

	case errors.Is(err, bracket.ErrResultLocked),
		errors.Is(err, bracket.ErrNotYetDetermined),
		errors.Is(err, service.ErrBracketExists),
		errors.Is(err, service.ErrNotApproved),
		errors.Is(err, service.ErrCompetitionFinished),
		errors.Is(err, competition.ErrRegistrationClosed),
		errors.Is(err, competition.ErrInvalidTransition):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// FromError writes err with the status StatusOf picks for it.
func FromError(w http.ResponseWriter, msg string, err error) {
	status := StatusOf(err)
	switch status {
	case http.StatusInternalServerError:
		InternalServerError(w, msg, err)
	case http.StatusNotFound:
		NotFound(w, msg, err)
	default:
		slog.Warn("request rejected", "message", msg, "status", status, "error", err)
		JSON(w, status, errorBody{Error: err.Error()})
	}
}
