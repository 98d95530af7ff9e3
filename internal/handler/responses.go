package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/osse101/DuelBot_Go/internal/domain"
	"github.com/osse101/DuelBot_Go/internal/logger"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	buf := getBuffer()
	defer putBuffer(buf)

	// Headers are already sent, so an encode failure can only be logged
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError logs a failed service call and maps it to a user-facing response
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	statusCode, userMsg := mapServiceErrorToUserMessage(err)
	log := logger.FromContext(r.Context())
	if statusCode >= http.StatusInternalServerError {
		log.Error(opName+" failed", "error", err)
	} else {
		log.Warn(opName+" rejected", "error", err, "status", statusCode)
	}
	respondError(w, statusCode, userMsg)
}

// User-facing error messages for service errors
const (
	// Generic messages
	ErrMsgGenericServerError  = "Something went wrong"
	ErrMsgUnknownError        = "Unknown error"
	ErrMsgInvalidRequestError = "Invalid request. Please check your inputs."
	ErrMsgAuthFailedError     = "Authentication failed. Please check your API key."
	ErrMsgUnavailableError    = "Server is temporarily unavailable. Please try again later."

	// Duel messages
	ErrMsgAlreadyInDuelError        = "You or your opponent are already in a duel"
	ErrMsgNoPendingChallengeError   = "No pending challenge to accept"
	ErrMsgNoActiveDuelError         = "You are not in a duel"
	ErrMsgInsufficientProblemsError = "Could not find enough problems for this rating. Try another rating."
	ErrMsgSelfChallengeError        = "You cannot challenge yourself"
	ErrMsgInvalidRatingError        = "Rating must be between 800 and 3500"
	ErrMsgDuelNotFoundError         = "Duel not found"
	ErrMsgDuelChangedError          = "That duel changed while you were acting on it. Please try again."

	// Judge messages
	ErrMsgHandleNotLinkedError  = "Both participants must link a Codeforces handle first"
	ErrMsgJudgeUnavailableError = "Codeforces is not responding. Please try again later."

	// Points messages
	ErrMsgAlreadyResetError = "Points were already reset this month"

	// Locking messages
	ErrMsgBusyError = "Another request for this duel is in progress. Please try again."
)

// mapServiceErrorToUserMessage maps domain errors to user-friendly HTTP responses
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrAlreadyInDuel):
		return http.StatusConflict, ErrMsgAlreadyInDuelError
	case errors.Is(err, domain.ErrNoPendingChallenge):
		return http.StatusNotFound, ErrMsgNoPendingChallengeError
	case errors.Is(err, domain.ErrNoActiveDuel):
		return http.StatusNotFound, ErrMsgNoActiveDuelError
	case errors.Is(err, domain.ErrDuelNotFound):
		return http.StatusNotFound, ErrMsgDuelNotFoundError
	case errors.Is(err, domain.ErrInsufficientProblems):
		return http.StatusUnprocessableEntity, ErrMsgInsufficientProblemsError
	case errors.Is(err, domain.ErrSelfChallenge):
		return http.StatusBadRequest, ErrMsgSelfChallengeError
	case errors.Is(err, domain.ErrInvalidRating):
		return http.StatusBadRequest, ErrMsgInvalidRatingError
	case errors.Is(err, domain.ErrHandleNotLinked):
		return http.StatusBadRequest, ErrMsgHandleNotLinkedError
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidRequestError
	case errors.Is(err, domain.ErrInvalidDuelTransition):
		return http.StatusConflict, ErrMsgDuelChangedError
	case errors.Is(err, domain.ErrAlreadyReset):
		return http.StatusConflict, ErrMsgAlreadyResetError
	case errors.Is(err, domain.ErrLockHeld):
		return http.StatusConflict, ErrMsgBusyError
	case errors.Is(err, domain.ErrJudgeUnavailable):
		return http.StatusServiceUnavailable, ErrMsgJudgeUnavailableError
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}
