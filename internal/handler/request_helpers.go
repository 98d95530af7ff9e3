package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/osse101/DuelBot_Go/internal/logger"
)

// ValidationErrorResponse is the 400 body for a request that decoded but
// failed its validate tags. Fields maps the JSON field name to the rule.
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// DecodeAndValidateRequest reads the JSON body into req and runs the shared
// validator over it. On error the 400 response is already written and the
// caller only needs to return.
//
//	var req ChallengeRequest
//	if err := DecodeAndValidateRequest(r, w, &req, "Challenge duel"); err != nil {
//	    return
//	}
func DecodeAndValidateRequest(r *http.Request, w http.ResponseWriter, req any, action string) error {
	log := logger.FromContext(r.Context())

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Warn("Malformed request body", "action", action, "error", err)
		http.Error(w, ErrMsgInvalidRequest, http.StatusBadRequest)
		return err
	}

	if err := GetValidator().ValidateStruct(req); err != nil {
		log.Debug("Request failed validation", "action", action, "error", err)
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  ErrMsgInvalidRequestSummary,
			Fields: FormatValidationError(err),
		})
		return err
	}

	return nil
}

// GetQueryParam returns a required query parameter. A missing value writes
// a 400 and reports false.
func GetQueryParam(r *http.Request, w http.ResponseWriter, name string) (string, bool) {
	value := r.URL.Query().Get(name)
	if value == "" {
		logger.FromContext(r.Context()).Warn("Missing query parameter", "param", name)
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgMissingQueryParam, name))
		return "", false
	}
	return value, true
}

// GetLimitParam parses the optional limit parameter. Absent means 0, which
// lets the service pick its default.
func GetLimitParam(r *http.Request, w http.ResponseWriter) (int, bool) {
	raw := r.URL.Query().Get(QueryParamLimit)
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		logger.FromContext(r.Context()).Warn("Invalid limit parameter", "limit", raw)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidLimit)
		return 0, false
	}
	return limit, true
}

// LogRequestFields logs key/value pairs describing a request at debug level.
func LogRequestFields(log *slog.Logger, keyvals ...any) {
	if len(keyvals)%2 != 0 {
		log.Warn("LogRequestFields called with odd number of arguments")
		return
	}
	log.Debug("Request details", keyvals...)
}
