package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gamestore-api/internal/model"

	"github.com/rs/zerolog"
)

// Response is the JSON envelope used by every endpoint.
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Error     string      `json:"error,omitempty"`
	Details   string      `json:"details,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, resp Response) {
	resp.Timestamp = time.Now().Format(time.RFC3339)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		// Nothing useful left to do once the header is out
		return
	}
}

// writeData writes a successful response carrying a payload.
func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, Response{Success: true, Data: data})
}

// writeMessage writes a successful response carrying only a message.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: true, Message: message})
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message, details string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, Response{Success: false, Error: message, Details: details})
}

// writeDomainError maps a service error onto an HTTP status. Domain errors
// carry their own user-facing message; anything else is reported as an
// unexpected failure with the underlying detail echoed.
func writeDomainError(w http.ResponseWriter, err error, fallback string, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		writeError(w, statusForCode(domainErr.Code), domainErr.Message, "", logger)
		return
	}
	writeError(w, http.StatusInternalServerError, fallback, err.Error(), logger)
}

// statusForCode maps domain error codes to HTTP status codes.
func statusForCode(code string) int {
	switch code {
	case model.ErrCodeMissingField,
		model.ErrCodeInvalidAttachment,
		model.ErrCodeAttachmentTooLarge,
		model.ErrCodeInvalidStatus,
		model.ErrCodeInvalidRate:
		return http.StatusBadRequest
	case model.ErrCodeOrderNotFound, model.ErrCodeReceiptNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
