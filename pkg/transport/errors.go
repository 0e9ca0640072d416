package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rhuss/sandchat/pkg/api"
)

// HTTPStatusFromError maps an APIError type to the corresponding HTTP status
// code.
func HTTPStatusFromError(err *api.APIError) int {
	switch err.Type {
	case api.ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case api.ErrorTypeNotFound:
		return http.StatusNotFound
	case api.ErrorTypeTooManyRequests:
		return http.StatusTooManyRequests
	case api.ErrorTypeTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes v as a JSON body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteErrorResponse writes a flat {"error": message} body.
func WriteErrorResponse(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, api.ErrorResponse{Error: message})
}

// WriteAPIError writes an APIError, deriving the status code from its type.
// Server-side failures are reported with a generic message.
func WriteAPIError(w http.ResponseWriter, apiErr *api.APIError) {
	status := HTTPStatusFromError(apiErr)
	msg := apiErr.Message
	if status >= http.StatusInternalServerError {
		msg = api.MessageRequestFailed
	}
	WriteErrorResponse(w, status, msg)
}

// WriteError writes any error. Errors that are not an *api.APIError are
// treated as server errors.
func WriteError(w http.ResponseWriter, err error) {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		WriteAPIError(w, apiErr)
		return
	}
	WriteErrorResponse(w, http.StatusInternalServerError, api.MessageRequestFailed)
}
