// internal/common/utils/response.go
// Standardized API responses ensure consistency across all endpoints

package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
)

var debugErrors atomic.Bool

// SetDebugErrors controls whether wrapped causes are returned to clients
func SetDebugErrors(enabled bool) {
	debugErrors.Store(enabled)
}

// ErrorBody is the error envelope returned to clients
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// RespondWithJSON sends a JSON response with the specified status code and payload
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":"internal_error","message":"Error marshaling JSON"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithError sends an error response with the specified status code and message
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]ErrorBody{
		"error": {Code: http.StatusText(code), Message: message},
	})
}

// RespondWithAppError maps a domain error to its status and envelope.
// Causes are only exposed when debug errors are enabled.
func RespondWithAppError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	body := ErrorBody{Code: apperr.CodeOf(err), Kind: string(apperr.KindOf(err))}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		body.Message = appErr.Message
	} else {
		body.Message = "Something went wrong"
	}
	if debugErrors.Load() {
		body.Detail = err.Error()
	}

	RespondWithJSON(w, status, map[string]ErrorBody{"error": body})
}

// RespondWithData sends a success response with data wrapped in a standard format
func RespondWithData(w http.ResponseWriter, code int, data interface{}) {
	RespondWithJSON(w, code, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// DecodeJSON reads a JSON request body into dst and validates it
func DecodeJSON(r io.Reader, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return apperr.Invalid("invalid_body", "Invalid request body")
	}
	return ValidateStruct(dst)
}
