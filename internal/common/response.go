package common

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorBody represents the error payload returned by the API.
type ErrorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// JSON writes the provided value to the response writer as JSON.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError renders an error response using the canonical error shape.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, ErrorBody{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// WriteError maps err onto the canonical error shape. Errors that are not an
// *AppError are reported as a generic 500 with fallback as the message.
func WriteError(w http.ResponseWriter, err error, fallback string) {
	if fallback == "" {
		fallback = "internal error"
	}
	var appErr *AppError
	if !errors.As(err, &appErr) {
		JSONError(w, http.StatusInternalServerError, CodeInternal, fallback, nil)
		return
	}
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	code := appErr.Code
	if code == "" {
		code = CodeInternal
	}
	message := appErr.Message
	if message == "" {
		message = fallback
	}
	var details any
	if appErr.Details != nil {
		details = appErr.Details
	}
	if appErr.Err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(appErr.Err, &syntaxErr) {
			details = map[string]any{"offset": syntaxErr.Offset}
		}
	}
	JSONError(w, status, code, message, details)
}
