// Package apierror defines the JSON error body returned by the HTTP API.
package apierror

import (
	"fmt"
	"net/http"
)

type ApiError struct {
	Code      int    `json:"code"`
	Message   string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

var (
	ErrBadRequest       = func(message string) *ApiError { return New(http.StatusBadRequest, message, "") }
	ErrNotFound         = func(detail string) *ApiError { return New(http.StatusNotFound, "Not found", detail) }
	ErrMethodNotAllowed = func(detail string) *ApiError { return New(http.StatusMethodNotAllowed, "Method not allowed", detail) }
	ErrTooLarge         = func(detail string) *ApiError { return New(http.StatusRequestEntityTooLarge, "Upload too large", detail) }
	ErrUnprocessable    = func(message string) *ApiError { return New(http.StatusUnprocessableEntity, message, "") }
	ErrInternalServer   = func(detail string) *ApiError {
		return New(http.StatusInternalServerError, "Internal server error", detail)
	}
)

// Messages shared with existing clients of the analyze endpoint.
const (
	MsgMissingFiles      = "Missing resume or job description file"
	MsgUnsupportedFile   = "Unsupported file format"
	MsgNoScorableTerms   = "No scorable terms"
	MsgInvalidAnalysisID = "Invalid analysis id"
)

func New(code int, message, detail string) *ApiError {
	return &ApiError{
		Code:    code,
		Message: message,
		Detail:  detail,
	}
}

func (e *ApiError) WithDetail(detail string) *ApiError {
	e.Detail = detail
	return e
}

func (e *ApiError) WithRequestID(requestID string) *ApiError {
	e.RequestID = requestID
	return e
}

func (e *ApiError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

func (e *ApiError) StatusCode() int {
	return e.Code
}
