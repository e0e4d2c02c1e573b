// Package errors defines coded domain errors and their HTTP translation.
// Services return these; the transport layer maps them onto status codes
// without inspecting error strings.
package errors

import "net/http"

// Code identifies a class of domain failure.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal_error"
)

// DomainError couples a code with a human-readable description.
type DomainError struct {
	Code    Code
	Message string
}

func (e DomainError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// New constructs a coded domain error.
func New(code Code, message string) DomainError {
	return DomainError{Code: code, Message: message}
}

// ToHTTPStatus maps a code onto its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
