package utils

import (
	"fmt"
	"sort"
	"strings"
)

// Fallback messages used when the backend gives us nothing usable.
const (
	GenericErrorMessage = "An error occurred"
	NetworkErrorMessage = "Network error. Please check your connection."
)

// RequestError is a server-declared failure: the backend answered with an
// error envelope. Message carries the server text verbatim.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return GenericErrorMessage
	}
	return e.Message
}

func NewRequestError(status int, message string) error {
	if message == "" {
		message = GenericErrorMessage
	}
	return &RequestError{Status: status, Message: message}
}

// NetworkError is a transport failure: the request went out but no response
// came back.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return NetworkErrorMessage
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// AuthError is a session operation rejected by the identity provider.
// Code keeps the provider's machine-readable reason when one was given.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func NewAuthError(code, message string) error {
	return &AuthError{Code: code, Message: message}
}

// ValidationErrors maps a form field to its human-readable rule violation.
// Never sent to the backend; surfaced inline next to the offending field.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, v[f]))
	}
	return strings.Join(parts, "; ")
}

// Field returns the message for a single field, if any.
func (v ValidationErrors) Field(name string) string {
	return v[name]
}
