// Package respond defines the API response envelope shared by every HTTP
// adapter: {success, data, error:{code,message,details}} plus the paginated
// list variant.
package respond

import (
	"fmt"
	"net/http"
)

// Error is the transport-facing error carried inside the response envelope.
// Code is a stable machine-readable string; Details is optional structured
// context keyed by field or entity name.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the status the envelope should be written with.
	// It is not serialized; the envelope carries only code/message/details.
	HTTPStatus int `json:"-"`
}

// Error implements the error interface.
func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithMessage returns a copy with the given human-readable message.
func (e Error) WithMessage(format string, args ...any) Error {
	e.Message = fmt.Sprintf(format, args...)
	return e
}

// WithDetail returns a copy with an additional details entry.
func (e Error) WithDetail(key string, value any) Error {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

// Stable error codes surfaced through ApiResponse.error.code.
const (
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeConflict          = "CONFLICT"
	CodeVendorNotEligible = "VENDOR_NOT_ELIGIBLE"
	CodeRateNotFound      = "RATE_NOT_FOUND"
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION_ERROR"
	CodeInternal          = "INTERNAL_ERROR"
)

// Pre-defined envelope errors for the shared taxonomy.
var (
	ErrInvalidTransition = Error{Code: CodeInvalidTransition, Message: "status progression violated", HTTPStatus: http.StatusUnprocessableEntity}
	ErrUnauthorized      = Error{Code: CodeUnauthorized, Message: "actor role not permitted", HTTPStatus: http.StatusForbidden}
	ErrConflict          = Error{Code: CodeConflict, Message: "resource was modified concurrently", HTTPStatus: http.StatusConflict}
	ErrVendorNotEligible = Error{Code: CodeVendorNotEligible, Message: "vendor is not eligible for the requested service", HTTPStatus: http.StatusUnprocessableEntity}
	ErrRateNotFound      = Error{Code: CodeRateNotFound, Message: "no active rate card matches the item", HTTPStatus: http.StatusUnprocessableEntity}
	ErrNotFound          = Error{Code: CodeNotFound, Message: "resource not found", HTTPStatus: http.StatusNotFound}
	ErrValidation        = Error{Code: CodeValidation, Message: "request failed validation", HTTPStatus: http.StatusBadRequest}
	ErrInternal          = Error{Code: CodeInternal, Message: "an unexpected error occurred", HTTPStatus: http.StatusInternalServerError}
)

// NotFound builds a NOT_FOUND error naming the missing entity.
func NotFound(resourceType string, identifier any) Error {
	return ErrNotFound.
		WithMessage("%s with identifier '%v' not found", resourceType, identifier).
		WithDetail("resource_type", resourceType).
		WithDetail("identifier", fmt.Sprintf("%v", identifier))
}

// Validation builds a VALIDATION_ERROR with per-field messages.
func Validation(fieldErrors map[string]string) Error {
	return ErrValidation.WithDetail("fields", fieldErrors)
}
