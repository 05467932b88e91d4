package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/polisdoc/polisdoc-backend/pkg/i18n"
)

// Standard error types
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrBadRequest         = errors.New("bad request")
	ErrInternal           = errors.New("internal server error")
	ErrValidation         = errors.New("validation error")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrUnprocessable      = errors.New("unprocessable document")
	ErrPayloadTooLarge    = errors.New("payload too large")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// AppError represents an application error with context
type AppError struct {
	Err        error             `json:"-"`
	Message    string            `json:"message"`
	MessageKey string            `json:"-"` // i18n key for localization
	Params     map[string]string `json:"-"` // Parameters for i18n interpolation
	Code       string            `json:"code"`
	StatusCode int               `json:"status_code"`
	Details    map[string]string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Localize returns a localized version of the error message
func (e *AppError) Localize(ctx context.Context) string {
	if e.MessageKey == "" {
		return e.Message
	}
	return i18n.TFromContext(ctx, e.MessageKey, e.Params)
}

// WithCause attaches the underlying error, keeping code and message
func (e *AppError) WithCause(err error) *AppError {
	e.Err = fmt.Errorf("%w: %w", e.Err, err)
	return e
}

// Common error constructors

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:        ErrUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    message,
		MessageKey: "errors.unauthorized",
		StatusCode: http.StatusUnauthorized,
	}
}

func BadRequest(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
		MessageKey: "errors.bad_request",
		StatusCode: http.StatusBadRequest,
	}
}

// InvalidJSON reports a request body that is not valid JSON
func InvalidJSON() *AppError {
	e := BadRequest("invalid JSON body")
	e.MessageKey = "errors.invalid_json"
	return e
}

// InvalidBase64 reports an upload that cannot be base64 decoded
func InvalidBase64() *AppError {
	e := BadRequest("file is not valid base64")
	e.MessageKey = "errors.invalid_base64"
	return e
}

func Internal(message string) *AppError {
	return &AppError{
		Err:        ErrInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		MessageKey: "errors.internal",
		StatusCode: http.StatusInternalServerError,
	}
}

func Validation(details map[string]string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Code:       "VALIDATION_ERROR",
		Message:    "validation failed",
		MessageKey: "errors.validation_failed",
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

func TokenExpired() *AppError {
	return &AppError{
		Err:        ErrTokenExpired,
		Code:       "TOKEN_EXPIRED",
		Message:    "token has expired",
		MessageKey: "errors.token_expired",
		StatusCode: http.StatusUnauthorized,
	}
}

func TokenInvalid() *AppError {
	return &AppError{
		Err:        ErrTokenInvalid,
		Code:       "TOKEN_INVALID",
		Message:    "invalid token",
		MessageKey: "errors.token_invalid",
		StatusCode: http.StatusUnauthorized,
	}
}

// Unprocessable reports a document that was received but could not be
// converted to text
func Unprocessable(message string) *AppError {
	return &AppError{
		Err:        ErrUnprocessable,
		Code:       "PDF_CONVERSION_FAILED",
		Message:    message,
		MessageKey: "errors.pdf_conversion_failed",
		StatusCode: http.StatusUnprocessableEntity,
	}
}

func PayloadTooLarge(limitBytes int64) *AppError {
	limit := fmt.Sprintf("%d", limitBytes)
	return &AppError{
		Err:        ErrPayloadTooLarge,
		Code:       "PAYLOAD_TOO_LARGE",
		Message:    fmt.Sprintf("request body exceeds %s bytes", limit),
		MessageKey: "errors.payload_too_large",
		Params:     map[string]string{"limit": limit},
		StatusCode: http.StatusRequestEntityTooLarge,
	}
}

func ServiceUnavailable(message string) *AppError {
	return &AppError{
		Err:        ErrServiceUnavailable,
		Code:       "SERVICE_UNAVAILABLE",
		Message:    message,
		MessageKey: "errors.service_unavailable",
		StatusCode: http.StatusServiceUnavailable,
	}
}

// Is checks if the error matches a target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to convert an error to a specific type
func As(err error, target any) bool {
	return errors.As(err, target)
}
