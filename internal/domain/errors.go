package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches AppErrors by code so wrapped copies created by WithError
// still satisfy errors.Is against the sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrVerificationNotFound = &AppError{
		Code:       "VERIFICATION_NOT_FOUND",
		Message:    "Verification not found",
		StatusCode: 404,
	}

	ErrInvalidDocument = &AppError{
		Code:       "INVALID_DOCUMENT",
		Message:    "Invalid document format or corrupted file",
		StatusCode: 422,
	}

	ErrUnsupportedMedia = &AppError{
		Code:       "UNSUPPORTED_MEDIA",
		Message:    "Unsupported media type",
		StatusCode: 415,
	}

	ErrPayloadTooLarge = &AppError{
		Code:       "PAYLOAD_TOO_LARGE",
		Message:    "Uploaded file exceeds the maximum allowed size",
		StatusCode: 413,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	ErrPersistenceDisabled = &AppError{
		Code:       "PERSISTENCE_DISABLED",
		Message:    "Verification storage is not configured",
		StatusCode: 503,
	}
)
