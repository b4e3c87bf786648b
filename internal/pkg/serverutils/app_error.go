package serverutils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind classifies failures across the diagnostic subsystem.
type ErrorKind string

const (
	// KindNotConfigured means the generation collaborator credential is
	// missing. Surfaced verbatim to the operator, never retried.
	KindNotConfigured ErrorKind = "NOT_CONFIGURED"
	// KindTransport means the upstream call failed (network, non-2xx, timeout).
	KindTransport ErrorKind = "TRANSPORT_ERROR"
	// KindContractViolation means the collaborator answered but the payload
	// failed schema normalization.
	KindContractViolation ErrorKind = "CONTRACT_VIOLATION"
	// KindForbidden is an authorization guard failure. Terminal for the request.
	KindForbidden ErrorKind = "FORBIDDEN"
	// KindNotReady means phase preconditions are unmet.
	KindNotReady ErrorKind = "NOT_READY"
	// KindNotFound means the addressed resource (session, task id) does not exist.
	KindNotFound ErrorKind = "NOT_FOUND"
	// KindConflict means a compare-and-swap session write lost the race.
	// The caller retries.
	KindConflict ErrorKind = "CONFLICT"
	// KindValidation means the inbound request body failed validation.
	KindValidation ErrorKind = "VALIDATION"
)

type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error // wrapped cause, optional
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func WrapAppError(kind ErrorKind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func ErrNotConfigured(message string) *AppError {
	return NewAppError(KindNotConfigured, message)
}

func ErrTransport(message string, err error) *AppError {
	return WrapAppError(KindTransport, message, err)
}

func ErrContractViolation(message string) *AppError {
	return NewAppError(KindContractViolation, message)
}

func ErrForbidden(message string) *AppError {
	return NewAppError(KindForbidden, message)
}

func ErrNotReady(message string) *AppError {
	return NewAppError(KindNotReady, message)
}

func ErrNotFound(message string) *AppError {
	return NewAppError(KindNotFound, message)
}

func ErrConflict(message string) *AppError {
	return NewAppError(KindConflict, message)
}

func ErrValidation(message string) *AppError {
	return NewAppError(KindValidation, message)
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindNotConfigured:
		return fiber.StatusServiceUnavailable
	case KindTransport, KindContractViolation:
		return fiber.StatusBadGateway
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotReady, KindConflict:
		return fiber.StatusConflict
	case KindNotFound:
		return fiber.StatusNotFound
	case KindValidation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
